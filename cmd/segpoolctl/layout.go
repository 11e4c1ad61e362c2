package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segpool/internal/pagemem"
	"github.com/joshuapare/segpool/slab"
)

var (
	layoutSize     int
	layoutAlign    int
	layoutPageSize int
	layoutMinPages int
	layoutGrowth   float64
	layoutSegments int
)

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().IntVar(&layoutSize, "size", 0, "Element size in bytes")
	cmd.Flags().IntVar(&layoutAlign, "align", 8, "Element alignment in bytes")
	cmd.Flags().IntVar(&layoutPageSize, "page-size", 0, "Page size in bytes (default: OS page size)")
	cmd.Flags().IntVar(&layoutMinPages, "min-pages", 0, "Minimum pages per segment")
	cmd.Flags().Float64Var(&layoutGrowth, "growth", 1.0, "Segment growth factor")
	cmd.Flags().IntVar(&layoutSegments, "segments", 4, "Number of segments to plan")
	_ = cmd.MarkFlagRequired("size")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Compute slot and segment geometry",
		Long: `The layout command computes the slot size, the fragmentation-free base
segment and the growth plan for an element of the given size and alignment.

Example:
  segpoolctl layout --size 24 --align 8
  segpoolctl layout --size 24 --align 8 --growth 2 --segments 6
  segpoolctl layout --size 100 --align 4 --page-size 16384 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
}

// SegmentPlan is one planned segment.
type SegmentPlan struct {
	Index      int `json:"index"`
	Pages      int `json:"pages"`
	Bytes      int `json:"bytes"`
	Capacity   int `json:"capacity"`
	Cumulative int `json:"cumulative_capacity"`
}

// LayoutReport is the layout command's result.
type LayoutReport struct {
	Size         int           `json:"size"`
	Align        int           `json:"align"`
	SlotSize     int           `json:"slot_size"`
	PageSize     int           `json:"page_size"`
	BasePages    int           `json:"base_pages"`
	SlotsPerBase int           `json:"slots_per_base"`
	Growth       float64       `json:"growth"`
	Segments     []SegmentPlan `json:"segments"`
}

func buildLayoutReport() (LayoutReport, error) {
	if layoutSegments < 0 {
		return LayoutReport{}, fmt.Errorf("--segments must not be negative, got %d", layoutSegments)
	}
	pageSize := layoutPageSize
	if pageSize == 0 {
		pageSize = pagemem.Size()
	}
	l, err := slab.ComputeLayout(layoutSize, layoutAlign, pageSize, layoutMinPages)
	if err != nil {
		return LayoutReport{}, err
	}

	rep := LayoutReport{
		Size:         l.Size,
		Align:        l.Align,
		SlotSize:     l.SlotSize,
		PageSize:     l.PageSize,
		BasePages:    l.BasePages,
		SlotsPerBase: l.SlotsPerBase,
		Growth:       layoutGrowth,
		Segments:     make([]SegmentPlan, 0, layoutSegments),
	}
	total := 0
	for i, pages := range l.Plan(layoutSegments, layoutGrowth) {
		c := l.Capacity(pages)
		total += c
		rep.Segments = append(rep.Segments, SegmentPlan{
			Index:      i,
			Pages:      pages,
			Bytes:      l.Bytes(pages),
			Capacity:   c,
			Cumulative: total,
		})
	}
	return rep, nil
}

func runLayout() error {
	printVerbose("Computing layout: size=%d align=%d\n", layoutSize, layoutAlign)

	rep, err := buildLayoutReport()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rep)
	}

	printInfo("Slot size:       %s B\n", num(rep.SlotSize))
	printInfo("Page size:       %s B\n", num(rep.PageSize))
	printInfo("Base segment:    %d pages, %s, %s slots\n",
		rep.BasePages, bytesize(rep.BasePages*rep.PageSize), num(rep.SlotsPerBase))
	if waste := rep.SlotSize - rep.Size; waste > 0 {
		printInfo("Padding:         %d B per slot\n", waste)
	}
	if len(rep.Segments) == 0 {
		return nil
	}
	printInfo("\nGrowth plan (factor %.2f):\n", rep.Growth)
	printInfo("  %-4s %8s %12s %12s %14s\n", "#", "pages", "bytes", "slots", "cumulative")
	for _, s := range rep.Segments {
		printInfo("  %-4d %8s %12s %12s %14s\n",
			s.Index, num(s.Pages), bytesize(s.Bytes), num(s.Capacity), num(s.Cumulative))
	}
	return nil
}

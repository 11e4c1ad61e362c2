package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/segpool/cmd/segpoolctl/logger"
	"github.com/joshuapare/segpool/pool"
	"github.com/joshuapare/segpool/pool/poolmetrics"
	"github.com/joshuapare/segpool/slab"
)

var (
	benchProfilePath string
	benchType        string
	benchObjects     int
	benchWorkers     int
	benchRounds      int
	benchSync        string
	benchTracker     string
	benchBacking     string
	benchMinPages    int
	benchGrowth      float64
	benchMetrics     bool
)

func init() {
	def := defaultProfile()
	cmd := newBenchCmd()
	cmd.Flags().StringVar(&benchProfilePath, "profile", "", "YAML workload profile")
	cmd.Flags().StringVar(&benchType, "type", def.Type, "Element type: order (pointer-free) or message")
	cmd.Flags().IntVar(&benchObjects, "objects", def.Objects, "Values held live per round across all workers")
	cmd.Flags().IntVar(&benchWorkers, "workers", def.Workers, "Concurrent goroutines sharing the pool")
	cmd.Flags().IntVar(&benchRounds, "rounds", def.Rounds, "Allocate/free rounds per worker")
	cmd.Flags().StringVar(&benchSync, "sync", def.Sync, "Guard: spin, mutex or none")
	cmd.Flags().StringVar(&benchTracker, "tracker", def.Tracker, "Free-slot tracker: freelist, stack or bitmap")
	cmd.Flags().StringVar(&benchBacking, "backing", def.Backing, "Segment memory: heap or pages")
	cmd.Flags().IntVar(&benchMinPages, "min-pages", def.MinPages, "Minimum pages per segment")
	cmd.Flags().Float64Var(&benchGrowth, "growth", def.Growth, "Segment growth factor")
	cmd.Flags().BoolVar(&benchMetrics, "metrics", false, "Print Prometheus samples for the pool")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run an allocation workload against a pool",
		Long: `The bench command allocates and frees values in rounds, punching holes
so that freed slots are reused, and reports throughput together with the
pool's occupancy and growth statistics.

Flags override values loaded from --profile.

Example:
  segpoolctl bench --objects 1000000
  segpoolctl bench --type message --workers 8 --sync mutex --tracker bitmap
  segpoolctl bench --profile workload.yaml --metrics --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), cmd.Flags().Changed)
		},
	}
}

// StatsView is slab.Stats with printable enums.
type StatsView struct {
	Live          int     `json:"live"`
	Free          int     `json:"free"`
	Uninitialized int     `json:"uninitialized"`
	Segments      int     `json:"segments"`
	CapacityTotal int     `json:"capacity_total"`
	BytesReserved int     `json:"bytes_reserved"`
	Utilization   float64 `json:"utilization"`
	Allocs        uint64  `json:"allocs"`
	Deallocs      uint64  `json:"deallocs"`
	Reused        uint64  `json:"reused"`
	TailHits      uint64  `json:"tail_hits"`
	Growths       uint64  `json:"growths"`
	FailedInits   uint64  `json:"failed_inits"`
	Tracker       string  `json:"tracker"`
	Order         string  `json:"order"`
	Backing       string  `json:"backing"`
}

func viewStats(st slab.Stats) StatsView {
	return StatsView{
		Live:          st.Live,
		Free:          st.Free,
		Uninitialized: st.Uninitialized(),
		Segments:      st.Segments,
		CapacityTotal: st.CapacityTotal,
		BytesReserved: st.BytesReserved,
		Utilization:   st.Utilization(),
		Allocs:        st.Allocs,
		Deallocs:      st.Deallocs,
		Reused:        st.Reused,
		TailHits:      st.TailHits,
		Growths:       st.Growths,
		FailedInits:   st.FailedInits,
		Tracker:       st.Tracker.String(),
		Order:         st.Order.String(),
		Backing:       st.Backing.String(),
	}
}

// BenchReport is the bench command's result.
type BenchReport struct {
	Profile  Profile            `json:"profile"`
	Layout   string             `json:"layout"`
	Elapsed  time.Duration      `json:"elapsed_ns"`
	Ops      uint64             `json:"ops"`
	Segments []slab.SegmentInfo `json:"segments"`
	Stats    StatsView          `json:"stats"`
	Metrics  string             `json:"metrics,omitempty"`
}

type benchOrder struct {
	ID    uint64
	Price int64
	Qty   uint32
	Side  uint8
}

type benchMessage struct {
	Topic string
	Body  []byte
	Seq   uint64
}

var topics = [...]string{"orders", "fills", "quotes", "cancels"}

func fillOrder(o *benchOrder, seq uint64) {
	o.ID = seq
	o.Price = int64(seq%10_000) + 1
	o.Qty = uint32(seq%100) + 1
	o.Side = uint8(seq & 1)
}

func fillMessage(m *benchMessage, seq uint64) {
	m.Topic = topics[seq%uint64(len(topics))]
	m.Seq = seq
}

// resolveProfile loads --profile, then applies every flag the user set.
func resolveProfile(changed func(string) bool) (Profile, error) {
	prof := defaultProfile()
	if benchProfilePath != "" {
		var err error
		if prof, err = loadProfile(benchProfilePath); err != nil {
			return prof, err
		}
		printVerbose("Loaded profile: %s\n", benchProfilePath)
	}
	set := func(name string, apply func()) {
		if benchProfilePath == "" || changed(name) {
			apply()
		}
	}
	set("type", func() { prof.Type = benchType })
	set("objects", func() { prof.Objects = benchObjects })
	set("workers", func() { prof.Workers = benchWorkers })
	set("rounds", func() { prof.Rounds = benchRounds })
	set("sync", func() { prof.Sync = benchSync })
	set("tracker", func() { prof.Tracker = benchTracker })
	set("backing", func() { prof.Backing = benchBacking })
	set("min-pages", func() { prof.MinPages = benchMinPages })
	set("growth", func() { prof.Growth = benchGrowth })
	return prof, nil
}

func runBench(ctx context.Context, changed func(string) bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	prof, err := resolveProfile(changed)
	if err != nil {
		return err
	}
	opts, err := prof.options()
	if err != nil {
		return err
	}
	opts.Logger = logger.L

	var rep BenchReport
	switch prof.Type {
	case "order":
		rep, err = benchPool(ctx, prof, opts, fillOrder)
	case "message":
		rep, err = benchPool(ctx, prof, opts, fillMessage)
	default:
		return fmt.Errorf("unknown type %q (want order or message)", prof.Type)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(rep)
	}
	printBenchReport(rep)
	return nil
}

// benchPool runs the profile against a fresh pool of T and reports its
// statistics before the pool is closed.
func benchPool[T any](ctx context.Context, prof Profile, opts pool.Options, fill func(*T, uint64)) (BenchReport, error) {
	p, err := pool.New[T](opts)
	if err != nil {
		return BenchReport{}, err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("close pool", "error", err)
		}
	}()

	logger.Debug("bench start",
		"type", prof.Type,
		"layout", p.Layout().String(),
		"workers", prof.Workers,
		"objects", prof.Objects,
		"rounds", prof.Rounds)

	start := time.Now()
	ops, err := runWorkload(ctx, p, prof, fill)
	elapsed := time.Since(start)
	if err != nil {
		return BenchReport{}, err
	}

	rep := BenchReport{
		Profile:  prof,
		Layout:   p.Layout().String(),
		Elapsed:  elapsed,
		Ops:      ops,
		Segments: p.SegmentInfos(),
		Stats:    viewStats(p.Stats()),
	}
	if benchMetrics {
		if rep.Metrics, err = gatherMetrics(prof.Type, p); err != nil {
			return BenchReport{}, err
		}
	}
	logger.Debug("bench done", "elapsed", elapsed, "ops", ops)
	return rep, nil
}

// runWorkload splits the live set across workers. Each round a worker fills
// its batch, frees every other value, refills the holes and frees the rest.
// It returns the number of allocate and free operations performed.
func runWorkload[T any](ctx context.Context, p *pool.Pool[T], prof Profile, fill func(*T, uint64)) (uint64, error) {
	g, ctx := errgroup.WithContext(ctx)
	counts := make([]uint64, prof.Workers)

	for w := range prof.Workers {
		batch := prof.Objects / prof.Workers
		if w < prof.Objects%prof.Workers {
			batch++
		}
		g.Go(func() error {
			held := make([]*T, batch)
			seq := uint64(w) << 40
			alloc := func(i int) error {
				seq++
				v, err := p.Allocate(func(v *T) error {
					fill(v, seq)
					return nil
				})
				if err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
				held[i] = v
				counts[w]++
				return nil
			}
			free := func(i int) {
				p.Deallocate(held[i])
				held[i] = nil
				counts[w]++
			}

			for range prof.Rounds {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i := range held {
					if err := alloc(i); err != nil {
						return err
					}
				}
				for i := 1; i < len(held); i += 2 {
					free(i)
				}
				for i := 1; i < len(held); i += 2 {
					if err := alloc(i); err != nil {
						return err
					}
				}
				for i := range held {
					free(i)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, err
}

// gatherMetrics renders the pool's Prometheus samples in text exposition format.
func gatherMetrics[T any](name string, p *pool.Pool[T]) (string, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(poolmetrics.NewCollector("segpool", poolmetrics.Single(name, p))); err != nil {
		return "", err
	}
	families, err := reg.Gather()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func printBenchReport(rep BenchReport) {
	st := rep.Stats
	printInfo("Workload:     %s x %s objects, %d worker(s), %d round(s)\n",
		rep.Profile.Type, num(rep.Profile.Objects), rep.Profile.Workers, rep.Profile.Rounds)
	printInfo("Pool:         sync=%s tracker=%s (%s) backing=%s\n",
		rep.Profile.Sync, st.Tracker, st.Order, st.Backing)
	printInfo("Layout:       %s\n", rep.Layout)
	printInfo("Elapsed:      %s (%s, %s)\n", rep.Elapsed.Round(time.Microsecond), num(rep.Ops), rate(rep.Ops, rep.Elapsed))
	printInfo("\n")
	printInfo("Live:         %s\n", num(st.Live))
	printInfo("Free:         %s\n", num(st.Free))
	printInfo("Capacity:     %s slots in %d segment(s), %s\n",
		num(st.CapacityTotal), st.Segments, bytesize(st.BytesReserved))
	printInfo("Allocations:  %s (%s reused, %s from tail)\n", num(st.Allocs), num(st.Reused), num(st.TailHits))
	printInfo("Frees:        %s\n", num(st.Deallocs))

	if verbose {
		printVerbose("\nSegments:\n")
		for _, s := range rep.Segments {
			printVerbose("  #%-3d %6d pages %10s %10s slots %10s touched\n",
				s.Index, s.Pages, bytesize(s.Bytes), num(s.Capacity), num(s.Initialized))
		}
	}
	if rep.Metrics != "" {
		printInfo("\n%s", rep.Metrics)
	}
}

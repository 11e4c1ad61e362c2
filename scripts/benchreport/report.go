package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Result is one parsed benchmark line.
type Result struct {
	Name        string
	Operation   string // e.g. Pool_AllocFree
	Variant     string // e.g. spin, mutex/bitmap
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// Comparison is one variant measured against the baseline of its operation.
type Comparison struct {
	Result
	BaselineNs float64 // 0 when the operation has no baseline variant
	Ratio      float64 // NsPerOp / BaselineNs
}

// BenchmarkPool_AllocFree/spin-8    	50000000	        23.1 ns/op	       0 B/op	       0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []Result {
	var results []Result
	for scanner.Scan() {
		line := scanner.Text()

		// go test -json wraps each line in an event.
		var event struct{ Output string }
		if err := json.Unmarshal([]byte(line), &event); err == nil && event.Output != "" {
			line = event.Output
		}

		m := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		r := Result{Name: m[1]}
		r.Iterations, _ = strconv.Atoi(m[2])
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(m[4], 10, 64)
		}
		if m[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}
		r.Operation, r.Variant = splitName(r.Name)
		results = append(results, r)
	}
	return results
}

// splitName separates Benchmark<Operation>/<variant...>-<procs>.
func splitName(name string) (operation, variant string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	operation, variant, _ = strings.Cut(name, "/")
	return operation, variant
}

func compare(results []Result, baseline string) []Comparison {
	base := make(map[string]float64)
	for _, r := range results {
		if r.Variant == baseline {
			base[r.Operation] = r.NsPerOp
		}
	}

	out := make([]Comparison, 0, len(results))
	for _, r := range results {
		c := Comparison{Result: r, BaselineNs: base[r.Operation]}
		if c.BaselineNs > 0 {
			c.Ratio = r.NsPerOp / c.BaselineNs
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Operation != out[j].Operation {
			return out[i].Operation < out[j].Operation
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}

func renderMarkdown(comparisons []Comparison, baseline string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Baseline variant: `%s`\n\n", baseline)

	sb.WriteString("| Operation | Variant | ns/op | vs baseline | B/op | allocs/op |\n")
	sb.WriteString("|-----------|---------|-------|-------------|------|-----------|\n")
	for _, c := range comparisons {
		variant := c.Variant
		if variant == "" {
			variant = "-"
		}
		ratio := "*N/A*"
		switch {
		case c.Variant == baseline:
			ratio = "baseline"
		case c.Ratio > 0:
			ratio = fmt.Sprintf("%.2fx", c.Ratio)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %d |\n",
			c.Operation, variant, formatNumber(c.NsPerOp), ratio,
			formatBytes(c.BytesPerOp), c.AllocsPerOp)
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **vs baseline**: time per op relative to the baseline variant; lower is faster\n")
	sb.WriteString("- **allocs/op**: steady-state pool operations should report 0\n")
	return sb.String()
}

func formatNumber(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", n/1000)
	case n >= 100:
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%.2f", n)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1024*1024:
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	case b >= 1024:
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}

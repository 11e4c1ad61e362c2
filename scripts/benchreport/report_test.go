package main

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/segpool/pool
BenchmarkPool_AllocFree/none-8    	100000000	        10.00 ns/op	       0 B/op	       0 allocs/op
BenchmarkPool_AllocFree/spin-8    	50000000	        25.00 ns/op	       0 B/op	       0 allocs/op
BenchmarkPool_AllocFree/mutex-8   	40000000	        30.00 ns/op	       0 B/op	       0 allocs/op
{"Action":"output","Output":"BenchmarkEngine_AllocFree-8   \t90000000\t        12.50 ns/op\n"}
PASS
ok  	github.com/joshuapare/segpool/pool	4.2s
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 4)

	require.Equal(t, "Pool_AllocFree", results[0].Operation)
	require.Equal(t, "none", results[0].Variant)
	require.Equal(t, 100000000, results[0].Iterations)
	require.InDelta(t, 10.0, results[0].NsPerOp, 1e-9)

	require.Equal(t, "Engine_AllocFree", results[3].Operation)
	require.Empty(t, results[3].Variant)
	require.InDelta(t, 12.5, results[3].NsPerOp, 1e-9)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, op, variant string
	}{
		{"BenchmarkPool_AllocFree/spin-8", "Pool_AllocFree", "spin"},
		{"BenchmarkPool_AllocFree/spin", "Pool_AllocFree", "spin"},
		{"BenchmarkGuard/next-fit-16", "Guard", "next-fit"},
		{"BenchmarkEngine_AllocFree", "Engine_AllocFree", ""},
	}
	for _, tt := range tests {
		op, variant := splitName(tt.name)
		require.Equal(t, tt.op, op, tt.name)
		require.Equal(t, tt.variant, variant, tt.name)
	}
}

func TestCompareAndRender(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	comps := compare(results, "none")
	require.Len(t, comps, 4)

	byVariant := map[string]Comparison{}
	for _, c := range comps {
		byVariant[c.Operation+"/"+c.Variant] = c
	}
	require.InDelta(t, 2.5, byVariant["Pool_AllocFree/spin"].Ratio, 1e-9)
	require.InDelta(t, 3.0, byVariant["Pool_AllocFree/mutex"].Ratio, 1e-9)
	require.Zero(t, byVariant["Engine_AllocFree/"].Ratio)

	md := renderMarkdown(comps, "none", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.Contains(t, md, "Generated: 2025-01-02 03:04:05")
	require.Contains(t, md, "| Pool_AllocFree | spin | 25.00 | 2.50x | 0B | 0 |")
	require.Contains(t, md, "| Pool_AllocFree | none | 10.00 | baseline | 0B | 0 |")
	require.Contains(t, md, "| Engine_AllocFree | - | 12.50 | *N/A* | 0B | 0 |")
}

func TestFormatters(t *testing.T) {
	require.Equal(t, "1.50M", formatNumber(1_500_000))
	require.Equal(t, "2.5K", formatNumber(2500))
	require.Equal(t, "250", formatNumber(250))
	require.Equal(t, "9.75", formatNumber(9.75))
	require.Equal(t, "2.00MB", formatBytes(2<<20))
	require.Equal(t, "1.5KB", formatBytes(1536))
	require.Equal(t, "12B", formatBytes(12))
}

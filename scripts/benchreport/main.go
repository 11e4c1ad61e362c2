// Command benchreport turns `go test -bench` output for the pool and slab
// packages into a markdown table comparing guard modes and trackers against a
// baseline variant.
//
// Usage:
//
//	go test -bench . -benchmem ./pool ./slab | go run ./scripts/benchreport -baseline none
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	baseline   = flag.String("baseline", "none", "Variant the others are compared against")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := compare(results, *baseline)
	report := renderMarkdown(comparisons, *baseline, time.Now())

	if *outputFile == "" {
		_, err := fmt.Fprint(os.Stdout, report)
		return err
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
	return nil
}

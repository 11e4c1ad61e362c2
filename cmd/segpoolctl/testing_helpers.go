package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		defer close(done)
		_, _ = buf.ReadFrom(r)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done
	r.Close()

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// resetGlobalFlags restores every package-level flag to its default.
func resetGlobalFlags() {
	verbose, quiet, jsonOut = false, false, false

	layoutSize, layoutAlign, layoutPageSize = 0, 8, 0
	layoutMinPages, layoutGrowth, layoutSegments = 0, 1.0, 4

	def := defaultProfile()
	benchProfilePath = ""
	benchType = def.Type
	benchObjects = def.Objects
	benchWorkers = def.Workers
	benchRounds = def.Rounds
	benchSync = def.Sync
	benchTracker = def.Tracker
	benchBacking = def.Backing
	benchMinPages = def.MinPages
	benchGrowth = def.Growth
	benchMetrics = false
}

func noneChanged(string) bool { return false }

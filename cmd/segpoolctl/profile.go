package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/segpool/pool"
	"github.com/joshuapare/segpool/slab"
)

// Profile describes a bench workload. It can be loaded from YAML and
// overridden by flags.
type Profile struct {
	Type     string  `yaml:"type"      json:"type"`
	Objects  int     `yaml:"objects"   json:"objects"`
	Workers  int     `yaml:"workers"   json:"workers"`
	Rounds   int     `yaml:"rounds"    json:"rounds"`
	Sync     string  `yaml:"sync"      json:"sync"`
	Tracker  string  `yaml:"tracker"   json:"tracker"`
	Backing  string  `yaml:"backing"   json:"backing"`
	MinPages int     `yaml:"min_pages" json:"min_pages"`
	Growth   float64 `yaml:"growth"    json:"growth"`
	MaxBytes int     `yaml:"max_bytes" json:"max_bytes"`
	Checked  bool    `yaml:"checked"   json:"checked"`
}

// defaultProfile returns the workload used when no profile or flag says otherwise.
func defaultProfile() Profile {
	return Profile{
		Type:    "order",
		Objects: 100_000,
		Workers: 1,
		Rounds:  10,
		Sync:    pool.SyncSpin.String(),
		Tracker: slab.TrackerFreeList.String(),
		Backing: slab.BackingHeap.String(),
		Growth:  1.0,
	}
}

// loadProfile reads a YAML profile on top of the defaults.
func loadProfile(path string) (Profile, error) {
	p := defaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// options validates the profile and converts it to pool options.
func (p Profile) options() (pool.Options, error) {
	switch {
	case p.Objects <= 0:
		return pool.Options{}, fmt.Errorf("objects must be positive, got %d", p.Objects)
	case p.Workers <= 0:
		return pool.Options{}, fmt.Errorf("workers must be positive, got %d", p.Workers)
	case p.Rounds <= 0:
		return pool.Options{}, fmt.Errorf("rounds must be positive, got %d", p.Rounds)
	}

	opts := pool.DefaultOptions()
	var err error
	if opts.Sync, err = pool.ParseSyncMode(p.Sync); err != nil {
		return opts, err
	}
	if opts.Sync == pool.SyncNone && p.Workers > 1 {
		return opts, fmt.Errorf("sync %q cannot serve %d workers", p.Sync, p.Workers)
	}
	if opts.Tracker, err = slab.ParseTrackerKind(p.Tracker); err != nil {
		return opts, err
	}
	if opts.Backing, err = slab.ParseBacking(p.Backing); err != nil {
		return opts, err
	}
	opts.MinPagesPerSegment = p.MinPages
	opts.GrowthFactor = p.Growth
	opts.MaxBytes = p.MaxBytes
	opts.Checked = p.Checked
	return opts, nil
}

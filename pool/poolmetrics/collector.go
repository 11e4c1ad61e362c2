// Package poolmetrics exports pool statistics as Prometheus metrics.
//
// A Collector reads a stats snapshot on every scrape, so it adds nothing to
// the allocation path. Register one per registry or per pool:
//
//	reg := pool.NewRegistry(pool.DefaultOptions())
//	prometheus.MustRegister(poolmetrics.NewCollector("segpool", reg))
//
// Every series carries a "pool" label holding the element type name.
package poolmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/segpool/slab"
)

// Source yields per-pool statistics keyed by pool name. *pool.Registry
// satisfies it.
type Source interface {
	Snapshot() map[string]slab.Stats
}

// Statser is anything with a Stats method, such as *pool.Pool or *slab.Engine.
type Statser interface {
	Stats() slab.Stats
}

// Single adapts one pool to a Source under the given name.
func Single(name string, s Statser) Source {
	return single{name: name, s: s}
}

type single struct {
	name string
	s    Statser
}

func (s single) Snapshot() map[string]slab.Stats {
	return map[string]slab.Stats{s.name: s.s.Stats()}
}

type metric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(slab.Stats) float64
}

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	src     Source
	metrics []metric
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string, src Source) *Collector {
	labels := []string{"pool"}
	gauge := func(name, help string, fn func(slab.Stats) float64) metric {
		return metric{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil),
			kind:  prometheus.GaugeValue,
			value: fn,
		}
	}
	counter := func(name, help string, fn func(slab.Stats) float64) metric {
		m := gauge(name, help, fn)
		m.kind = prometheus.CounterValue
		return m
	}

	return &Collector{
		src: src,
		metrics: []metric{
			gauge("live_objects", "Values currently allocated.",
				func(s slab.Stats) float64 { return float64(s.Live) }),
			gauge("free_slots", "Slots tracked for reuse.",
				func(s slab.Stats) float64 { return float64(s.Free) }),
			gauge("segments", "Segments reserved.",
				func(s slab.Stats) float64 { return float64(s.Segments) }),
			gauge("capacity_slots", "Slots across all segments.",
				func(s slab.Stats) float64 { return float64(s.CapacityTotal) }),
			gauge("reserved_bytes", "Bytes across all segments.",
				func(s slab.Stats) float64 { return float64(s.BytesReserved) }),
			gauge("utilization_ratio", "Live values over total capacity.",
				func(s slab.Stats) float64 { return s.Utilization() }),
			counter("allocations_total", "Successful allocations.",
				func(s slab.Stats) float64 { return float64(s.Allocs) }),
			counter("deallocations_total", "Slots released.",
				func(s slab.Stats) float64 { return float64(s.Deallocs) }),
			counter("reused_total", "Allocations served from released slots.",
				func(s slab.Stats) float64 { return float64(s.Reused) }),
			counter("growths_total", "Segments added.",
				func(s slab.Stats) float64 { return float64(s.Growths) }),
			counter("failed_inits_total", "Allocations rolled back after init failed.",
				func(s slab.Stats) float64 { return float64(s.FailedInits) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, st := range c.src.Snapshot() {
		for _, m := range c.metrics {
			ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(st), name)
		}
	}
}

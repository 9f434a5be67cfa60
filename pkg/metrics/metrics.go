// Package metrics provides a small Prometheus-compatible metrics registry
// built on the standard library. Counters, gauges, and histograms are grouped
// into families and rendered in the text exposition format via /metrics.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuckets are the default histogram buckets (in seconds).
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter is a monotonically increasing counter.
type Counter struct{ val atomic.Int64 }

func (c *Counter) Inc()          { c.val.Add(1) }
func (c *Counter) Add(n int64)   { c.val.Add(n) }
func (c *Counter) Value() int64  { return c.val.Load() }

// Gauge can go up and down.
type Gauge struct{ val atomic.Int64 }

func (g *Gauge) Set(n int64)  { g.val.Store(n) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// Histogram tracks the distribution of observed values over fixed buckets.
type Histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *Histogram {
	b := make([]float64, len(buckets))
	copy(b, buckets)
	sort.Float64s(b)
	return &Histogram{buckets: b, counts: make([]uint64, len(b))}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.sum += v
	h.count++
	for i, b := range h.buckets {
		if v <= b {
			h.counts[i]++
			break
		}
	}
	h.mu.Unlock()
}

// Since observes the duration elapsed since t, in seconds.
func (h *Histogram) Since(t time.Time) {
	h.Observe(time.Since(t).Seconds())
}

// family is one named metric with its labeled series.
type family struct {
	typ    string // "counter", "gauge", "histogram"
	help   string
	series map[string]any // labels ("" for unlabeled) -> *Counter/*Gauge/*Histogram
}

// Registry holds metric families in registration order.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family
	order    []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{families: make(map[string]*family)}
}

func (r *Registry) get(name, typ, help, labels string, mk func() any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[name]
	if !ok {
		f = &family{typ: typ, help: help, series: make(map[string]any)}
		r.families[name] = f
		r.order = append(r.order, name)
	}
	if s, ok := f.series[labels]; ok {
		return s
	}
	s := mk()
	f.series[labels] = s
	return s
}

// Counter returns (or creates) a counter. Label pairs alternate key, value.
func (r *Registry) Counter(name, help string, kvs ...string) *Counter {
	return r.get(name, "counter", help, labelString(kvs), func() any { return &Counter{} }).(*Counter)
}

// Gauge returns (or creates) a gauge.
func (r *Registry) Gauge(name, help string, kvs ...string) *Gauge {
	return r.get(name, "gauge", help, labelString(kvs), func() any { return &Gauge{} }).(*Gauge)
}

// Histogram returns (or creates) a histogram. Nil buckets use DefaultBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64, kvs ...string) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	return r.get(name, "histogram", help, labelString(kvs), func() any { return newHistogram(buckets) }).(*Histogram)
}

// labelString renders label pairs as `k="v",k2="v2"`, sorted by key.
func labelString(kvs []string) string {
	if len(kvs) == 0 || len(kvs)%2 != 0 {
		return ""
	}
	pairs := make([]string, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		pairs = append(pairs, fmt.Sprintf("%s=%q", kvs[i], kvs[i+1]))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func wrapLabels(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}

// Render returns the registry contents in the Prometheus text format.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range r.order {
		f := r.families[name]
		if f.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", name, f.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, f.typ)

		labels := make([]string, 0, len(f.series))
		for l := range f.series {
			labels = append(labels, l)
		}
		sort.Strings(labels)

		for _, l := range labels {
			switch s := f.series[l].(type) {
			case *Counter:
				fmt.Fprintf(&b, "%s%s %d\n", name, wrapLabels(l), s.Value())
			case *Gauge:
				fmt.Fprintf(&b, "%s%s %d\n", name, wrapLabels(l), s.Value())
			case *Histogram:
				s.mu.Lock()
				var cumulative uint64
				sep := ""
				if l != "" {
					sep = "," + l
				}
				for i, bk := range s.buckets {
					cumulative += s.counts[i]
					fmt.Fprintf(&b, "%s_bucket{le=\"%g\"%s} %d\n", name, bk, sep, cumulative)
				}
				fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"%s} %d\n", name, sep, s.count)
				fmt.Fprintf(&b, "%s_sum%s %g\n", name, wrapLabels(l), s.sum)
				fmt.Fprintf(&b, "%s_count%s %d\n", name, wrapLabels(l), s.count)
				s.mu.Unlock()
			}
		}
	}
	return b.String()
}

// Handler serves the registry at an HTTP endpoint.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterIncAndAdd(t *testing.T) {
	r := New()
	c := r.Counter("jobs_total", "jobs processed")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("counter = %d", c.Value())
	}
}

func TestSameNameReturnsSameMetric(t *testing.T) {
	r := New()
	a := r.Counter("hits", "")
	b := r.Counter("hits", "")
	a.Inc()
	if b.Value() != 1 {
		t.Fatal("expected same counter instance")
	}
}

func TestLabeledSeriesAreDistinct(t *testing.T) {
	r := New()
	ok := r.Counter("requests_total", "", "status", "ok")
	errs := r.Counter("requests_total", "", "status", "error")
	ok.Add(3)
	errs.Inc()

	out := r.Render()
	if !strings.Contains(out, `requests_total{status="ok"} 3`) {
		t.Fatalf("missing ok series:\n%s", out)
	}
	if !strings.Contains(out, `requests_total{status="error"} 1`) {
		t.Fatalf("missing error series:\n%s", out)
	}
	if strings.Count(out, "# TYPE requests_total counter") != 1 {
		t.Fatalf("family header should appear once:\n%s", out)
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("queue_depth", "pending jobs")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 9 {
		t.Fatalf("gauge = %d", g.Value())
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(100)

	out := r.Render()
	checks := []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 3`,
		`latency_seconds_bucket{le="10"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		`latency_seconds_count 4`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderHelpAndOrder(t *testing.T) {
	r := New()
	r.Counter("first_total", "first metric")
	r.Gauge("second", "second metric")

	out := r.Render()
	if !strings.Contains(out, "# HELP first_total first metric") {
		t.Fatalf("missing help line:\n%s", out)
	}
	if strings.Index(out, "first_total") > strings.Index(out, "second") {
		t.Fatal("registration order not preserved")
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("pings_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pings_total 1") {
		t.Fatalf("body:\n%s", rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatal("wrong content type")
	}
}

package stats

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kidsbook"

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// Snapshot is a point-in-time aggregate of latency samples.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Latency tracks recent call latencies per operation within a rolling window.
// Every sample is also observed by a Prometheus histogram on the recorder's
// own registry, served by Handler.
type Latency struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
	now     func() time.Time

	reg      *prometheus.Registry
	duration *prometheus.HistogramVec
}

func NewLatency(maxAge time.Duration) *Latency {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	reg := prometheus.NewRegistry()
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of generation and import operations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
	}, []string{"op"})
	reg.MustRegister(duration)

	return &Latency{
		samples:  make(map[string][]sample),
		maxAge:   maxAge,
		now:      time.Now,
		reg:      reg,
		duration: duration,
	}
}

// Gauge exposes fn as a gauge on the metrics endpoint. Registering the same
// name twice returns an error.
func (l *Latency) Gauge(name, help string, fn func() float64) error {
	return l.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (l *Latency) Handler() http.Handler {
	return promhttp.HandlerFor(l.reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Record adds one sample for op.
func (l *Latency) Record(op string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	now := l.now()
	l.duration.WithLabelValues(op).Observe(d.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples[op] = append(prune(l.samples[op], now.Add(-l.maxAge)), sample{
		timestamp:  now,
		durationMs: ms,
	})
}

// Since records the time elapsed since start. Meant for defer.
func (l *Latency) Since(op string, start time.Time) {
	l.Record(op, l.now().Sub(start))
}

// Snapshot aggregates every operation that still has samples in the window.
func (l *Latency) Snapshot() map[string]Snapshot {
	cutoff := l.now().Add(-l.maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]Snapshot, len(l.samples))
	for op, ss := range l.samples {
		ss = prune(ss, cutoff)
		l.samples[op] = ss
		if len(ss) == 0 {
			delete(l.samples, op)
			continue
		}
		out[op] = aggregate(ss)
	}
	return out
}

func aggregate(ss []sample) Snapshot {
	values := make([]int64, 0, len(ss))
	var sum int64
	for _, s := range ss {
		values = append(values, s.durationMs)
		sum += s.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return Snapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

// prune drops samples older than cutoff in place.
func prune(ss []sample, cutoff time.Time) []sample {
	keep := ss[:0]
	for _, s := range ss {
		if !s.timestamp.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	return keep
}

func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return lo + ((hi - lo) * weight)
}

package atelier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/atelier/assets"
)

// Metrics holds the application's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	uploads       *prometheus.CounterVec
	deletes       *prometheus.CounterVec
	transcode     prometheus.Histogram
	galleryUnlock *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "asset_uploads_total",
			Help:      "Asset uploads by bucket and result.",
		}, []string{"bucket", "result"}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "asset_deletes_total",
			Help:      "Asset deletions by bucket and result.",
		}, []string{"bucket", "result"}),
		transcode: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "atelier",
			Name:      "transcode_duration_seconds",
			Help:      "Time spent resizing and encoding uploads.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		galleryUnlock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "gallery_unlock_attempts_total",
			Help:      "Gallery unlock attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads, m.deletes, m.transcode, m.galleryUnlock,
	)
	return m
}

// AssetHooks returns hooks that count asset client activity.
func (m *Metrics) AssetHooks() assets.Hooks {
	if m == nil {
		return assets.Hooks{}
	}
	return assets.Hooks{
		Uploaded: func(bucket string, err error) {
			m.uploads.WithLabelValues(bucket, result(err == nil)).Inc()
		},
		Deleted: func(bucket string, ok bool) {
			m.deletes.WithLabelValues(bucket, result(ok)).Inc()
		},
	}
}

func (m *Metrics) observeTranscode(start time.Time) {
	if m == nil {
		return
	}
	m.transcode.Observe(time.Since(start).Seconds())
}

func (m *Metrics) unlockAttempt(outcome string) {
	if m == nil {
		return
	}
	m.galleryUnlock.WithLabelValues(outcome).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Package metrics exposes Prometheus collectors for downloads, the push
// channel and the progress relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tubedrop"

// Metrics groups every collector the server reports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	downloadsTotal   *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	fileSizeBytes    *prometheus.HistogramVec
	inProgress       prometheus.Gauge
	progressEvents   *prometheus.CounterVec
	connections      prometheus.Gauge
	filesDeleted     prometheus.Counter
}

// New registers the collectors with a dedicated registry so that several
// servers (or tests) can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Downloads by kind (video/audio) and outcome.",
			},
			[]string{"kind", "status"},
		),
		downloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "download_duration_seconds",
				Help:      "Wall time spent inside the extraction library per download.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"kind"},
		),
		fileSizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "file_size_bytes",
				Help:      "Size of completed downloads.",
				// 1MB .. 4GB
				Buckets: prometheus.ExponentialBuckets(1<<20, 4, 7),
			},
			[]string{"kind"},
		),
		inProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_progress",
			Help:      "Downloads currently running.",
		}),
		progressEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_events_total",
				Help:      "Progress events handed to the relay, by result.",
			},
			[]string{"result"},
		),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "push_connections",
			Help:      "Open push channel connections.",
		}),
		filesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_deleted_total",
			Help:      "Files removed through the file manager.",
		}),
	}

	reg.MustRegister(
		m.downloadsTotal,
		m.downloadDuration,
		m.fileSizeBytes,
		m.inProgress,
		m.progressEvents,
		m.connections,
		m.filesDeleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func Kind(audioOnly bool) string {
	if audioOnly {
		return "audio"
	}
	return "video"
}

func (m *Metrics) DownloadStarted() {
	if m == nil {
		return
	}
	m.inProgress.Inc()
}

// DownloadFinished records the outcome of a download started with
// DownloadStarted. size is ignored for failed downloads.
func (m *Metrics) DownloadFinished(kind string, err error, took time.Duration, size int64) {
	if m == nil {
		return
	}
	m.inProgress.Dec()
	m.downloadDuration.WithLabelValues(kind).Observe(took.Seconds())

	if err != nil {
		m.downloadsTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	m.downloadsTotal.WithLabelValues(kind, "success").Inc()
	m.fileSizeBytes.WithLabelValues(kind).Observe(float64(size))
}

func (m *Metrics) ProgressForwarded() {
	if m == nil {
		return
	}
	m.progressEvents.WithLabelValues("forwarded").Inc()
}

func (m *Metrics) ProgressDropped() {
	if m == nil {
		return
	}
	m.progressEvents.WithLabelValues("dropped").Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) FileDeleted() {
	if m == nil {
		return
	}
	m.filesDeleted.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

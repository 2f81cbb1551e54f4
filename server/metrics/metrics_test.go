package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDownloadMetrics(t *testing.T) {
	m := New()

	m.DownloadStarted()
	m.DownloadStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.inProgress))

	m.DownloadFinished(Kind(true), nil, 3*time.Second, 4<<20)
	m.DownloadFinished(Kind(false), errors.New("boom"), time.Second, 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inProgress))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("audio", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("video", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("video", "success")))
}

func TestRelayMetrics(t *testing.T) {
	m := New()

	m.ConnectionOpened()
	m.ProgressForwarded()
	m.ProgressForwarded()
	m.ProgressDropped()
	m.ConnectionClosed()
	m.FileDeleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.progressEvents.WithLabelValues("forwarded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.progressEvents.WithLabelValues("dropped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesDeleted))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.DownloadStarted()
		m.DownloadFinished("video", nil, time.Second, 1)
		m.ProgressForwarded()
		m.ProgressDropped()
		m.ConnectionOpened()
		m.ConnectionClosed()
		m.FileDeleted()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ProgressDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tubedrop_progress_events_total")
}

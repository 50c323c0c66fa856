package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/directory"
)

func TestMetrics_Observers(t *testing.T) {
	m := New()

	m.EventPublished("announcement.posted")
	m.HandlerFinished("announcement.posted", time.Millisecond, nil)
	m.HandlerFinished("announcement.posted", time.Millisecond, errors.New("x"))
	m.JobFinished("autosave_snapshot", time.Second, nil)
	m.ObserveChatbot(ChatbotFallback, 2*time.Second)
	m.ObserveHistoryCache(true, nil)
	m.ObserveHistoryCache(false, nil)
	m.ObserveSnapshotSave(errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("announcement.posted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventHandlers.WithLabelValues("announcement.posted", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("autosave_snapshot", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatbotRequests.WithLabelValues(ChatbotFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryCache.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryCache.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotSaves.WithLabelValues(ResultError)))
}

func TestMetrics_DirectoryStats(t *testing.T) {
	m := New()
	m.SetDirectoryStats(directory.Stats{Students: 30, Teachers: 3, Registrations: 1}, true)

	assert.Equal(t, 30.0, testutil.ToFloat64(m.DirectoryEntities.WithLabelValues("students")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryEntities.WithLabelValues("registrations")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryDirty))

	m.SetDirectoryStats(directory.Stats{}, false)
	assert.Zero(t, testutil.ToFloat64(m.DirectoryDirty))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/v1/students/{id}", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nextedu_http_requests_total{method="GET",route="/api/v1/students/{id}",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/pipeline"
)

func TestPipelineObserve(t *testing.T) {
	m := NewPipeline(prometheus.NewRegistry())

	m.Observe(pipeline.Event{Outcome: pipeline.OutcomeSuppressed, MatchType: model.MatchRegex, Duration: time.Millisecond})
	m.Observe(pipeline.Event{Outcome: pipeline.OutcomeSuppressed, MatchType: model.MatchRegex, Err: errors.New("trim")})
	m.Observe(pipeline.Event{Outcome: pipeline.OutcomeNoMatch})
	m.Observe(pipeline.Event{Outcome: pipeline.OutcomeFailed, Err: errors.New("insert")})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventsTotal.WithLabelValues("suppressed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsTotal.WithLabelValues("no_match")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SuppressedTotal.WithLabelValues("REGEX")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FailuresTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FailuresTotal.WithLabelValues("suppressed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProcessingDuration))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeline(reg)
	m.Observe(pipeline.Event{Outcome: pipeline.OutcomeNoMatch})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `buzzbuster_pipeline_events_total{outcome="no_match"} 1`)
}

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Metrics live on the global registry, so tests assert deltas rather than
// absolute values.

func TestRecordAnalysisLifecycle(t *testing.T) {
	startedBefore := testutil.ToFloat64(analysesStartedTotal)
	activeBefore := testutil.ToFloat64(analysesActive)

	RecordAnalysisStarted()

	assert.Equal(t, startedBefore+1, testutil.ToFloat64(analysesStartedTotal))
	assert.Equal(t, activeBefore+1, testutil.ToFloat64(analysesActive))

	completedBefore := testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeCompleted))
	pagesBefore := testutil.ToFloat64(pagesProcessedTotal)
	messagesBefore := testutil.ToFloat64(messagesScannedTotal)
	momentsBefore := testutil.ToFloat64(momentsDetectedTotal)

	RecordAnalysisFinished(OutcomeCompleted, 2*time.Second, 10, 500, 3)

	assert.Equal(t, activeBefore, testutil.ToFloat64(analysesActive))
	assert.Equal(t, completedBefore+1, testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, pagesBefore+10, testutil.ToFloat64(pagesProcessedTotal))
	assert.Equal(t, messagesBefore+500, testutil.ToFloat64(messagesScannedTotal))
	assert.Equal(t, momentsBefore+3, testutil.ToFloat64(momentsDetectedTotal))
}

func TestRecordAnalysisOutcomes(t *testing.T) {
	failedBefore := testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeFailed))
	cancelledBefore := testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeCancelled))

	RecordAnalysisStarted()
	RecordAnalysisFinished(OutcomeFailed, time.Second, 0, 0, 0)
	RecordAnalysisStarted()
	RecordAnalysisFinished(OutcomeCancelled, time.Second, 2, 80, 0)

	assert.Equal(t, failedBefore+1, testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, cancelledBefore+1, testutil.ToFloat64(analysesFinishedTotal.WithLabelValues(OutcomeCancelled)))
}

func TestWSConnectionGauge(t *testing.T) {
	activeBefore := testutil.ToFloat64(wsConnectionsActive)

	WSConnectionOpened()
	WSConnectionOpened()
	assert.Equal(t, activeBefore+2, testutil.ToFloat64(wsConnectionsActive))

	WSConnectionClosed()
	WSConnectionClosed()
	assert.Equal(t, activeBefore, testutil.ToFloat64(wsConnectionsActive))
}

func TestHandlerServesPrometheusText(t *testing.T) {
	RecordSearch(100 * time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "clippnj_searches_total")
	assert.Contains(t, string(body), "clippnj_analysis_duration_seconds")
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAnalysisOperation(t *testing.T) {
	counter := AnalysisOperations.WithLabelValues("save", OutcomeSuccess)
	before := testutil.ToFloat64(counter)

	RecordAnalysisOperation("save", OutcomeSuccess)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := HTTPRequests.WithLabelValues("GET", "/analyses", "200")
	before := testutil.ToFloat64(counter)

	RecordHTTPRequest("GET", "/analyses", 200, 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestObserveStoreOperation(t *testing.T) {
	ObserveStoreOperation("find_by_id", time.Now().Add(-time.Millisecond))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StoreOperationDuration), 1)
}

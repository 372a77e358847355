package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveJob(t *testing.T) {
	ObserveJob("metrics-test", "", 20*time.Millisecond)
	ObserveJob("metrics-test", "INVALID_INPUT", 5*time.Millisecond)
	ObserveJob("metrics-test", "INVALID_INPUT", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "INVALID_INPUT")))
}

func TestObserveClassification(t *testing.T) {
	before := testutil.ToFloat64(ClassificationsDegraded)

	ObserveClassification("METRICS_TEST", false, 0.001)
	ObserveClassification("METRICS_TEST", true, 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(Classifications.WithLabelValues("METRICS_TEST")))
	assert.Equal(t, before+1, testutil.ToFloat64(ClassificationsDegraded))
}

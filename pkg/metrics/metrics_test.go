package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(EmailsSent.WithLabelValues("metrics-test", "disabled"))

	RecordEmail("metrics-test", "disabled", 0)

	assert.Equal(t, before+1, testutil.ToFloat64(EmailsSent.WithLabelValues("metrics-test", "disabled")))
}

func TestRecordDBOperation(t *testing.T) {
	RecordDBOperation("metrics-test", "save", "success", 0.01)

	assert.Equal(t, float64(1), testutil.ToFloat64(DBOperationTotal.WithLabelValues("metrics-test", "save", "success")))
}

func TestRecordInfrastructureMetrics_SamplesImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	RecordInfrastructureMetrics(ctx)

	assert.Positive(t, testutil.ToFloat64(GoRoutines))
	assert.Positive(t, testutil.ToFloat64(HeapAlloc))
}

func TestMeasureDuration(t *testing.T) {
	assert.GreaterOrEqual(t, MeasureDuration(time.Now().Add(-time.Second)), 1.0)
}

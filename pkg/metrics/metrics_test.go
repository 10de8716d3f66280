package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/student/:id/progress", "200"))
	RecordHTTPRequest("GET", "/api/student/:id/progress", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/student/:id/progress", "200"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	assert.Equal(t, start+2, testutil.ToFloat64(HTTPActiveRequests))
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	assert.Equal(t, start, testutil.ToFloat64(HTTPActiveRequests))
}

func TestPlanOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{apperrors.NotFound("student S1"), OutcomeNotFound},
		{apperrors.Uninitialized("vectors not built"), OutcomeUninitialized},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanOutcome(tt.err))
		})
	}
}

func TestRecordPlan(t *testing.T) {
	before := testutil.ToFloat64(PlansGenerated.WithLabelValues(OutcomeNotFound))
	RecordPlan(time.Millisecond, apperrors.NotFound("student S9"))
	assert.Equal(t, before+1, testutil.ToFloat64(PlansGenerated.WithLabelValues(OutcomeNotFound)))
}

func TestGauges(t *testing.T) {
	SetDatasetRows("concepts", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(DatasetRows.WithLabelValues("concepts")))

	SetClusterSize(2, "High Performers", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(ClusterSize.WithLabelValues("2", "High Performers")))
}

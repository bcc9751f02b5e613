package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterwatch/internal/types"
)

func TestPrometheusMetrics_RecordRequest(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordRequest("GET", "/api/weather/{city}", "200", 120*time.Millisecond)
	m.RecordRequest("GET", "/api/weather/{city}", "200", 80*time.Millisecond)
	m.RecordRequest("GET", "/api/weather/{city}", "400", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/weather/{city}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/weather/{city}", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestPrometheusMetrics_DomainCounters(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordFetch("city", "success", time.Second)
	m.RecordFetch("bulk", "provider_error", time.Second)
	m.RecordAssessment(types.RiskLevelHigh)
	m.RecordAssessment(types.RiskLevelHigh)
	m.RecordAlert(types.RiskLevelMedium)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherFetches.WithLabelValues("city", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherFetches.WithLabelValues("bulk", "provider_error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RiskAssessments.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsRaised.WithLabelValues("MEDIUM")))
}

func TestPrometheusMetrics_InstancesAreIndependent(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordAlert(types.RiskLevelHigh)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.AlertsRaised.WithLabelValues("HIGH")))
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordAlert(types.RiskLevelHigh)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `disasterwatch_alerts_raised_total{level="HIGH"} 1`)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func dims(in *cloudwatch.PutMetricDataInput, i int) map[string]string {
	out := map[string]string{}
	for _, d := range in.MetricData[i].Dimensions {
		out[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	return out
}

func TestCloudWatchMetrics_RecordRequest(t *testing.T) {
	fake := &fakeCloudWatch{}
	m := NewCloudWatchMetrics(fake, "DisasterWatch", nil)

	m.RecordRequest("POST", "/api/status", "200", 42*time.Millisecond)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "DisasterWatch", aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 2)

	assert.Equal(t, MetricAPIRequestCount, aws.ToString(in.MetricData[0].MetricName))
	assert.Equal(t, map[string]string{"Method": "POST", "Endpoint": "/api/status", "Status": "200"}, dims(in, 0))

	assert.Equal(t, MetricAPILatency, aws.ToString(in.MetricData[1].MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(in.MetricData[1].Value))
	assert.Equal(t, map[string]string{"Method": "POST", "Endpoint": "/api/status"}, dims(in, 1))
}

func TestCloudWatchMetrics_DomainMetrics(t *testing.T) {
	fake := &fakeCloudWatch{}
	m := NewCloudWatchMetrics(fake, "DisasterWatch", nil)

	m.RecordFetch("coordinates", "success", 300*time.Millisecond)
	m.RecordAssessment(types.RiskLevelLow)
	m.RecordAlert(types.RiskLevelHigh)

	require.Len(t, fake.inputs, 3)
	assert.Equal(t, MetricWeatherFetch, aws.ToString(fake.inputs[0].MetricData[0].MetricName))
	assert.Equal(t, map[string]string{"Kind": "coordinates", "Outcome": "success"}, dims(fake.inputs[0], 0))
	assert.Equal(t, MetricRiskAssessment, aws.ToString(fake.inputs[1].MetricData[0].MetricName))
	assert.Equal(t, map[string]string{"Level": "LOW"}, dims(fake.inputs[1], 0))
	assert.Equal(t, MetricAlertRaised, aws.ToString(fake.inputs[2].MetricData[0].MetricName))
}

func TestCloudWatchMetrics_ErrorsAreLoggedNotReturned(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := NewCloudWatchMetrics(&fakeCloudWatch{err: errors.New("throttled")}, "DisasterWatch", logger)

	m.RecordAlert(types.RiskLevelHigh)

	assert.Contains(t, buf.String(), "failed to record metric")
	assert.Contains(t, buf.String(), "throttled")
}

func TestNopSatisfiesSinks(t *testing.T) {
	var n Nop
	n.RecordRequest("GET", "/", "200", time.Second)
	n.RecordFetch("city", "success", time.Second)
	n.RecordAssessment(types.RiskLevelLow)
	n.RecordAlert(types.RiskLevelLow)
}

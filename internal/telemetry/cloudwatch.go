package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"disasterwatch/internal/types"
)

// CloudWatch metric names and dimensions.
const (
	MetricAPIRequestCount = "APIRequestCount"
	MetricAPILatency      = "APILatency"
	MetricWeatherFetch    = "WeatherFetch"
	MetricWeatherLatency  = "WeatherFetchLatency"
	MetricRiskAssessment  = "RiskAssessment"
	MetricAlertRaised     = "AlertRaised"
	DimMethod             = "Method"
	DimEndpoint           = "Endpoint"
	DimStatus             = "Status"
	DimKind               = "Kind"
	DimOutcome            = "Outcome"
	DimLevel              = "Level"
	cloudWatchPutTimeout  = 2 * time.Second
)

// CloudWatchClient abstracts PutMetricData for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics pushes every observation with PutMetricData. Failures are
// logged and never surface to the caller.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, d time.Duration) {
	dims := []cwtypes.Dimension{dim(DimMethod, method), dim(DimEndpoint, endpoint)}
	m.put("request",
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: append(dims, dim(DimStatus, status)),
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricAPILatency),
			Value:      aws.Float64(float64(d.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

func (m *CloudWatchMetrics) RecordFetch(kind, outcome string, d time.Duration) {
	m.put("fetch",
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricWeatherFetch),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{dim(DimKind, kind), dim(DimOutcome, outcome)},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(MetricWeatherLatency),
			Value:      aws.Float64(float64(d.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: []cwtypes.Dimension{dim(DimKind, kind)},
		},
	)
}

func (m *CloudWatchMetrics) RecordAssessment(level types.RiskLevel) {
	m.put("assessment", counter(MetricRiskAssessment, dim(DimLevel, string(level))))
}

func (m *CloudWatchMetrics) RecordAlert(level types.RiskLevel) {
	m.put("alert", counter(MetricAlertRaised, dim(DimLevel, string(level))))
}

func (m *CloudWatchMetrics) put(what string, data ...cwtypes.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), cloudWatchPutTimeout)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Error("failed to record metric", "metric", what, "error", err.Error())
	}
}

func counter(name string, dims ...cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: dims,
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

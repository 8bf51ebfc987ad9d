// Package metrics emits API and evaluation telemetry to AWS CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"solarcheck/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics records request and evaluation metrics.
//
// Metrics emitted:
//   - APILatency, APIRequestCount: Dims {Method, Endpoint, Status}
//   - FeasibilityEvaluation: Dims {Verdict}
//   - EstimatedOutputKWh: no dims, only for feasible verdicts
//
// Failures to publish are logged and swallowed.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

var _ types.EvaluationMetrics = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a collector publishing to namespace. An empty
// namespace selects types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

// RecordRequest emits latency and count for one API request. It runs
// after the response is written, so it uses a background context.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(types.DimMethod), Value: aws.String(method)},
		{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
		{Name: aws.String(types.DimStatus), Value: aws.String(status)},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricAPILatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: dims,
			},
			{
				MetricName: aws.String(types.MetricAPIRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
		},
	}

	if _, err := m.client.PutMetricData(context.Background(), input); err != nil {
		m.logger.Error("failed to record request metric",
			"error", err.Error(),
			"method", method,
			"endpoint", endpoint,
			"status", status,
		)
	}
}

// RecordEvaluation emits the verdict and, for feasible verdicts, the
// estimated daily output.
func (m *CloudWatchMetrics) RecordEvaluation(ctx context.Context, verdict types.FeasibilityVerdict, estimate *types.PowerEstimate) {
	data := []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricEvaluation),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{
				{Name: aws.String(types.DimVerdict), Value: aws.String(verdictLabel(verdict))},
			},
		},
	}
	if estimate != nil {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricEstimatedOutput),
			Value:      aws.Float64(estimate.TotalOutputKWhPerDay),
			Unit:       cwtypes.StandardUnitNone,
		})
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to record evaluation metric",
			"error", err.Error(),
			"feasible", verdict.Feasible,
		)
	}
}

// RecordUpstreamFailure counts a failed call to an upstream provider.
func (m *CloudWatchMetrics) RecordUpstreamFailure(ctx context.Context, provider string, code types.ErrorCode) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricExternalAPIFailure),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimProvider), Value: aws.String(provider)},
					{Name: aws.String(types.DimStatus), Value: aws.String(string(code))},
				},
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to record upstream failure metric",
			"error", err.Error(),
			"provider", provider,
		)
	}
}

// verdictLabel classifies a verdict for the Verdict dimension.
func verdictLabel(v types.FeasibilityVerdict) string {
	switch {
	case !v.Feasible:
		return "not_feasible"
	case len(v.Reasons) > 0:
		return "feasible_with_warnings"
	default:
		return "feasible"
	}
}

// Noop discards every metric.
type Noop struct{}

var _ types.EvaluationMetrics = Noop{}

func (Noop) RecordRequest(string, string, string, time.Duration)                              {}
func (Noop) RecordEvaluation(context.Context, types.FeasibilityVerdict, *types.PowerEstimate) {}
func (Noop) RecordUpstreamFailure(context.Context, string, types.ErrorCode)                   {}

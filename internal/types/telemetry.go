package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricAPILatency         = "APILatency"
	MetricAPIRequestCount    = "APIRequestCount"
	MetricEvaluation         = "FeasibilityEvaluation"
	MetricEstimatedOutput    = "EstimatedOutputKWh"
	MetricExternalAPIFailure = "ExternalAPIFailure"

	// Dimension Keys
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimProvider = "Provider"
	DimVerdict  = "Verdict"

	// Metric Namespace
	MetricNamespace = "SolarCheck"
)

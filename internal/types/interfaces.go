package types

import (
	"context"
	"time"
)

// Evaluator turns an averaged reading into a feasibility verdict.
type Evaluator interface {
	Evaluate(reading EnvironmentalReading) FeasibilityVerdict
}

// LocationResolver resolves a public IP address to a place. An empty ip means
// the caller's own public address.
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) (Location, error)
}

// ReadingSource produces the averaged environmental reading for a location.
type ReadingSource interface {
	Reading(ctx context.Context, loc Location) (EnvironmentalReading, error)
}

// EventPublisher emits evaluation events to downstream consumers.
type EventPublisher interface {
	PublishEvaluation(ctx context.Context, evt EvaluationEvent) error
}

// EvaluationMetrics records evaluation outcomes.
type EvaluationMetrics interface {
	RecordEvaluation(ctx context.Context, verdict FeasibilityVerdict, estimate *PowerEstimate)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

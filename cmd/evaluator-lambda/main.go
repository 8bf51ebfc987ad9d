// Package main is the entrypoint for the Evaluator Lambda function.
//
// The function is invoked directly with a JSON payload
//
//	{"reading": {"avg_solar_irradiance": 5.5, ...}, "panel_count": 5}
//
// and returns the feasibility assessment. It never calls the public climate
// APIs; callers supply the averaged reading.
//
// Cold Start (main):
//  1. Load configuration and initialize the structured logger.
//  2. Initialize CloudWatch metrics and the SQS event publisher when enabled.
//  3. Register the handler and call lambda.Start.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"solarcheck/internal/api/handlers"
	"solarcheck/internal/app"
	"solarcheck/internal/config"
	"solarcheck/internal/core"
	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

// Request is the invocation payload. It is validated with the same rules
// as POST /v1/feasibility.
type Request = handlers.FeasibilityRequest

// Handler holds the dependencies for the evaluator Lambda.
type Handler struct {
	validator *core.Validator
	metrics   types.EvaluationMetrics
	publisher types.EventPublisher
	clock     types.Clock
	logger    *slog.Logger
}

// Handle validates the request and returns its assessment. Validation
// failures come back as *types.AppError so the caller sees the same codes
// as the HTTP API.
func (h *Handler) Handle(ctx context.Context, req Request) (types.Assessment, error) {
	if err := h.validator.ValidateStruct(req); err != nil {
		h.logger.WarnContext(ctx, "rejected invalid request", "error", err)
		return types.Assessment{}, err
	}

	assessment, err := feasibility.Assess(req.Reading.ToReading(), req.Panels())
	if err != nil {
		return types.Assessment{}, err
	}

	h.metrics.RecordEvaluation(ctx, assessment.Verdict, assessment.Estimate)

	evt := types.EvaluationEvent{
		EventID:     "evt_" + uuid.NewString(),
		Reading:     assessment.Reading,
		Verdict:     assessment.Verdict,
		Estimate:    assessment.Estimate,
		EvaluatedAt: h.clock.Now(),
	}
	if err := h.publisher.PublishEvaluation(ctx, evt); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish evaluation event", "event_id", evt.EventID, "error", err)
	}

	h.logger.InfoContext(ctx, "evaluation complete",
		"feasible", assessment.Verdict.Feasible,
		"reasons", len(assessment.Verdict.Reasons),
	)
	return assessment, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	logger.Info("evaluator lambda initializing (cold start)", "build", cfg.Build.String())

	telemetry, err := app.NewTelemetry(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	handler := &Handler{
		validator: core.NewValidator(logger),
		metrics:   telemetry.Metrics,
		publisher: telemetry.Publisher,
		clock:     types.RealClock{},
		logger:    logger,
	}

	lambda.Start(handler.Handle)
}

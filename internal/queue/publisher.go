// Package queue publishes evaluation events to SQS for downstream consumers
// such as analytics or follow-up notifications.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"solarcheck/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// EvaluationPublisher serializes EvaluationEvents and sends them to a
// single SQS queue. Message attributes carry the verdict so consumers can
// filter without parsing the body.
type EvaluationPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

var _ types.EventPublisher = (*EvaluationPublisher)(nil)

// NewEvaluationPublisher creates a publisher for queueURL.
func NewEvaluationPublisher(client SQSSender, queueURL string, logger *slog.Logger) *EvaluationPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// PublishEvaluation sends evt as a JSON message body.
func (p *EvaluationPublisher) PublishEvaluation(ctx context.Context, evt types.EvaluationEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal EvaluationEvent: %w", err)
	}

	attrs := map[string]sqsTypes.MessageAttributeValue{
		"event_id": {
			DataType:    aws.String("String"),
			StringValue: aws.String(evt.EventID),
		},
		"feasible": {
			DataType:    aws.String("String"),
			StringValue: aws.String(strconv.FormatBool(evt.Verdict.Feasible)),
		},
		"reason_count": {
			DataType:    aws.String("Number"),
			StringValue: aws.String(strconv.Itoa(len(evt.Verdict.Reasons))),
		},
	}
	if evt.SessionID != "" {
		attrs["session_id"] = sqsTypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(evt.SessionID),
		}
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send EvaluationEvent to %s: %w", p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "evaluation event sent",
		"queue_url", p.queueURL,
		"event_id", evt.EventID,
		"session_id", evt.SessionID,
		"feasible", evt.Verdict.Feasible,
		"request_id", types.GetRequestID(ctx),
	)
	return nil
}

// NoopPublisher drops events. Used when no queue is configured.
type NoopPublisher struct{}

var _ types.EventPublisher = NoopPublisher{}

// PublishEvaluation does nothing.
func (NoopPublisher) PublishEvaluation(context.Context, types.EvaluationEvent) error { return nil }

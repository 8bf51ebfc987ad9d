package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"solarcheck/internal/types"
)

// --- Mock SQS Client ---

// mockSQSSender captures SendMessage calls for test assertions.
type mockSQSSender struct {
	calls []*sqs.SendMessageInput
	err   error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

// --- Test Helpers ---

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/solarcheck-evaluations"

func newTestPublisher(mock *mockSQSSender) *EvaluationPublisher {
	return NewEvaluationPublisher(mock, testQueueURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testEvent() types.EvaluationEvent {
	return types.EvaluationEvent{
		EventID:   "evt_1",
		SessionID: "ses_1",
		Location:  &types.Location{Lat: 33.45, Lon: -112.07, City: "Phoenix", State: "Arizona"},
		Reading:   types.EnvironmentalReading{SolarIrradiance: 5.5, Temperature: 30, CloudCover: 20, WindSpeed: 10},
		Verdict:   types.FeasibilityVerdict{Feasible: true, Reasons: []types.Reason{}},
		Estimate: &types.PowerEstimate{
			PerPanelOutputKWhPerDay: 1.584,
			PanelCount:              5,
			TotalOutputKWhPerDay:    7.92,
		},
		EvaluatedAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- Tests ---

func TestPublishEvaluation_SendsToQueue(t *testing.T) {
	mock := &mockSQSSender{}
	pub := newTestPublisher(mock)

	if err := pub.PublishEvaluation(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishEvaluation returned unexpected error: %v", err)
	}

	if len(mock.calls) != 1 {
		t.Fatalf("expected 1 SQS call, got %d", len(mock.calls))
	}
	if *mock.calls[0].QueueUrl != testQueueURL {
		t.Errorf("expected queue URL %q, got %q", testQueueURL, *mock.calls[0].QueueUrl)
	}
}

func TestPublishEvaluation_BodyRoundTrips(t *testing.T) {
	mock := &mockSQSSender{}
	pub := newTestPublisher(mock)
	evt := testEvent()

	if err := pub.PublishEvaluation(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got types.EvaluationEvent
	if err := json.Unmarshal([]byte(*mock.calls[0].MessageBody), &got); err != nil {
		t.Fatalf("message body is not valid JSON: %v", err)
	}
	if got.EventID != evt.EventID || got.SessionID != evt.SessionID {
		t.Errorf("ids mismatch: got %+v", got)
	}
	if got.Estimate == nil || got.Estimate.TotalOutputKWhPerDay != 7.92 {
		t.Errorf("estimate lost in transit: %+v", got.Estimate)
	}
	if !strings.Contains(*mock.calls[0].MessageBody, `"avg_solar_irradiance":5.5`) {
		t.Errorf("expected reading field names in body, got %s", *mock.calls[0].MessageBody)
	}
}

func TestPublishEvaluation_Attributes(t *testing.T) {
	mock := &mockSQSSender{}
	pub := newTestPublisher(mock)
	evt := testEvent()
	evt.Verdict = types.FeasibilityVerdict{
		Feasible: false,
		Reasons: []types.Reason{
			{Code: types.ReasonInsufficientSunlight, Severity: types.SeverityFatal},
			{Code: types.ReasonHighWindSpeed, Severity: types.SeverityWarning},
		},
	}

	if err := pub.PublishEvaluation(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := mock.calls[0].MessageAttributes
	checks := map[string]string{
		"event_id":     "evt_1",
		"session_id":   "ses_1",
		"feasible":     "false",
		"reason_count": "2",
	}
	for name, want := range checks {
		attr, ok := attrs[name]
		if !ok {
			t.Errorf("missing attribute %q", name)
			continue
		}
		if *attr.StringValue != want {
			t.Errorf("attribute %q: expected %q, got %q", name, want, *attr.StringValue)
		}
	}
	if *attrs["reason_count"].DataType != "Number" {
		t.Errorf("reason_count should be a Number attribute")
	}
}

func TestPublishEvaluation_OmitsEmptySessionID(t *testing.T) {
	mock := &mockSQSSender{}
	pub := newTestPublisher(mock)
	evt := testEvent()
	evt.SessionID = ""

	if err := pub.PublishEvaluation(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := mock.calls[0].MessageAttributes["session_id"]; ok {
		t.Error("session_id attribute should be omitted for stateless evaluations")
	}
}

func TestPublishEvaluation_SQSError(t *testing.T) {
	mock := &mockSQSSender{err: fmt.Errorf("access denied")}
	pub := newTestPublisher(mock)

	err := pub.PublishEvaluation(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected error when SQS fails")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped SQS error, got %v", err)
	}
	if !strings.Contains(err.Error(), testQueueURL) {
		t.Errorf("expected queue URL in error, got %v", err)
	}
}

func TestNoopPublisher(t *testing.T) {
	if err := (NoopPublisher{}).PublishEvaluation(context.Background(), testEvent()); err != nil {
		t.Errorf("NoopPublisher returned %v", err)
	}
}

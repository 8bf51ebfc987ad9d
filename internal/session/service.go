package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

// Deps are the collaborators a Service orchestrates. Publisher and Metrics
// are optional.
type Deps struct {
	Resolver  types.LocationResolver
	Readings  types.ReadingSource
	Evaluator types.Evaluator
	Publisher types.EventPublisher
	Metrics   types.EvaluationMetrics
	Clock     types.Clock
	// DefaultPanels is the panel count estimated right after evaluation.
	DefaultPanels int
}

// Service runs sessions through the guided check. Upstream calls happen
// outside the store lock; the transition is re-validated when the result is
// written back, so two racing requests cannot both advance a session.
type Service struct {
	store  *Store
	deps   Deps
	logger *slog.Logger
}

// NewService creates a Service over store.
func NewService(store *Store, deps Deps, logger *slog.Logger) *Service {
	if deps.Evaluator == nil {
		deps.Evaluator = feasibility.NewEvaluator()
	}
	if deps.Clock == nil {
		deps.Clock = types.RealClock{}
	}
	if deps.DefaultPanels == 0 {
		deps.DefaultPanels = feasibility.DefaultPanelCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, deps: deps, logger: logger}
}

// Start opens a new idle session.
func (s *Service) Start(ctx context.Context) Session {
	sess := s.store.Create()
	s.logger.InfoContext(ctx, "session started", "session_id", sess.ID)
	return sess
}

// Get returns the current snapshot of a session.
func (s *Service) Get(_ context.Context, id string) (Session, error) {
	return s.store.Get(id)
}

// ResolveLocation locates ip (empty for the caller's own address) and moves
// the session to location_resolved.
func (s *Service) ResolveLocation(ctx context.Context, id, ip string) (Session, error) {
	if _, err := s.precheck(id, types.TriggerResolveLocation); err != nil {
		return Session{}, err
	}

	loc, err := s.deps.Resolver.Resolve(ctx, ip)
	if err != nil {
		s.logger.WarnContext(ctx, "location resolution failed", "session_id", id, "error", err)
		return Session{}, err
	}

	return s.advance(ctx, id, types.TriggerResolveLocation, func(sess *Session) error {
		sess.Location = &loc
		return nil
	})
}

// FetchData pulls and averages climate data for the resolved location.
func (s *Service) FetchData(ctx context.Context, id string) (Session, error) {
	current, err := s.precheck(id, types.TriggerFetchData)
	if err != nil {
		return Session{}, err
	}

	reading, err := s.deps.Readings.Reading(ctx, *current.Location)
	if err != nil {
		s.logger.WarnContext(ctx, "climate data fetch failed", "session_id", id, "error", err)
		return Session{}, err
	}

	return s.advance(ctx, id, types.TriggerFetchData, func(sess *Session) error {
		sess.Reading = &reading
		return nil
	})
}

// Evaluate applies the feasibility thresholds to the fetched reading. A
// feasible verdict comes with an estimate for the default panel count.
// The evaluation event is published after the session is updated; a
// publish failure is logged and does not fail the request.
func (s *Service) Evaluate(ctx context.Context, id string) (Session, error) {
	sess, err := s.advance(ctx, id, types.TriggerEvaluate, func(sess *Session) error {
		verdict := s.deps.Evaluator.Evaluate(*sess.Reading)
		sess.Verdict = &verdict
		sess.Estimate = nil
		if !verdict.Feasible {
			return nil
		}
		est, err := feasibility.Estimate(sess.Reading.SolarIrradiance, s.deps.DefaultPanels)
		if err != nil {
			return err
		}
		sess.Estimate = &est
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordEvaluation(ctx, *sess.Verdict, sess.Estimate)
	}
	s.publish(ctx, sess)
	return sess, nil
}

// SelectPanels re-estimates output for n panels. Only feasible sessions
// have an estimate to adjust.
func (s *Service) SelectPanels(ctx context.Context, id string, n int) (Session, error) {
	return s.advance(ctx, id, types.TriggerSelectPanels, func(sess *Session) error {
		if sess.Verdict == nil || !sess.Verdict.Feasible {
			return types.NewAppErrorWithDetails(
				types.ErrCodeConflictNotFeasible,
				"location is not feasible for solar; no estimate available",
				nil,
				map[string]any{"session_id": sess.ID},
			)
		}
		est, err := feasibility.Estimate(sess.Reading.SolarIrradiance, n)
		if err != nil {
			return err
		}
		sess.Estimate = &est
		return nil
	})
}

// End closes the session. An ended session only accepts Restart.
func (s *Service) End(ctx context.Context, id string) (Session, error) {
	return s.advance(ctx, id, types.TriggerEnd, nil)
}

// Restart discards an ended session and opens a fresh idle one.
func (s *Service) Restart(ctx context.Context, id string) (Session, error) {
	fresh, err := s.store.Replace(id, func(sess Session) error {
		_, err := Next(sess.State, types.TriggerRestart)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "session restarted", "previous_session_id", id, "session_id", fresh.ID)
	return fresh, nil
}

// precheck fails fast before any upstream work if trigger is not valid in
// the session's current state.
func (s *Service) precheck(id string, trigger types.SessionTrigger) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	if _, err := Next(sess.State, trigger); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// advance fires trigger against the stored session, applying mutate before
// the state changes. Both happen under the store lock.
func (s *Service) advance(ctx context.Context, id string, trigger types.SessionTrigger, mutate func(*Session) error) (Session, error) {
	var from types.SessionState
	sess, err := s.store.Update(id, func(sess *Session) error {
		to, err := Next(sess.State, trigger)
		if err != nil {
			return err
		}
		if mutate != nil {
			if err := mutate(sess); err != nil {
				return err
			}
		}
		from = sess.State
		sess.State = to
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.InfoContext(ctx, "session transition",
		"session_id", id,
		"trigger", string(trigger),
		"from", string(from),
		"to", string(sess.State),
	)
	return sess, nil
}

func (s *Service) publish(ctx context.Context, sess Session) {
	if s.deps.Publisher == nil {
		return
	}
	evt := types.EvaluationEvent{
		EventID:     "evt_" + uuid.NewString(),
		SessionID:   sess.ID,
		Location:    sess.Location,
		Reading:     *sess.Reading,
		Verdict:     *sess.Verdict,
		Estimate:    sess.Estimate,
		EvaluatedAt: s.deps.Clock.Now(),
	}
	if err := s.deps.Publisher.PublishEvaluation(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish evaluation event",
			"session_id", sess.ID,
			"event_id", evt.EventID,
			"error", err,
		)
	}
}

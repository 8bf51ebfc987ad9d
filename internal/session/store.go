package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"solarcheck/internal/types"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 30 * time.Minute

// IDPrefix marks session identifiers.
const IDPrefix = "ses_"

// Session is a snapshot of one pass through the guided check.
type Session struct {
	ID        string                      `json:"id"`
	State     types.SessionState          `json:"state"`
	Location  *types.Location             `json:"location,omitempty"`
	Reading   *types.EnvironmentalReading `json:"reading,omitempty"`
	Verdict   *types.FeasibilityVerdict   `json:"verdict,omitempty"`
	Estimate  *types.PowerEstimate        `json:"estimate,omitempty"`
	Next      []types.SessionTrigger      `json:"next"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// clone returns a deep copy so callers never share memory with the store.
func (s *Session) clone() Session {
	c := *s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	if s.Reading != nil {
		r := *s.Reading
		c.Reading = &r
	}
	if s.Verdict != nil {
		v := *s.Verdict
		v.Reasons = append([]types.Reason(nil), s.Verdict.Reasons...)
		v.Checks = append([]types.CheckResult(nil), s.Verdict.Checks...)
		c.Verdict = &v
	}
	if s.Estimate != nil {
		e := *s.Estimate
		c.Estimate = &e
	}
	c.Next = Allowed(s.State)
	return c
}

// Store keeps sessions in process memory. Nothing survives a restart.
// Expired sessions are swept whenever the store is touched.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    types.Clock
}

// NewStore creates an empty Store. A zero ttl selects DefaultTTL.
func NewStore(ttl time.Duration, clock types.Clock) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Create stores a new idle session and returns it.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)
	return s.createLocked(now)
}

// Replace swaps the session with id for a fresh idle one, provided check
// accepts the current record. The check, the removal and the creation
// happen under one lock, so only one of several concurrent callers wins.
func (s *Store) Replace(id string, check func(Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, notFound(id)
	}
	if err := check(sess.clone()); err != nil {
		return Session{}, err
	}
	delete(s.sessions, id)
	return s.createLocked(now), nil
}

func (s *Store) createLocked(now time.Time) Session {
	sess := &Session{
		ID:        IDPrefix + uuid.NewString(),
		State:     types.SessionIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return sess.clone()
}

// Get returns the session with id, or not_found_session if it is unknown
// or expired.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.clock.Now())
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, notFound(id)
	}
	return sess.clone(), nil
}

// Update applies fn to the stored session under the store lock. fn sees
// the live record; returning an error leaves it unchanged.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, notFound(id)
	}

	work := sess.clone()
	if err := fn(&work); err != nil {
		return Session{}, err
	}
	work.ID = sess.ID
	work.CreatedAt = sess.CreatedAt
	work.UpdatedAt = now
	*sess = work
	return sess.clone(), nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.clock.Now())
	return len(s.sessions)
}

func (s *Store) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func notFound(id string) *types.AppError {
	return types.NewAppErrorWithDetails(
		types.ErrCodeNotFoundSession,
		"session not found or expired",
		nil,
		map[string]any{"session_id": id},
	)
}

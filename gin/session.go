package gin

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seoentity/seoentity"
)

// Session store defaults.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// sessionState is one visitor's snapshot and whether a run is in flight.
type sessionState struct {
	snapshot seoentity.Session
	running  bool
	lastSeen time.Time
}

// SessionStore keeps one Session per visitor. Snapshots are replaced
// wholesale, never edited in place. Idle sessions expire after the TTL and
// the oldest idle session is evicted when the store is full. Sessions with
// a run in flight are never evicted.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionTTL sets how long an untouched session is kept.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(s *SessionStore) {
		s.ttl = d
	}
}

// WithMaxSessions caps the number of stored sessions.
func WithMaxSessions(n int) SessionOption {
	return func(s *SessionStore) {
		s.max = n
	}
}

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore returns an empty store.
func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		ttl:      DefaultSessionTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
		sessions: make(map[string]*sessionState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the snapshot for id. It never creates a session.
func (s *SessionStore) Lookup(id string) (seoentity.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.live(id)
	if !ok {
		return seoentity.Session{}, false
	}
	st.lastSeen = s.now()
	return st.snapshot, true
}

// Ensure returns the snapshot for id, creating a session under a fresh ID
// when id is blank, unknown or expired. Callers must hand the returned ID
// back to the client.
func (s *SessionStore) Ensure(id string) seoentity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.live(id); ok {
		st.lastSeen = s.now()
		return st.snapshot
	}

	s.evict()
	st := &sessionState{
		snapshot: seoentity.Session{ID: uuid.New().String()},
		lastSeen: s.now(),
	}
	s.sessions[st.snapshot.ID] = st
	return st.snapshot
}

// Begin marks a run in progress and returns the snapshot it starts from.
// Returns ECONFLICT if the session already has a run in progress and
// ENOTFOUND if the session does not exist.
func (s *SessionStore) Begin(id string) (seoentity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.live(id)
	if !ok {
		return seoentity.Session{}, seoentity.Errorf(seoentity.ENOTFOUND, "session expired, please resubmit")
	}
	if st.running {
		return st.snapshot, seoentity.Errorf(seoentity.ECONFLICT, "an analysis is already running for this session")
	}
	st.running = true
	st.lastSeen = s.now()
	return st.snapshot, nil
}

// End finishes the run started by Begin, storing next as the new snapshot.
func (s *SessionStore) End(next seoentity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[next.ID]
	if !ok {
		st = &sessionState{}
		s.sessions[next.ID] = st
	}
	st.snapshot = next
	st.running = false
	st.lastSeen = s.now()
}

// Len returns the number of sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live returns the unexpired session for id, dropping it if expired.
// Must be called with mu held.
func (s *SessionStore) live(id string) (*sessionState, bool) {
	if id == "" {
		return nil, false
	}
	st, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(st) {
		delete(s.sessions, id)
		return nil, false
	}
	return st, true
}

func (s *SessionStore) expired(st *sessionState) bool {
	return !st.running && s.ttl > 0 && s.now().Sub(st.lastSeen) > s.ttl
}

// evict makes room for one new session: expired sessions go first, then the
// least recently seen idle ones. Must be called with mu held.
func (s *SessionStore) evict() {
	for id, st := range s.sessions {
		if s.expired(st) {
			delete(s.sessions, id)
		}
	}
	for s.max > 0 && len(s.sessions) >= s.max {
		var oldestID string
		var oldest time.Time
		for id, st := range s.sessions {
			if st.running {
				continue
			}
			if oldestID == "" || st.lastSeen.Before(oldest) {
				oldestID, oldest = id, st.lastSeen
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.sessions, oldestID)
	}
}

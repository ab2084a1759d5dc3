package onboarding

import (
	"sync"
	"time"
)

const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps live onboarding sessions in memory. Sessions are
// discarded after a fixed TTL; the page starts over via resolve if it comes
// back later.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (st *SessionStore) Put(s *Session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	time.AfterFunc(st.ttl, func() {
		st.Remove(s.ID)
	})
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove drops the session and closes it so late slot timers cannot fire
// against discarded state.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Close()
	}
}

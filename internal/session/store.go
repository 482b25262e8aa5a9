package session

import "sync"

// Session is the per-user conversation record. At most one workflow
// step is active at a time; the zero state is Idle.
type Session struct {
	UserID int64
	Step   Step
}

// Store keeps one session per user. Sessions are independent: the lock
// only guards the map, never a cross-user operation. Mutations to one
// user's session are serialized upstream by the dispatcher.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
	}
}

// Get returns the user's session, creating an idle one if absent.
func (s *Store) Get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess = &Session{UserID: userID, Step: Idle{}}
	s.sessions[userID] = sess
	return sess
}

// SetStep replaces the user's current step. Entering a new workflow
// goes through here too: the new step supersedes whatever was active.
func (s *Store) SetStep(userID int64, step Step) {
	sess := s.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Step = step
}

// Clear resets the user's session to idle, dropping all collected
// fields.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

package session

import (
	"context"
	"log"
	"sync"

	"github.com/visitlog-dev/visitlog/pkg/observability"
)

// Registry holds at most one active session per user and delegates
// conversation state to a StateStore. Registry is safe for concurrent use.
type Registry struct {
	states StateStore

	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewRegistry creates a registry backed by the given state store.
func NewRegistry(states StateStore) *Registry {
	return &Registry{
		states:   states,
		sessions: make(map[int64]*Session),
	}
}

// SetSession installs a session for the user, retiring any previous one.
func (r *Registry) SetSession(userID int64, sess *Session) {
	r.mu.Lock()
	if prev, ok := r.sessions[userID]; ok {
		log.Printf("session: retiring previous session for user %d in %s", userID, prev.FolderPath())
	}
	r.sessions[userID] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	observability.SetActiveSessions(count)
	log.Printf("session: user %d started recording in %s", userID, sess.FolderPath())
}

// GetSession returns the user's active session, if any.
func (r *Registry) GetSession(userID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[userID]
	return sess, ok
}

// HasActiveSession reports whether the user has a session.
func (r *Registry) HasActiveSession(userID int64) bool {
	_, ok := r.GetSession(userID)
	return ok
}

// ClearSession removes and returns the user's session. It is a no-op
// when no session exists.
func (r *Registry) ClearSession(userID int64) (*Session, bool) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if ok {
		observability.SetActiveSessions(count)
		log.Printf("session: user %d stopped recording in %s", userID, sess.FolderPath())
	}
	return sess, ok
}

// ActiveCount returns the number of live sessions.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GetState returns the user's conversation state.
func (r *Registry) GetState(ctx context.Context, userID int64) (State, error) {
	return r.states.Get(ctx, userID)
}

// SetState records the user's conversation state.
func (r *Registry) SetState(ctx context.Context, userID int64, state State) error {
	return r.states.Set(ctx, userID, state)
}

// ResetState returns the user to StateIdle.
func (r *Registry) ResetState(ctx context.Context, userID int64) error {
	return r.states.Clear(ctx, userID)
}

// Close releases the underlying state store.
func (r *Registry) Close() error {
	return r.states.Close()
}

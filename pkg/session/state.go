package session

import (
	"context"
	"fmt"
	"sync"
)

// State identifies where a user is in a multi-step dialogue.
// The zero value is StateIdle.
type State int

const (
	// StateIdle means no dialogue flow is in progress.
	StateIdle State = iota
	// StateChoosingFolder means the user is browsing folders.
	StateChoosingFolder
	// StateCreatingFolder means the user was asked for a new folder name.
	StateCreatingFolder
	// StateAdminMenu means the user is in the admin menu.
	StateAdminMenu
	// StateAddingUser means an admin was asked for a user ID to allow.
	StateAddingUser
	// StateRemovingUser means an admin was asked for a user ID to remove.
	StateRemovingUser
	// StateAddingFolder means an admin was asked for a folder path to allow.
	StateAddingFolder
	// StateRemovingFolder means an admin was asked for a folder path to remove.
	StateRemovingFolder
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateChoosingFolder: "choosing_folder",
	StateCreatingFolder: "creating_folder",
	StateAdminMenu:      "admin_menu",
	StateAddingUser:     "adding_user",
	StateRemovingUser:   "removing_user",
	StateAddingFolder:   "adding_folder",
	StateRemovingFolder: "removing_folder",
}

// String returns the wire name of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState converts a wire name back into a State.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateIdle, fmt.Errorf("unknown state %q", name)
}

// StateStore persists per-user conversation state. A missing entry
// reads as StateIdle. Implementations are safe for concurrent use.
type StateStore interface {
	Get(ctx context.Context, userID int64) (State, error)
	Set(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
	Close() error
}

// MemoryStateStore keeps conversation state in process memory.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[int64]State)}
}

// Get returns the user's state, StateIdle when unset.
func (s *MemoryStateStore) Get(_ context.Context, userID int64) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[userID], nil
}

// Set records the user's state.
func (s *MemoryStateStore) Set(_ context.Context, userID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}

// Clear resets the user to StateIdle.
func (s *MemoryStateStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStateStore) Close() error { return nil }

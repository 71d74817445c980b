package session

import (
	"context"
	"sync"
	"testing"
)

func newTestRegistry() *Registry {
	return NewRegistry(NewMemoryStateStore())
}

func TestRegistrySingleSessionPerUser(t *testing.T) {
	reg := newTestRegistry()

	first := NewSession(1, "/a", "a")
	second := NewSession(1, "/b", "b")

	reg.SetSession(1, first)
	reg.SetSession(1, second)

	got, ok := reg.GetSession(1)
	if !ok {
		t.Fatal("GetSession() found no session")
	}
	if got != second {
		t.Errorf("GetSession() = session in %s, want %s", got.FolderPath(), second.FolderPath())
	}
	if reg.ActiveCount() != 1 {
		t.Errorf("ActiveCount() = %d, want 1", reg.ActiveCount())
	}
}

func TestRegistryClearSession(t *testing.T) {
	reg := newTestRegistry()
	sess := NewSession(1, "/a", "a")
	reg.SetSession(1, sess)

	removed, ok := reg.ClearSession(1)
	if !ok || removed != sess {
		t.Fatalf("ClearSession() = (%v, %v), want (%v, true)", removed, ok, sess)
	}
	if reg.HasActiveSession(1) {
		t.Error("HasActiveSession() = true after clear")
	}

	// Clearing again is a no-op.
	if _, ok := reg.ClearSession(1); ok {
		t.Error("second ClearSession() reported a session")
	}
}

func TestRegistrySessionsAreIndependentPerUser(t *testing.T) {
	reg := newTestRegistry()
	reg.SetSession(1, NewSession(1, "/a", "a"))
	reg.SetSession(2, NewSession(2, "/b", "b"))

	reg.ClearSession(1)

	if !reg.HasActiveSession(2) {
		t.Error("clearing user 1 removed user 2's session")
	}
}

func TestRegistryStateRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	state, err := reg.GetState(ctx, 1)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state != StateIdle {
		t.Errorf("default state = %v, want StateIdle", state)
	}

	if err := reg.SetState(ctx, 1, StateChoosingFolder); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	state, _ = reg.GetState(ctx, 1)
	if state != StateChoosingFolder {
		t.Errorf("state = %v, want StateChoosingFolder", state)
	}

	if err := reg.ResetState(ctx, 1); err != nil {
		t.Fatalf("ResetState() error = %v", err)
	}
	state, _ = reg.GetState(ctx, 1)
	if state != StateIdle {
		t.Errorf("state after reset = %v, want StateIdle", state)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			reg.SetSession(userID, NewSession(userID, "/a", "a"))
			_ = reg.SetState(ctx, userID, StateChoosingFolder)
			reg.GetSession(userID)
			_, _ = reg.GetState(ctx, userID)
			reg.ClearSession(userID)
			_ = reg.ResetState(ctx, userID)
		}(int64(i))
	}
	wg.Wait()

	if reg.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", reg.ActiveCount())
	}
}

func TestStateStringRoundTrip(t *testing.T) {
	states := []State{
		StateIdle, StateChoosingFolder, StateCreatingFolder, StateAdminMenu,
		StateAddingUser, StateRemovingUser, StateAddingFolder, StateRemovingFolder,
	}
	for _, s := range states {
		parsed, err := ParseState(s.String())
		if err != nil {
			t.Errorf("ParseState(%q) error = %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("ParseState(%q) = %v, want %v", s.String(), parsed, s)
		}
	}

	if _, err := ParseState("bogus"); err == nil {
		t.Error("ParseState(bogus) expected error")
	}
}

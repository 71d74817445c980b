package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/visitlog-dev/visitlog/pkg/access"
	"github.com/visitlog-dev/visitlog/pkg/allowlist"
	"github.com/visitlog-dev/visitlog/pkg/session"
)

// ErrNotAdmin is returned when a non-admin invokes an admin operation.
var ErrNotAdmin = errors.New("admin access required")

// Admin executes the administration dialogue: managing allowed users
// and allow-list folders. Every operation is gated on admin identity.
type Admin struct {
	users    *access.Control
	guard    *allowlist.Guard
	registry *session.Registry
}

// NewAdmin creates the admin flow over the given collaborators.
func NewAdmin(users *access.Control, guard *allowlist.Guard, registry *session.Registry) *Admin {
	return &Admin{users: users, guard: guard, registry: registry}
}

func (a *Admin) gate(adminID int64) error {
	if !a.users.IsAdmin(adminID) {
		return ErrNotAdmin
	}
	return nil
}

// Open enters the admin menu.
func (a *Admin) Open(ctx context.Context, adminID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateAdminMenu)
}

// BeginAddUser asks the admin for a user ID to allow.
func (a *Admin) BeginAddUser(ctx context.Context, adminID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateAddingUser)
}

// BeginRemoveUser asks the admin for a user ID to remove.
func (a *Admin) BeginRemoveUser(ctx context.Context, adminID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateRemovingUser)
}

// BeginAddFolder asks the admin for a folder path to allow.
func (a *Admin) BeginAddFolder(ctx context.Context, adminID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateAddingFolder)
}

// BeginRemoveFolder asks the admin for a folder path to remove.
func (a *Admin) BeginRemoveFolder(ctx context.Context, adminID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateRemovingFolder)
}

// AddUser allows a user and returns the admin to the menu.
func (a *Admin) AddUser(ctx context.Context, adminID, userID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	if err := a.users.Add(userID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateAdminMenu)
}

// RemoveUser removes a user and returns the admin to the menu.
func (a *Admin) RemoveUser(ctx context.Context, adminID, userID int64) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	if err := a.users.Remove(userID); err != nil {
		return err
	}
	return a.registry.SetState(ctx, adminID, session.StateAdminMenu)
}

// AddFolder adds a path to the allow-list and returns to the menu. The
// path must exist on the backend; the new root is warmed in the
// background.
func (a *Admin) AddFolder(ctx context.Context, adminID int64, path string) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	if err := a.guard.Add(ctx, path); err != nil {
		return fmt.Errorf("add allowed folder: %w", err)
	}
	return a.registry.SetState(ctx, adminID, session.StateAdminMenu)
}

// RemoveFolder removes a path from the allow-list and returns to the menu.
func (a *Admin) RemoveFolder(ctx context.Context, adminID int64, path string) error {
	if err := a.gate(adminID); err != nil {
		return err
	}
	if err := a.guard.Remove(path); err != nil {
		return fmt.Errorf("remove allowed folder: %w", err)
	}
	return a.registry.SetState(ctx, adminID, session.StateAdminMenu)
}

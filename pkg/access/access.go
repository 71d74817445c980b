// Package access controls which users may talk to the service at all.
// Admins come from static configuration; regular users from a JSON file
// that is rewritten wholesale on every change.
package access

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var (
	// ErrAlreadyAllowed is returned when adding a user that is already listed.
	ErrAlreadyAllowed = errors.New("user is already allowed")
	// ErrNotAllowed is returned when removing a user that is not listed.
	ErrNotAllowed = errors.New("user is not in the allowed list")
	// ErrIsAdmin is returned when removing an admin user.
	ErrIsAdmin = errors.New("admins cannot be removed")
)

// Control decides per-user access. An empty user list allows everyone;
// admins are always allowed. Control is safe for concurrent use.
type Control struct {
	filePath string
	admins   map[int64]bool

	mu    sync.RWMutex
	users []int64
}

// NewControl creates a control backed by the given users file; the file
// (and its directory) is created empty when absent.
func NewControl(filePath string, adminIDs []int64) (*Control, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := os.WriteFile(filePath, []byte("[]"), 0600); err != nil {
			return nil, fmt.Errorf("create users file: %w", err)
		}
	}

	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	c := &Control{filePath: filePath, admins: admins}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// IsAllowed reports whether the user may use the service.
func (c *Control) IsAllowed(userID int64) bool {
	if c.admins[userID] {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.users) == 0 {
		return true
	}
	for _, id := range c.users {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is an administrator.
func (c *Control) IsAdmin(userID int64) bool { return c.admins[userID] }

// Users returns a copy of the allowed user list.
func (c *Control) Users() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, len(c.users))
	copy(out, c.users)
	return out
}

// Admins returns the configured admin IDs.
func (c *Control) Admins() []int64 {
	out := make([]int64, 0, len(c.admins))
	for id := range c.admins {
		out = append(out, id)
	}
	return out
}

// Add appends a user and persists the list.
func (c *Control) Add(userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.users {
		if id == userID {
			return ErrAlreadyAllowed
		}
	}

	updated := append(append([]int64{}, c.users...), userID)
	if err := c.save(updated); err != nil {
		return err
	}
	c.users = updated
	log.Printf("access: user %d allowed (%d users)", userID, len(updated))
	return nil
}

// Remove deletes a user and persists the list. Admins cannot be removed.
func (c *Control) Remove(userID int64) error {
	if c.admins[userID] {
		return ErrIsAdmin
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, id := range c.users {
		if id == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotAllowed
	}

	updated := append(append([]int64{}, c.users[:idx]...), c.users[idx+1:]...)
	if err := c.save(updated); err != nil {
		return err
	}
	c.users = updated
	log.Printf("access: user %d removed (%d users)", userID, len(updated))
	return nil
}

// Reload re-reads the users file, replacing in-memory state atomically.
func (c *Control) Reload() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}

	// IDs may be stored as numbers or strings.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse users file: %w", err)
	}

	users := make([]int64, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			id, perr := strconv.ParseInt(s, 10, 64)
			if perr != nil {
				return fmt.Errorf("parse user id %q: %w", s, perr)
			}
			users = append(users, id)
			continue
		}
		var id int64
		if err := json.Unmarshal(r, &id); err != nil {
			return fmt.Errorf("parse user id %s: %w", string(r), err)
		}
		users = append(users, id)
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()

	log.Printf("access: loaded %d allowed users", len(users))
	return nil
}

// save persists the list; callers hold c.mu.
func (c *Control) save(users []int64) error {
	strs := make([]string, len(users))
	for i, id := range users {
		strs[i] = strconv.FormatInt(id, 10)
	}
	data, err := json.MarshalIndent(strs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}

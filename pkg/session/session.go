// Package session tracks per-user recording sessions and conversation state.
// A session binds a user to one folder at a time and names the artifacts
// written there; conversation state drives the multi-step dialogue flows.
package session

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/visitlog-dev/visitlog/pkg/pathutil"
)

// timestampLayout is the UTC stamp baked into artifact names.
const timestampLayout = "20060102_150405"

// Session is an active recording session for a single user.
// The timestamp is frozen at creation so every artifact of the session
// shares one name stem. Session is safe for concurrent use.
type Session struct {
	userID     int64
	folderPath string
	folderName string
	timestamp  string
	startedAt  time.Time

	mu    sync.Mutex
	lines []string
}

// NewSession creates a session starting now.
func NewSession(userID int64, folderPath, folderName string) *Session {
	return NewSessionAt(userID, folderPath, folderName, time.Now().UTC())
}

// NewSessionAt creates a session with an explicit start time.
func NewSessionAt(userID int64, folderPath, folderName string, startedAt time.Time) *Session {
	startedAt = startedAt.UTC()
	return &Session{
		userID:     userID,
		folderPath: pathutil.Normalize(folderPath),
		folderName: folderName,
		timestamp:  startedAt.Format(timestampLayout),
		startedAt:  startedAt,
	}
}

// UserID returns the owning user.
func (s *Session) UserID() int64 { return s.userID }

// FolderPath returns the normalized folder the session records into.
func (s *Session) FolderPath() string { return s.folderPath }

// FolderName returns the display name of the session folder.
func (s *Session) FolderName() string { return s.folderName }

// Timestamp returns the frozen UTC creation stamp (YYYYMMDD_HHMMSS).
func (s *Session) Timestamp() string { return s.timestamp }

// StartedAt returns the session start time in UTC.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// TxtFileName returns the name of the session's meeting log file.
func (s *Session) TxtFileName() string {
	return s.timestamp + "_visit_" + s.safeFolderName() + "_" + strconv.FormatInt(s.userID, 10) + ".txt"
}

// TxtFilePath returns the full remote path of the meeting log file.
func (s *Session) TxtFilePath() string {
	return pathutil.Join(s.folderPath, s.TxtFileName())
}

// FilePrefix returns the name stem for media artifacts saved by the session.
func (s *Session) FilePrefix() string {
	return s.timestamp + "_Files_" + s.safeFolderName() + "_" + strconv.FormatInt(s.userID, 10)
}

func (s *Session) safeFolderName() string {
	return pathutil.SanitizeFileName(s.folderName)
}

// AddMessage records one message in the in-memory log and returns the
// formatted line, stamped with the current local time, for the caller to
// persist remotely. The author tag is omitted when the author is empty.
// AddMessage never fails.
func (s *Session) AddMessage(author, text string) string {
	line := "[" + time.Now().Format("2006-01-02 15:04:05") + "] "
	if author != "" {
		line += "[" + author + "] "
	}
	line += text

	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
	return line
}

// Messages returns a copy of the recorded log lines in order.
func (s *Session) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// MessageCount returns the number of messages recorded so far.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Duration returns how long the session has been running.
func (s *Session) Duration() time.Duration {
	return time.Since(s.startedAt)
}

// Summary returns a human-readable status of the session: folder, log
// file, elapsed time and message count.
func (s *Session) Summary() string {
	d := s.Duration().Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("Recording in %s\nLog file: %s\nDuration: %dh %dm %ds\nMessages: %d",
		s.folderPath, s.TxtFileName(), h, m, sec, s.MessageCount())
}

// Package navigator drives the guided folder-selection dialogue: browsing
// the remote namespace, creating folders, and starting or ending recording
// sessions. It composes the path rules, the allow-list guard, the listing
// cache, and the session registry behind one state machine.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/visitlog-dev/visitlog/pkg/allowlist"
	"github.com/visitlog-dev/visitlog/pkg/dircache"
	"github.com/visitlog-dev/visitlog/pkg/pathutil"
	"github.com/visitlog-dev/visitlog/pkg/session"
	"github.com/visitlog-dev/visitlog/pkg/storage"
)

var (
	// ErrNotAuthorized is returned when a path is outside the allow-list.
	ErrNotAuthorized = errors.New("folder is outside the allowed list")
	// ErrNoActiveSession is returned by session operations without one.
	ErrNoActiveSession = errors.New("no active session")
)

// maxReportLen caps the content echoed back when a session ends.
const maxReportLen = 3000

// truncationMarker is appended when the report is cut at maxReportLen.
const truncationMarker = "\n... (truncated)"

// View is what the transport renders after a navigation step: a title,
// the selectable child folders, and the path the user is looking at.
type View struct {
	Title       string
	Folders     []storage.Folder
	CurrentPath string
}

// EndReport summarizes a finished session for final display.
type EndReport struct {
	FolderPath  string
	TxtFilePath string
	Content     string
	Messages    int
	Duration    time.Duration
}

// Orchestrator executes navigation and session transitions. All state
// lives in the injected collaborators; Orchestrator itself is stateless
// and safe for concurrent use.
type Orchestrator struct {
	client   *storage.Client
	cache    *dircache.Cache
	guard    *allowlist.Guard
	registry *session.Registry
}

// New creates an orchestrator over the given collaborators.
func New(client *storage.Client, cache *dircache.Cache, guard *allowlist.Guard, registry *session.Registry) *Orchestrator {
	return &Orchestrator{
		client:   client,
		cache:    cache,
		guard:    guard,
		registry: registry,
	}
}

// Browse opens the folder-choosing dialogue at the top level. With a
// non-empty allow-list the options are its entries; otherwise the root's
// children.
func (o *Orchestrator) Browse(ctx context.Context, userID int64) (View, error) {
	if err := o.registry.SetState(ctx, userID, session.StateChoosingFolder); err != nil {
		return View{}, err
	}
	return o.rootView(ctx), nil
}

func (o *Orchestrator) rootView(ctx context.Context) View {
	folders := o.guard.Folders()
	if len(folders) == 0 {
		folders = o.cache.Get(ctx, "/")
	}
	return View{Title: "Choose a folder", Folders: folders, CurrentPath: "/"}
}

// Enter descends into a folder. An unauthorized target is rejected and
// the top-level view is returned alongside ErrNotAuthorized so the
// dialogue never dead-ends. An empty folder is still a valid view: the
// user may select it.
func (o *Orchestrator) Enter(ctx context.Context, userID int64, path string) (View, error) {
	path = pathutil.Normalize(path)

	if path != "/" && !o.guard.IsAuthorized(path) {
		log.Printf("navigator: user %d rejected from %s", userID, path)
		return o.rootView(ctx), ErrNotAuthorized
	}

	if err := o.registry.SetState(ctx, userID, session.StateChoosingFolder); err != nil {
		return View{}, err
	}

	if path == "/" {
		return o.rootView(ctx), nil
	}
	return View{
		Title:       pathutil.Leaf(path),
		Folders:     o.cache.Get(ctx, path),
		CurrentPath: path,
	}, nil
}

// Up moves one level towards the root.
func (o *Orchestrator) Up(ctx context.Context, userID int64, current string) (View, error) {
	return o.Enter(ctx, userID, pathutil.Parent(current))
}

// BeginCreateFolder asks the user for a new folder name under current.
func (o *Orchestrator) BeginCreateFolder(ctx context.Context, userID int64) error {
	return o.registry.SetState(ctx, userID, session.StateCreatingFolder)
}

// CreateFolder makes a new folder under current and returns the refreshed
// parent view. The name must be a valid segment and the resulting path
// must be authorized; ancestors are created as needed.
func (o *Orchestrator) CreateFolder(ctx context.Context, userID int64, current, name string) (View, error) {
	if err := pathutil.ValidateSegment(name); err != nil {
		return View{}, fmt.Errorf("invalid folder name: %w", err)
	}

	full := pathutil.Join(pathutil.Normalize(current), name)
	if !o.guard.IsAuthorized(full) {
		return View{}, ErrNotAuthorized
	}

	if err := o.client.MakeDir(ctx, full); err != nil {
		// The user stays in the creating state so they can retry.
		return View{}, fmt.Errorf("create folder %s: %w", full, err)
	}

	parent := pathutil.Parent(full)
	o.cache.Invalidate(parent)
	log.Printf("navigator: user %d created %s", userID, full)
	return o.Enter(ctx, userID, parent)
}

// SelectFolder starts a recording session in the given folder, retiring
// any previous session for the user, and writes the log header plus an
// opening entry authored by username to the session's text file. A
// header write failure is returned to the caller but the session stays
// installed.
func (o *Orchestrator) SelectFolder(ctx context.Context, userID int64, path, username string) (*session.Session, error) {
	path = pathutil.Normalize(path)
	if path != "/" && !o.guard.IsAuthorized(path) {
		return nil, ErrNotAuthorized
	}

	sess := session.NewSession(userID, path, pathutil.Leaf(path))
	o.registry.SetSession(userID, sess)

	if err := o.registry.ResetState(ctx, userID); err != nil {
		return sess, err
	}

	header := fmt.Sprintf("=== Visit log ===\nFolder: %s\nStarted: %s\n\n",
		path, sess.StartedAt().Format("2006-01-02 15:04:05 MST"))
	opening := sess.AddMessage(username, "session started")
	if err := o.client.WriteText(ctx, sess.TxtFilePath(), header+opening+"\n"); err != nil {
		return sess, fmt.Errorf("write session header: %w", err)
	}
	return sess, nil
}

// EndSession closes the user's session: appends a closing entry authored
// by username and the footer to the remote log, fetches the content for
// final display, and clears the session. The session is cleared even when
// the remote writes fail, so a user is never left with a session they
// believe is closed. Without an active session it reports
// ErrNoActiveSession and touches nothing.
func (o *Orchestrator) EndSession(ctx context.Context, userID int64, username string) (EndReport, error) {
	sess, ok := o.registry.GetSession(userID)
	if !ok {
		return EndReport{}, ErrNoActiveSession
	}

	defer func() {
		o.registry.ClearSession(userID)
		if err := o.registry.ResetState(ctx, userID); err != nil {
			log.Printf("navigator: reset state for user %d: %v", userID, err)
		}
	}()

	closing := sess.AddMessage(username, "session ended")

	report := EndReport{
		FolderPath:  sess.FolderPath(),
		TxtFilePath: sess.TxtFilePath(),
		Messages:    sess.MessageCount(),
		Duration:    sess.Duration().Round(time.Second),
	}

	footer := fmt.Sprintf("%s\n\n=== Session ended: %s ===\nDuration: %s\nMessages: %d\n",
		closing, time.Now().Format("2006-01-02 15:04:05"), report.Duration, report.Messages)
	if err := o.client.AppendText(ctx, sess.TxtFilePath(), footer); err != nil {
		log.Printf("navigator: append session footer for user %d: %v", userID, err)
		return report, fmt.Errorf("append session footer: %w", err)
	}

	data, err := o.client.DownloadBytes(ctx, sess.TxtFilePath())
	if err != nil {
		log.Printf("navigator: download session log for user %d: %v", userID, err)
		return report, fmt.Errorf("download session log: %w", err)
	}
	report.Content = truncate(string(data), maxReportLen)
	return report, nil
}

// CurrentSummary returns the active session's status line.
func (o *Orchestrator) CurrentSummary(userID int64) (string, error) {
	sess, ok := o.registry.GetSession(userID)
	if !ok {
		return "", ErrNoActiveSession
	}
	return sess.Summary(), nil
}

// Cancel aborts any dialogue flow, returning the user to idle. The
// active session, if any, is untouched.
func (o *Orchestrator) Cancel(ctx context.Context, userID int64) error {
	return o.registry.ResetState(ctx, userID)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + truncationMarker
}

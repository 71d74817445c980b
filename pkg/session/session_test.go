package session

import (
	"strings"
	"testing"
	"time"
)

func TestSessionArtifactNames(t *testing.T) {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSessionAt(42, "/Projects/Weekly", "Weekly", started)

	if got, want := sess.Timestamp(), "20240101_120000"; got != want {
		t.Errorf("Timestamp() = %q, want %q", got, want)
	}
	if got, want := sess.TxtFileName(), "20240101_120000_visit_Weekly_42.txt"; got != want {
		t.Errorf("TxtFileName() = %q, want %q", got, want)
	}
	if got, want := sess.TxtFilePath(), "/Projects/Weekly/20240101_120000_visit_Weekly_42.txt"; got != want {
		t.Errorf("TxtFilePath() = %q, want %q", got, want)
	}
	if got, want := sess.FilePrefix(), "20240101_120000_Files_Weekly_42"; got != want {
		t.Errorf("FilePrefix() = %q, want %q", got, want)
	}
}

func TestSessionNormalizesFolderPath(t *testing.T) {
	sess := NewSession(1, "disk:/Projects/Weekly/", "Weekly")
	if got, want := sess.FolderPath(), "/Projects/Weekly"; got != want {
		t.Errorf("FolderPath() = %q, want %q", got, want)
	}
}

func TestSessionSanitizesFolderNameInArtifacts(t *testing.T) {
	sess := NewSessionAt(1, "/x", `Q1: plan?`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if strings.ContainsAny(sess.TxtFileName(), `\:*?"<>|/`) {
		t.Errorf("TxtFileName() contains invalid characters: %q", sess.TxtFileName())
	}
	if strings.ContainsAny(sess.FilePrefix(), `\:*?"<>|/`) {
		t.Errorf("FilePrefix() contains invalid characters: %q", sess.FilePrefix())
	}
}

func TestAddMessageCountsAndFormats(t *testing.T) {
	sess := NewSession(1, "/x", "x")

	line := sess.AddMessage("alice", "hello")
	if !strings.HasPrefix(line, "[") {
		t.Errorf("line missing timestamp prefix: %q", line)
	}
	if !strings.Contains(line, "[alice] hello") {
		t.Errorf("line missing author and text: %q", line)
	}

	line = sess.AddMessage("", "anonymous note")
	if strings.Contains(line, "[]") {
		t.Errorf("empty author should be omitted: %q", line)
	}
	if !strings.HasSuffix(line, "anonymous note") {
		t.Errorf("line missing text: %q", line)
	}

	for i := 0; i < 3; i++ {
		sess.AddMessage("bob", "more")
	}
	if got, want := sess.MessageCount(), 5; got != want {
		t.Errorf("MessageCount() = %d, want %d", got, want)
	}

	msgs := sess.Messages()
	if len(msgs) != 5 {
		t.Fatalf("Messages() returned %d lines, want 5", len(msgs))
	}
	if !strings.Contains(msgs[0], "hello") {
		t.Errorf("first line out of order: %q", msgs[0])
	}
}

func TestSummaryReportsDurationAndCount(t *testing.T) {
	started := time.Now().UTC().Add(-90 * time.Minute)
	sess := NewSessionAt(1, "/Projects", "Projects", started)
	sess.AddMessage("a", "one")
	sess.AddMessage("a", "two")

	got := sess.Summary()
	if !strings.Contains(got, "Projects") {
		t.Errorf("Summary() missing folder name: %q", got)
	}
	if !strings.Contains(got, "1h 30m") {
		t.Errorf("Summary() missing duration: %q", got)
	}
	if !strings.Contains(got, "Messages: 2") {
		t.Errorf("Summary() missing message count: %q", got)
	}
}

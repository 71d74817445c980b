package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlog-dev/visitlog/pkg/session"
	"github.com/visitlog-dev/visitlog/pkg/storage"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, _ io.Reader) (string, error) {
	return f.text, f.err
}

func newTestSession() *session.Session {
	return session.NewSessionAt(42, "/Projects/Weekly", "Weekly",
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func setup(t *testing.T, tr *fakeTranscriber) (*storage.MockBackend, *Saver) {
	t.Helper()
	backend := storage.NewMockBackend()
	backend.AddDir("/Projects/Weekly")
	client := storage.NewClient(backend, storage.ClientConfig{RetryDelay: time.Millisecond})
	if tr == nil {
		return backend, NewSaver(client, nil)
	}
	return backend, NewSaver(client, tr)
}

func TestRecordAppendsToMeetingLog(t *testing.T) {
	backend, saver := setup(t, nil)
	sess := newTestSession()
	ctx := context.Background()

	require.NoError(t, saver.Record(ctx, sess, "alice", "first"))
	require.NoError(t, saver.Record(ctx, sess, "bob", "second"))

	content, ok := backend.FileContent(sess.TxtFilePath())
	require.True(t, ok)
	assert.Contains(t, string(content), "[alice] first")
	assert.Contains(t, string(content), "[bob] second")
	assert.Equal(t, 2, sess.MessageCount())
}

func TestSaveDocumentUploadsAndLogs(t *testing.T) {
	backend, saver := setup(t, nil)
	sess := newTestSession()

	path, err := saver.SaveDocument(context.Background(), sess, "alice", "notes.pdf", []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "/Projects/Weekly/20240101_120000_Files_Weekly_42_notes.pdf", path)

	data, ok := backend.FileContent(path)
	require.True(t, ok)
	assert.Equal(t, []byte("pdf"), data)

	logContent, ok := backend.FileContent(sess.TxtFilePath())
	require.True(t, ok)
	assert.Contains(t, string(logContent), "[file: 20240101_120000_Files_Weekly_42_notes.pdf]")
}

func TestSaveDocumentSanitizesFileName(t *testing.T) {
	_, saver := setup(t, nil)
	sess := newTestSession()

	path, err := saver.SaveDocument(context.Background(), sess, "a", `bad:na/me?.txt`, []byte("x"))
	require.NoError(t, err)
	assert.NotContains(t, path[1:], ":")
	assert.NotContains(t, path, "?")
}

func TestSavePhotoGeneratesName(t *testing.T) {
	backend, saver := setup(t, nil)
	sess := newTestSession()

	path, err := saver.SavePhoto(context.Background(), sess, "a", []byte("jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/Projects/Weekly/20240101_120000_Files_Weekly_42_photo_"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	_, ok := backend.FileContent(path)
	assert.True(t, ok)
}

func TestSaveVoiceTranscribes(t *testing.T) {
	backend, saver := setup(t, &fakeTranscriber{text: "meeting starts"})
	sess := newTestSession()

	path, text, err := saver.SaveVoice(context.Background(), sess, "alice", []byte("ogg"))
	require.NoError(t, err)
	assert.Equal(t, "meeting starts", text)
	assert.True(t, strings.HasSuffix(path, ".ogg"))

	logContent, ok := backend.FileContent(sess.TxtFilePath())
	require.True(t, ok)
	assert.Contains(t, string(logContent), "meeting starts")
}

func TestSaveVoiceTranscriptionFailureIsNotFatal(t *testing.T) {
	backend, saver := setup(t, &fakeTranscriber{err: errors.New("api down")})
	sess := newTestSession()

	path, text, err := saver.SaveVoice(context.Background(), sess, "alice", []byte("ogg"))
	require.NoError(t, err)
	assert.Equal(t, "[unrecognized]", text)

	// Artifact and log line are both present.
	_, found := backend.FileContent(path)
	require.True(t, found)
	logContent, ok := backend.FileContent(sess.TxtFilePath())
	require.True(t, ok)
	assert.Contains(t, string(logContent), "[unrecognized]")
}

func TestSaveVoiceWithoutTranscriber(t *testing.T) {
	_, saver := setup(t, nil)
	sess := newTestSession()

	_, text, err := saver.SaveVoice(context.Background(), sess, "a", []byte("ogg"))
	require.NoError(t, err)
	assert.Equal(t, "[unrecognized]", text)
}

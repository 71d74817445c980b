// Package media stores incoming artifacts in the active session's folder
// and appends matching lines to the session's meeting log.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/visitlog-dev/visitlog/pkg/observability"
	"github.com/visitlog-dev/visitlog/pkg/pathutil"
	"github.com/visitlog-dev/visitlog/pkg/session"
	"github.com/visitlog-dev/visitlog/pkg/storage"
	"github.com/visitlog-dev/visitlog/pkg/transcribe"
)

// unrecognizedVoice is logged when a voice message cannot be transcribed.
const unrecognizedVoice = "[unrecognized]"

// Saver uploads session artifacts and records them in the meeting log.
// The transcriber is optional; without one, voice messages are stored
// but logged as unrecognized.
type Saver struct {
	client      *storage.Client
	transcriber transcribe.Transcriber
}

// NewSaver creates a saver. transcriber may be nil.
func NewSaver(client *storage.Client, transcriber transcribe.Transcriber) *Saver {
	return &Saver{client: client, transcriber: transcriber}
}

// Record appends one message line to the session's meeting log.
func (s *Saver) Record(ctx context.Context, sess *session.Session, author, text string) error {
	line := sess.AddMessage(author, text)
	if err := s.client.AppendText(ctx, sess.TxtFilePath(), line+"\n"); err != nil {
		return fmt.Errorf("append to meeting log: %w", err)
	}
	observability.RecordSessionMessage()
	return nil
}

// SaveDocument uploads a named file and logs it. It returns the remote path.
func (s *Saver) SaveDocument(ctx context.Context, sess *session.Session, author, fileName string, data []byte) (string, error) {
	name := sess.FilePrefix() + "_" + pathutil.SanitizeFileName(fileName)
	path := pathutil.Join(sess.FolderPath(), name)

	if err := s.client.UploadBytes(ctx, path, data); err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	if err := s.Record(ctx, sess, author, "[file: "+name+"]"); err != nil {
		return path, err
	}
	return path, nil
}

// SavePhoto uploads a photo under a generated name and logs it.
func (s *Saver) SavePhoto(ctx context.Context, sess *session.Session, author string, data []byte) (string, error) {
	name := sess.FilePrefix() + "_photo_" + artifactID() + ".jpg"
	path := pathutil.Join(sess.FolderPath(), name)

	if err := s.client.UploadBytes(ctx, path, data); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.Record(ctx, sess, author, "[photo: "+name+"]"); err != nil {
		return path, err
	}
	return path, nil
}

// SaveVoice uploads a voice recording, transcribes it, and logs the
// recognized text. Transcription failure is not fatal: the artifact is
// kept and the log line marks the recording as unrecognized.
func (s *Saver) SaveVoice(ctx context.Context, sess *session.Session, author string, data []byte) (string, string, error) {
	name := sess.FilePrefix() + "_voice_" + artifactID() + ".ogg"
	path := pathutil.Join(sess.FolderPath(), name)

	if err := s.client.UploadBytes(ctx, path, data); err != nil {
		return "", "", fmt.Errorf("upload voice: %w", err)
	}

	text := unrecognizedVoice
	if s.transcriber != nil {
		recognized, err := s.transcriber.Transcribe(ctx, name, bytes.NewReader(data))
		if err != nil {
			log.Printf("media: transcription of %s failed: %v", name, err)
		} else if recognized != "" {
			text = recognized
		}
	}

	if err := s.Record(ctx, sess, author, "[voice: "+name+"] "+text); err != nil {
		return path, text, err
	}
	return path, text, nil
}

func artifactID() string {
	return uuid.New().String()[:8]
}

package pathutil

import "errors"

var (
	// ErrEmptySegment is returned for empty or whitespace-only folder names.
	ErrEmptySegment = errors.New("folder name is empty")
	// ErrInvalidChars is returned when a folder name contains reserved characters.
	ErrInvalidChars = errors.New(`folder name contains one of \ : * ? " < > |`)
	// ErrSegmentTooLong is returned when a folder name exceeds 255 characters.
	ErrSegmentTooLong = errors.New("folder name exceeds 255 characters")
)

// Package pathutil provides path arithmetic for the remote disk namespace.
// All functions are pure: they never touch the backend and never fail.
//
// A normalized path always begins with "/", never ends with "/" unless it is
// exactly "/", and contains no empty segments.
package pathutil

import (
	"strings"
)

// RootName is the display name used for the namespace root.
const RootName = "root"

// schemePrefix is the storage scheme the remote API sometimes prepends.
const schemePrefix = "disk:"

// maxSegmentLen is the longest allowed folder segment name.
const maxSegmentLen = 255

// invalidSegmentChars are rejected in folder names and replaced in file names.
const invalidSegmentChars = `\:*?"<>|`

// Normalize converts any input into a valid path. Empty input maps to "/".
func Normalize(path string) string {
	path = strings.TrimPrefix(path, schemePrefix)

	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// Join appends one or more segments to base, one separator between each.
// Segments may themselves contain separators (relative sub-paths).
func Join(base string, segments ...string) string {
	b := strings.Builder{}
	b.WriteString(base)
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	return Normalize(b.String())
}

// Parent returns the parent path. The root's parent is the root.
func Parent(path string) string {
	path = Normalize(path)
	if path == "/" {
		return "/"
	}
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

// Leaf returns the last segment, or RootName for "/".
func Leaf(path string) string {
	path = Normalize(path)
	if path == "/" {
		return RootName
	}
	return path[strings.LastIndex(path, "/")+1:]
}

// ValidateSegment reports whether name can be used as a single folder segment.
func ValidateSegment(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptySegment
	}
	if strings.ContainsAny(name, invalidSegmentChars) {
		return ErrInvalidChars
	}
	if len([]rune(name)) > maxSegmentLen {
		return ErrSegmentTooLong
	}
	return nil
}

// SanitizeFileName makes name safe to use as a remote file name.
// Invalid characters and separators become underscores; the result is
// truncated to 100 runes, keeping a short trailing extension if present.
// Empty input maps to "file".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}

	replaced := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSegmentChars+"/", r) {
			return '_'
		}
		return r
	}, name)

	const maxLen = 100
	runes := []rune(replaced)
	if len(runes) <= maxLen {
		return replaced
	}

	ext := ""
	if idx := strings.LastIndex(replaced, "."); idx > 0 {
		tail := replaced[idx:]
		if len([]rune(tail)) <= 10 {
			ext = tail
		}
	}
	keep := maxLen - len([]rune(ext))
	return string(runes[:keep]) + ext
}

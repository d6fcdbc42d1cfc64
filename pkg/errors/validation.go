package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePath validates a gallery root path supplied by a user or an API
// caller. It rejects empty paths, control characters and overly long input;
// both relative and absolute paths are accepted.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateRelativePath validates a path that must stay inside a served root.
// It is used by the HTTP host before resolving item files.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateRelativePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateViewport checks that viewport dimensions are finite numbers.
// Negative values are not rejected; the layout engine clamps them to zero.
func ValidateViewport(width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return New(ErrCodeInvalidViewport, "viewport width must be finite, got %v", width)
	}
	if math.IsNaN(height) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidViewport, "viewport height must be finite, got %v", height)
	}
	return nil
}

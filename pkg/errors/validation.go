package errors

import (
	"math"
	"strings"
)

// ValidateNodeName validates the name of a tree node. Any byte sequence a
// filesystem accepts is a valid name, including tabs and newlines, so only
// the empty name is rejected. Renderers escape names for display.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "node name cannot be empty")
	}
	return nil
}

// ValidatePath validates a path relative to a scan root.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains a null byte")
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

// ValidateSize validates a leaf size: finite and non-negative.
func ValidateSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidArgument, "size must be finite, got %v", size)
	}
	if size < 0 {
		return New(ErrCodeInvalidArgument, "size cannot be negative, got %g", size)
	}
	return nil
}

// ValidateDimensions validates a frame size in pixels.
func ValidateDimensions(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidArgument, "dimensions must be finite")
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidArgument, "dimensions must be positive, got %gx%g", width, height)
	}
	const maxDimension = 1 << 15
	if width > maxDimension || height > maxDimension {
		return New(ErrCodeInvalidArgument, "dimensions too large (max %d pixels per side)", maxDimension)
	}
	return nil
}

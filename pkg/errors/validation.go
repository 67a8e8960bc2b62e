package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateScale validates an export scale factor.
// Scales must be finite and strictly positive.
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return New(ErrCodeInvalidInput, "scale must be a finite number")
	}
	if scale <= 0 {
		return New(ErrCodeInvalidInput, "scale must be positive, got %g", scale)
	}
	return nil
}

// ValidateThreshold validates a non-negative, finite numeric option such as a
// minimum edge length or a join displacement. The name is used in the message.
func ValidateThreshold(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s cannot be negative, got %g", name, v)
	}
	return nil
}

// ValidatePointThreshold validates a curve point-count threshold.
// Every curve has at least two points, so thresholds below 2 select nothing
// and are rejected as a likely mistake.
func ValidatePointThreshold(n int) error {
	if n != 0 && n < 2 {
		return New(ErrCodeInvalidInput, "point threshold must be 0 (disabled) or at least 2, got %d", n)
	}
	return nil
}

// ValidatePath validates a local file path given on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
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

// ValidateCacheKey validates a cache key before it reaches a backend.
// Keys become file names for the file cache, so path separators and
// traversal sequences are rejected.
func ValidateCacheKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "cache key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "cache key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "cache key contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "cache key contains invalid characters: %q", pattern)
		}
	}
	return nil
}

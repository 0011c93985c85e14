package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor checks that color is a #rgb or #rrggbb hex string.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateID checks that id is non-empty, carries prefix and has no
// whitespace or control characters. Pass an empty prefix to skip that check.
func ValidateID(id, prefix string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidID, "id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id %q contains invalid characters", id)
		}
	}
	if prefix != "" && !strings.HasPrefix(id, prefix) {
		return New(ErrCodeInvalidID, "id %q must start with %q", id, prefix)
	}
	return nil
}

// ValidatePosition checks that both coordinates are finite.
func ValidatePosition(x, y float64) error {
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "position must be finite")
		}
	}
	return nil
}

// ValidatePath validates an import/export file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
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

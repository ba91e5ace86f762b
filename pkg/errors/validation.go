package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds item identifiers; they end up in SVG ids and cache keys.
const maxIDLength = 256

// ValidateItemID validates a catalog item identifier.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCatalog, "item id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidCatalog, "item id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCatalog, "item id %q contains control characters", id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidCatalog, "item id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidatePositive checks that a named configuration value is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateRange checks that a named configuration value is finite and within [lo, hi].
func ValidateRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return New(ErrCodeInvalidConfig, "%s must be in [%g, %g], got %v", name, lo, hi, v)
	}
	return nil
}

package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds item ids, group ids and scenario names.
const maxIDLength = 128

// ValidateID validates an item or group identifier.
//
// Identifiers are opaque to the engine, but they travel through URLs, cache
// keys and terminal output, so the rules are conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - No control characters
//   - No slashes (ids appear as URL path segments)
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidID, "id %q cannot contain path separators", id)
	}
	return nil
}

// ValidateScenarioName validates the name a scenario is stored under.
// Names follow ValidateID and are additionally limited to letters, digits,
// '-', '_' and '.', and may not start with '.'.
func ValidateScenarioName(name string) error {
	if err := ValidateID(name); err != nil {
		return New(ErrCodeInvalidScenario, "invalid scenario name: %s", UserMessage(err))
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidScenario, "scenario name cannot start with '.'")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return New(ErrCodeInvalidScenario, "scenario name contains invalid character %q", r)
		}
	}
	return nil
}

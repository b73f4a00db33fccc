package users

import (
	"fmt"
	"slices"
	"strings"
)

// ConflictError reports a unique field already held by another account.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// Message is the user-facing text for the conflict.
func (e *ConflictError) Message() string {
	return fmt.Sprintf("The %s has already been taken.", strings.ReplaceAll(e.Field, "_", " "))
}

// FieldErrors maps request fields to a message each.
type FieldErrors map[string]string

// Error returns the message of the alphabetically first field.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		return "validation error"
	}
	return fe[keys[0]]
}

package entity

import "errors"

var (
	// ErrNotAuthenticated is returned for any mutation attempted without a
	// current user identity. No partial writes happen in that state.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrHabitNotFound is returned by update/delete for a missing habit ID.
	// Toggle treats a missing ID as a benign no-op instead.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrGroupNotFound is returned when deleting a group no habit belongs to.
	ErrGroupNotFound = errors.New("habit group not found")
)

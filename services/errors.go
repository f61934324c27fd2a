package services

import "errors"

// Errors shared by services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrMatchNotFound      = errors.New("match not found")

	ErrValidationFailed   = errors.New("validation failed")
	ErrScheduleConflict   = errors.New("schedule was changed by someone else, reload and retry")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrSaveFailed         = errors.New("failed to save changes")
)

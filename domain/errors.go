package domain

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrFull         = errors.New("room is full")
	ErrTransientIO  = errors.New("document store unavailable")
	ErrInternal     = errors.New("internal error")

	// ErrPermissionDenied is returned when a non-owner tries an owner-only transition.
	ErrPermissionDenied = ErrForbidden
)

package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrNoHandler          = errors.New("no report handler found")
	ErrMissingAgency      = errors.New("agency id is required")
	ErrInjectionDetected  = errors.New("parameter failed injection screening")
	ErrStorageUnavailable = errors.New("export storage is not configured")
)

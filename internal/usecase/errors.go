package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrTransientProvider  = errors.New("transient provider error")
	ErrDataValidation     = errors.New("data validation error")
	ErrMatchingAmbiguity  = errors.New("matching ambiguity")
	ErrSyncAlreadyRunning = errors.New("sync already running")
)

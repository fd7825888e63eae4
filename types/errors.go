package types

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrProvider    = errors.New("external provider failure")
	ErrUnavailable = errors.New("provider not configured")
)

package service

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidStatus      = errors.New("invalid status transition")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrValidationFailed   = errors.New("validation failed")
)

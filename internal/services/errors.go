package services

import "errors"

// Service error taxonomy. Handlers map these to stable status codes;
// services only signal the reason.
var (
	ErrInvalidLeaseParameters = errors.New("invalid lease parameters")
	ErrEntityNotFound         = errors.New("record not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrInvalidPassword        = errors.New("invalid password")
	ErrInvalidState           = errors.New("invalid state transition")
	ErrDuplicate              = errors.New("duplicate record")
)

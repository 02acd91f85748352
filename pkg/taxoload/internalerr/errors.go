package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrTableNotFound   = errors.New("table not found")
	ErrSourceNotFound  = errors.New("source document not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrVersionMismatch = errors.New("version mismatch")
)

package contracts

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrStatusConflict  = errors.New("status conflict")
)

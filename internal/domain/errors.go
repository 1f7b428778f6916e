package domain

import "errors"

var (
	// ErrInputNotFound: corpus or preference source unavailable.
	ErrInputNotFound = errors.New("input not found")
	// ErrSchemaMismatch: a required feature column is absent or a value
	// cannot be encoded where no default applies.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidParameter: caller-supplied argument out of range (e.g. k <= 0).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrModelNotFitted: no valid fitted model is available.
	ErrModelNotFitted = errors.New("model not fitted")

	ErrNotFound = errors.New("not found")
)

package reminder

import "errors"

// Domain sentinels. Callers classify failures with errors.Is and render a
// user-visible rejection; none of these abort the process.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvariant    = errors.New("invariant violation")
	ErrUnauthorized = errors.New("unauthorized")
)

package services

import "errors"

// Failure kinds surfaced to the HTTP boundary. Any other error is internal.
var (
	ErrBadRequest = errors.New("BadRequest") // 400
	ErrNotFound   = errors.New("NotFound")   // 404
)

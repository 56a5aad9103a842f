package repositories

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidID    = errors.New("invalid object id")
)

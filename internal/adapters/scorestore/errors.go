package scorestore

import "errors"

// Sentinel kinds for score store errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidLimit  = errors.New("invalid ranking limit")
	ErrEmptyEntityID = errors.New("empty entity id")
)

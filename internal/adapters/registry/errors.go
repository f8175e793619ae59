package registry

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrRegistryNotFound = errors.New("detector registry not found")
	ErrInvalidRegistry  = errors.New("invalid detector registry")
)

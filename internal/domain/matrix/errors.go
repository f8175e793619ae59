package matrix

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidDetector = errors.New("invalid detector")
	ErrUnknownDetector = errors.New("detector not registered")
	ErrNoResults       = errors.New("no detector results loaded")
)

package artifacts

import (
	"errors"
)

// Sentinel kinds for artifact errors.
var (
	ErrNoOutputDir   = errors.New("no output directory configured")
	ErrWriteArtifact = errors.New("cannot write artifact")
	ErrReadArtifact  = errors.New("cannot read artifact")
)

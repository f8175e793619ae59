package service

import (
	"errors"
)

// Sentinel kinds for run-level errors.
var (
	// ErrExampleRegistryWritten means no registry existed; an example was
	// written and the run performed no processing.
	ErrExampleRegistryWritten = errors.New("example registry written")

	// ErrArtifactWrites wraps the joined failures of individual artifact
	// files; the run itself completed.
	ErrArtifactWrites = errors.New("artifact writes failed")
)

package ingest

import (
	"errors"
)

// Sentinel kinds for ingestion errors.
var (
	ErrOpenDetectorFile = errors.New("cannot open detector output file")
	ErrReadDetectorFile = errors.New("cannot read detector output file")
)

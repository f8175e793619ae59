package correlation

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTooFewDetectors    = errors.New("correlation requires at least 2 detectors")
	ErrUndefinedStatistic = errors.New("statistic undefined")
)

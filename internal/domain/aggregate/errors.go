package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrUnknownCompetitor = errors.New("unknown competitor")
	ErrInvalidOutcome    = errors.New("invalid outcome")
)

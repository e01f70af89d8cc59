package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrDegenerateScore = errors.New("degenerate score: both sides scored zero")
	ErrNegativeScore   = errors.New("negative score")
	ErrUnknownPolicy   = errors.New("unknown zero score policy")
)

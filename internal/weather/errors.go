package weather

import "errors"

// Failure kinds reported by the upstream collaborators. Callers match them
// with errors.Is; anything that matches none of them is unexpected.
var (
	ErrNotFound     = errors.New("city not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	ErrTimeout      = errors.New("upstream timed out")
	ErrGeneration   = errors.New("insight generation failed")

	ErrInvalidUnits = errors.New("invalid units")
)

// IsRetryable reports whether err is a transient failure worth retrying later
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

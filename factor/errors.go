package factor

import (
	"errors"
	"fmt"
)

// ErrDataInsufficient signals that a park or team has too few qualifying
// games to support a ratio. It is always recovered locally with neutral
// defaults and never aborts a refresh.
var ErrDataInsufficient = errors.New("insufficient data for park factor")

// ErrRefreshInProgress is returned when a refresh is requested while another
// one is still running.
var ErrRefreshInProgress = errors.New("a refresh is already in progress")

// Refresh stages, reported to the operator when a refresh aborts so it is
// clear whether the source read, the computation, or the persist step failed.
const (
	StageSourceRead = "source-read"
	StageCompute    = "compute"
	StagePersist    = "persist"
)

// RefreshError wraps a fatal refresh failure with the stage it occurred in.
// A failed refresh leaves the previously stored factors untouched.
type RefreshError struct {
	Stage string
	Err   error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh failed at %s: %v", e.Stage, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

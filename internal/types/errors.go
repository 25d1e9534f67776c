package types

import "fmt"

// InvalidVideoError marks a video whose duration metadata is unusable.
// Callers skip the video and continue the batch.
type InvalidVideoError struct {
	VideoID     string
	DurationSec float64
}

func (e *InvalidVideoError) Error() string {
	return fmt.Sprintf("video %s: invalid duration %.3fs", e.VideoID, e.DurationSec)
}

// FetchError wraps a failure of an external discovery or transcript call.
// Recoverable: retry policy belongs to the caller, the core never retries.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

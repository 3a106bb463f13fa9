package model

import (
	"time"

	"github.com/baltgc/gomotel/internal/apperr"
)

// clockSkewTolerance is how far in the past a booking may start at creation
// time, to absorb clock drift between clients and the server.
const clockSkewTolerance = 5 * time.Minute

// TimeRange is an immutable half-open interval [Start, End) used for booking
// and overlap checks.  Both timestamps are stored in UTC.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates and constructs a TimeRange.  Start must precede End
// and must not lie further in the past than the clock-skew tolerance.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return TimeRange{}, apperr.InvalidInput("start time must be before end time")
	}
	if start.Before(time.Now().UTC().Add(-clockSkewTolerance)) {
		return TimeRange{}, apperr.InvalidInput("start time cannot be in the past")
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration returns End minus Start.
func (t TimeRange) Duration() time.Duration { return t.End.Sub(t.Start) }

// Overlaps reports whether t and other intersect under half-open semantics:
// a range ending at T and one starting at T do not overlap.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && t.End.After(other.Start)
}

package stats

import (
	"errors"
	"fmt"
	"time"

	"comlab_tool/requests"
)

var ErrBadRange = errors.New("invalid date range")

// Range bounds a statistics query. A zero side is open.
type Range struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

// ParseRange reads YYYY-MM-DD bounds. The end date is inclusive.
func ParseRange(from, to string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	var r Range
	if from != "" {
		t, err := requests.ParseDay(from, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: from: %v", ErrBadRange, err)
		}
		r.From = t
	}
	if to != "" {
		t, err := requests.ParseDay(to, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: to: %v", ErrBadRange, err)
		}
		r.To = requests.EndOfDay(t)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return Range{}, fmt.Errorf("%w: start after end", ErrBadRange)
	}
	return r, nil
}

func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

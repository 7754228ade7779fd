package requests

import (
	"sort"
	"time"

	"comlab_tool/models"
)

// Request is the view a dashboard needs of a borrow or report row.
type Request interface {
	RequestStatus() models.Status
	RequestDate() time.Time
}

// ViewState is a subscriber's current filter. Zero From/To leave that side open.
type ViewState struct {
	Status models.Status `json:"status"`
	From   string        `json:"from"`
	To     string        `json:"to"`
}

// Bounds resolves the view's date range. To is extended to the last
// millisecond of its day.
func (v ViewState) Bounds(loc *time.Location) (from, to time.Time, err error) {
	if v.From != "" {
		if from, err = ParseDay(v.From, loc); err != nil {
			return
		}
	}
	if v.To != "" {
		if to, err = ParseDay(v.To, loc); err != nil {
			return
		}
		to = EndOfDay(to)
	}
	return
}

// EndOfDay returns 23:59:59.999 on t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Filter applies the view to rows and returns them newest first. Rows are not
// modified. An unparsable date bound is ignored.
func Filter[T Request](rows []T, v ViewState, loc *time.Location) []T {
	if loc == nil {
		loc = time.UTC
	}
	from, to, err := v.Bounds(loc)
	if err != nil {
		from, to = time.Time{}, time.Time{}
	}
	all := v.Status == "" || v.Status == models.StatusAll

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !all && r.RequestStatus() != v.Status {
			continue
		}
		d := r.RequestDate()
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequestDate().After(out[j].RequestDate())
	})
	return out
}

// CountByStatus tallies rows per status for the faculty summary cards.
func CountByStatus[T Request](rows []T) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, r := range rows {
		counts[r.RequestStatus()]++
	}
	return counts
}

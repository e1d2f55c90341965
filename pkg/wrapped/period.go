package wrapped

import (
	"fmt"
	"time"
)

// MinYear and MaxYear bound the periods a caller may ask for.
const (
	MinYear = 2013
	MaxYear = 9999
)

// Period is the half-open collection window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod returns the calendar year in loc: Jan 1 of year up to Jan 1 of year+1.
func NewPeriod(year int, loc *time.Location) (Period, error) {
	if year < MinYear || year > MaxYear {
		return Period{}, fmt.Errorf("year %d out of range [%d, %d]", year, MinYear, MaxYear)
	}
	if loc == nil {
		loc = time.Local
	}
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc),
	}, nil
}

// Year is the calendar year the period starts in.
func (p Period) Year() int {
	return p.Start.Year()
}

// Contains reports whether t falls in [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

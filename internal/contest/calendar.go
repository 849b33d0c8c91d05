// Package contest maps calendar days onto the configured sequence of
// contest identifiers.
package contest

import (
	"fmt"
	"time"

	"github.com/acmclub/ojrank/internal/apperrors"
)

// Calendar resolves which contest id belongs to a given date. The offset
// into the contest sequence is the number of whole days since the start
// date, minus one: the day after the start date maps to the first id.
type Calendar struct {
	start    time.Time
	ids      []int
	location *time.Location
}

func NewCalendar(startDate string, contestIDs []int, timezone string) (*Calendar, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	start, err := time.ParseInLocation("2006-01-02", startDate, location)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	if len(contestIDs) == 0 {
		return nil, fmt.Errorf("contest id sequence is empty")
	}

	return &Calendar{start: start, ids: contestIDs, location: location}, nil
}

// Location is the timezone the daily schedule is anchored to.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// ContestIDForDate returns the contest id for a date, or an OUT_OF_RANGE
// error when the date falls before the sequence starts or after it is
// exhausted.
func (c *Calendar) ContestIDForDate(t time.Time) (int, error) {
	local := t.In(c.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location)

	offset := int(day.Sub(c.start).Hours()/24) - 1
	if offset < 0 || offset >= len(c.ids) {
		return 0, apperrors.New(
			apperrors.CodeOutOfRange,
			fmt.Sprintf("no contest scheduled for %s (offset %d of %d)",
				day.Format("2006-01-02"), offset, len(c.ids)),
		)
	}

	return c.ids[offset], nil
}

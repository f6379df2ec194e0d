package entity

import (
	"fmt"
	"time"
)

type DateRange string

const (
	DateRangeAll    DateRange = "all"
	DateRange12h    DateRange = "12h"
	DateRange7d     DateRange = "7d"
	DateRange28d    DateRange = "28d"
	DateRangeCustom DateRange = "custom"
)

var dateRangeDurations = map[DateRange]time.Duration{
	DateRange12h: 12 * time.Hour,
	DateRange7d:  7 * 24 * time.Hour,
	DateRange28d: 28 * 24 * time.Hour,
}

func ParseDateRange(s string) (DateRange, error) {
	switch dr := DateRange(s); dr {
	case DateRangeAll, DateRange12h, DateRange7d, DateRange28d, DateRangeCustom:
		return dr, nil
	}

	return "", fmt.Errorf("unknown date range: %q", s)
}

// Duration returns the look-back window of a preset. ok is false for all and custom.
func (d DateRange) Duration() (time.Duration, bool) {
	dur, ok := dateRangeDurations[d]

	return dur, ok
}

// CustomDateRange is the explicit window used when the selector is custom.
// A start without an end is an in-progress selection.
type CustomDateRange struct {
	StartDate *time.Time `json:"startDate" yaml:"startDate"`
	EndDate   *time.Time `json:"endDate" yaml:"endDate"`
}

func (c CustomDateRange) Complete() bool {
	return c.StartDate != nil && c.EndDate != nil
}

/*
Pick applies one click of the range picker:
 1. no start yet - the pick becomes the start;
 2. start without end - the pick becomes the end, swapped with the start when it is earlier;
 3. both set - a new selection starts from the pick.
*/
func (c CustomDateRange) Pick(t time.Time) CustomDateRange {
	switch {
	case c.StartDate == nil:
		return CustomDateRange{StartDate: &t}
	case c.EndDate == nil:
		start := *c.StartDate
		if t.Before(start) {
			return CustomDateRange{StartDate: &t, EndDate: &start}
		}

		return CustomDateRange{StartDate: &start, EndDate: &t}
	}

	return CustomDateRange{StartDate: &t}
}

func (c CustomDateRange) Clone() CustomDateRange {
	return CustomDateRange{
		StartDate: cloneTime(c.StartDate),
		EndDate:   cloneTime(c.EndDate),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}

// Package daykey maps a wall-clock instant to the civil quiz day and
// its running index since the configured epoch.
package daykey

import (
	"fmt"
	"strconv"
	"time"
	// Scheduled runners are often bare containers without a system zone
	// database; carry one.
	_ "time/tzdata"
)

const dayLayout = "20060102"

// Info identifies one quiz day.
type Info struct {
	Day   string // YYYYMMDD in the configured zone
	Index int    // days since epoch, epoch day = 1
}

// Compute derives the quiz day for now. The civil date follows the
// configured IANA zone, not UTC: at 11:30pm Eastern it is already the
// next day in UTC, and the Eastern date is the one that counts.
func Compute(now time.Time, timezone, epoch string) (Info, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Info{}, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	epochDate, err := time.Parse(dayLayout, epoch)
	if err != nil {
		return Info{}, fmt.Errorf("parsing epoch %q: %w", epoch, err)
	}

	civil := now.In(loc)
	y, m, d := civil.Date()
	// Re-anchor both civil dates at UTC midnight so the difference is a
	// whole number of days regardless of DST shifts in the zone.
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := time.Date(epochDate.Year(), epochDate.Month(), epochDate.Day(), 0, 0, 0, 0, time.UTC)

	days := int(today.Sub(start).Hours() / 24)
	if days < 0 {
		days = 0
	}

	return Info{
		Day:   today.Format(dayLayout),
		Index: days + 1,
	}, nil
}

// Numeric returns the day key as an integer, for seeding.
func (i Info) Numeric() uint32 {
	n, err := strconv.ParseUint(i.Day, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// ParseDay validates a YYYYMMDD override and returns a representative
// instant (noon in the given zone, safely inside the civil day).
func ParseDay(day, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	t, err := time.ParseInLocation(dayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", day, err)
	}
	return t.Add(12 * time.Hour), nil
}

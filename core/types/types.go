// Package types - Parking tariff domain types
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// ZoneID identifies a parking zone. NPR zone ids are formed as
// "<areaManagerId>_<fareCalculationCode>".
type ZoneID string

// String returns the string representation
func (z ZoneID) String() string {
	return string(z)
}

// Weekdays is a set of weekdays encoded as a bitmask over time.Weekday
type Weekdays uint8

// AllWeekdays covers Sunday through Saturday
const AllWeekdays Weekdays = 0x7F

// Contains reports whether the set includes the given weekday
func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<uint8(d)) != 0
}

// With returns the set extended with the given weekday
func (w Weekdays) With(d time.Weekday) Weekdays {
	return w | (1 << uint8(d))
}

// IsZero reports whether the set is empty
func (w Weekdays) IsZero() bool {
	return w == 0
}

// String lists the contained weekdays in week order starting Monday
func (w Weekdays) String() string {
	if w == AllWeekdays {
		return "all"
	}
	var parts []string
	for i := 0; i < 7; i++ {
		d := time.Weekday((i + 1) % 7) // Monday first
		if w.Contains(d) {
			parts = append(parts, strings.ToLower(d.String()[:3]))
		}
	}
	return strings.Join(parts, ",")
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	"sun": time.Sunday,
}

// weekOrder positions weekdays Monday-first for range parsing
func weekOrder(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ParseWeekdays parses dataset weekday notation: "all", a comma list
// ("mon,wed,fri"), ranges ("mon-fri"), or a mix ("mon-fri,sun").
func ParseWeekdays(s string) (Weekdays, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return AllWeekdays, nil
	}

	var set Weekdays
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if from, to, ok := strings.Cut(item, "-"); ok {
			a, okA := weekdayNames[strings.TrimSpace(from)]
			b, okB := weekdayNames[strings.TrimSpace(to)]
			if !okA || !okB || weekOrder(a) > weekOrder(b) {
				return 0, fmt.Errorf("weekdays: bad range %q", item)
			}
			for i := weekOrder(a); i <= weekOrder(b); i++ {
				set = set.With(time.Weekday((i + 1) % 7))
			}
			continue
		}
		d, ok := weekdayNames[item]
		if !ok {
			return 0, fmt.Errorf("weekdays: unknown day %q", item)
		}
		set = set.With(d)
	}
	if set.IsZero() {
		return 0, fmt.Errorf("weekdays: empty set %q", s)
	}
	return set, nil
}

// ClockTime is a time of day in minutes since midnight (0..1439)
type ClockTime int

// MinutesPerDay is the number of minutes in a calendar day
const MinutesPerDay = 24 * 60

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock time: bad %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("clock time: bad hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("clock time: bad minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time: out of range %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// String formats the time of day as "HH:MM"
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeWindow is a time-of-day range. Start == End means the window
// covers the whole day. End < Start means the window wraps past
// midnight (e.g. 22:00-06:00).
type TimeWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// AllDay is the window covering the entire day
var AllDay = TimeWindow{}

// IsAllDay reports whether the window covers the whole day
func (w TimeWindow) IsAllDay() bool {
	return w.Start == w.End
}

// Contains reports whether the given minute of day falls inside the window
func (w TimeWindow) Contains(minute ClockTime) bool {
	if w.IsAllDay() {
		return true
	}
	if w.Start < w.End {
		return minute >= w.Start && minute < w.End
	}
	return minute >= w.Start || minute < w.End
}

// EndBoundary returns the minute of day at which a chunk starting at
// the given minute leaves the window, capped at end of day. For the
// evening arm of a wrapping window the boundary is midnight; the
// window continues on the next calendar day.
func (w TimeWindow) EndBoundary(minute ClockTime) ClockTime {
	if w.IsAllDay() {
		return MinutesPerDay
	}
	if w.Start < w.End {
		return w.End
	}
	if minute >= w.Start {
		return MinutesPerDay
	}
	return w.End
}

// String formats the window as "HH:MM-HH:MM" or "all day"
func (w TimeWindow) String() string {
	if w.IsAllDay() {
		return "all day"
	}
	return w.Start.String() + "-" + w.End.String()
}

// MinuteOfDay returns the minute of day of t in its own location
func MinuteOfDay(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Owner is the relational record for a supplier.
type Owner struct {
	// ID is the supplier identifier shared with passages.
	ID string

	// Name is the display name.
	Name string

	// Verified reports whether the supplier passed verification.
	Verified bool

	// AverageRating is the mean review score, typically 0-5.
	AverageRating float64

	// Supplier reports whether the account offers services.
	Supplier bool
}

// MinutesPerDay bounds TimeWindow values.
const MinutesPerDay = 24 * 60

// TimeWindow is a range of minutes on a weekday, [Start, End).
type TimeWindow struct {
	Day   time.Weekday
	Start int
	End   int
}

// Validate checks the window is a non-empty range within one day.
func (w TimeWindow) Validate() error {
	if w.Day < time.Sunday || w.Day > time.Saturday {
		return fmt.Errorf("%w: day %d", ErrInvalidInput, w.Day)
	}
	if w.Start < 0 || w.End > MinutesPerDay || w.Start >= w.End {
		return fmt.Errorf("%w: time range %s-%s", ErrInvalidInput, FormatClock(w.Start), FormatClock(w.End))
	}
	return nil
}

// Covers reports whether w lies entirely within other on the same day.
func (w TimeWindow) Covers(other TimeWindow) bool {
	return w.Day == other.Day && w.Start <= other.Start && other.End <= w.End
}

// String formats the window as "Monday 09:00-12:00".
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Day, FormatClock(w.Start), FormatClock(w.End))
}

// ParseTimeWindow builds a window from a weekday name and two "HH:MM" clocks.
func ParseTimeWindow(day, from, to string) (TimeWindow, error) {
	wd, err := ParseWeekday(day)
	if err != nil {
		return TimeWindow{}, err
	}
	start, err := ParseClock(from)
	if err != nil {
		return TimeWindow{}, err
	}
	end, err := ParseClock(to)
	if err != nil {
		return TimeWindow{}, err
	}
	w := TimeWindow{Day: wd, Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// ParseWeekday accepts full or three-letter English day names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, s)
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is accepted as end of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrInvalidInput, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: clock %q: %v", ErrInvalidInput, s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: clock %q: %v", ErrInvalidInput, s, err)
	}
	total := h*60 + m
	if h < 0 || m < 0 || m > 59 || total > MinutesPerDay {
		return 0, fmt.Errorf("%w: clock %q out of range", ErrInvalidInput, s)
	}
	return total, nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Package schedule computes occurrence times of recurring notifications.
//
// A frequency is a positive magnitude and a calendar unit, written as
// "<n> <unit>" where unit is one of minute, hour, day, week or month in
// singular or plural form, case-insensitive. ParseFrequency is the strict
// parser used when a notification is created; ComputeNextOccurrence is the
// lenient form applied to frequencies that are already stored on jobs.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFrequency is returned for malformed or unparseable frequencies.
// It is not retryable: it ends a recurrence chain but never the current delivery.
var ErrInvalidFrequency = errors.New("invalid frequency")

// Unit is a calendar unit of a frequency.
type Unit int

const (
	Minute Unit = iota
	Hour
	Day
	Week
	Month
)

var unitNames = [...]string{"minute", "hour", "day", "week", "month"}

func (u Unit) String() string {
	if u < Minute || u > Month {
		return fmt.Sprintf("unit(%d)", int(u))
	}

	return unitNames[u]
}

// Frequency is a parsed recurrence interval.
type Frequency struct {
	Magnitude int
	Unit      Unit
}

func (f Frequency) String() string {
	if f.Magnitude == 1 {
		return fmt.Sprintf("1 %s", f.Unit)
	}

	return fmt.Sprintf("%d %ss", f.Magnitude, f.Unit)
}

var (
	reStrict = regexp.MustCompile(`^(\d+) (minute|hour|day|week|month)s?$`)
	reToken  = regexp.MustCompile(`\d+|[a-z]+|\S`)
)

// ParseFrequency parses spec strictly as "<positive integer> <unit>".
func ParseFrequency(spec string) (Frequency, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return Frequency{}, fmt.Errorf("%w: frequency required", ErrInvalidFrequency)
	}

	m := reStrict.FindStringSubmatch(s)
	if m == nil {
		return Frequency{}, fmt.Errorf("%w %q (use e.g. '2 days', '3 weeks', '1 month')", ErrInvalidFrequency, spec)
	}

	unit, _ := lookupUnit(m[2])

	return newFrequency(spec, m[1], unit)
}

// ComputeNextOccurrence returns anchor advanced by the frequency in spec.
//
// The first integer in spec is the magnitude (1 when absent) and the first
// unit keyword is the unit (minute when absent). Any other token makes the
// spec invalid, so "soon" fails instead of silently meaning one minute. Filler
// words are tokens too: "every 2 days" is rejected rather than read as 2 days,
// matching what ParseFrequency accepts at creation time.
func ComputeNextOccurrence(anchor time.Time, spec string) (time.Time, error) {
	f, err := scanFrequency(spec)
	if err != nil {
		return time.Time{}, err
	}

	return f.Next(anchor), nil
}

func scanFrequency(spec string) (Frequency, error) {
	var (
		magnitude string
		unit      = Minute
		haveUnit  bool
	)

	for _, tok := range reToken.FindAllString(strings.ToLower(spec), -1) {
		if tok[0] >= '0' && tok[0] <= '9' {
			if magnitude != "" {
				return Frequency{}, fmt.Errorf("%w %q: unexpected %q", ErrInvalidFrequency, spec, tok)
			}
			magnitude = tok
			continue
		}

		u, ok := lookupUnit(tok)
		if !ok || haveUnit {
			return Frequency{}, fmt.Errorf("%w %q: unexpected %q", ErrInvalidFrequency, spec, tok)
		}
		unit, haveUnit = u, true
	}

	if magnitude == "" {
		magnitude = "1"
	}

	return newFrequency(spec, magnitude, unit)
}

func newFrequency(spec, magnitude string, unit Unit) (Frequency, error) {
	n, err := strconv.Atoi(magnitude)
	if err != nil || n <= 0 {
		return Frequency{}, fmt.Errorf("%w %q: magnitude must be a positive integer", ErrInvalidFrequency, spec)
	}

	if limit := maxMagnitude(unit); n > limit {
		return Frequency{}, fmt.Errorf("%w %q: magnitude exceeds %d", ErrInvalidFrequency, spec, limit)
	}

	return Frequency{Magnitude: n, Unit: unit}, nil
}

func lookupUnit(word string) (Unit, bool) {
	word = strings.TrimSuffix(word, "s")
	for i, name := range unitNames {
		if word == name {
			return Unit(i), true
		}
	}

	return 0, false
}

// maxMagnitude keeps Next clear of time.Duration overflow and absurd calendars.
func maxMagnitude(u Unit) int {
	switch u {
	case Minute:
		return int(math.MaxInt64 / int64(time.Minute))
	case Hour:
		return int(math.MaxInt64 / int64(time.Hour))
	case Month:
		return 12 * 10000
	default:
		return 366 * 10000
	}
}

// Next returns anchor advanced by f.
//
// Minutes and hours are exact durations. Days and weeks keep the wall-clock
// time of day in anchor's location. Months keep the day of month, clamped to
// the last day of the target month (Jan 31 + 1 month = Feb 28 or 29).
func (f Frequency) Next(anchor time.Time) time.Time {
	n := f.Magnitude

	switch f.Unit {
	case Minute:
		return anchor.Add(time.Duration(n) * time.Minute)
	case Hour:
		return anchor.Add(time.Duration(n) * time.Hour)
	case Day:
		return anchor.AddDate(0, 0, n)
	case Week:
		return anchor.AddDate(0, 0, 7*n)
	default:
		return addMonths(anchor, n)
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + n
	year := y + total/12
	month := time.Month(total%12 + 1)

	if last := daysIn(year, month, t.Location()); d > last {
		d = last
	}

	return time.Date(year, month, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

package schedule

import (
	"fmt"
	"time"
)

// Layouts of the anchor date and time components.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Anchor resolves date and clock in loc. An empty date means the current day
// and time of now; a non-empty clock overrides the hour and minute.
func Anchor(date, clock string, now time.Time, loc *time.Location) (time.Time, error) {
	base := now.In(loc)

	if date != "" {
		d, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid anchor date %q: %w", date, err)
		}
		base = d
	}

	if clock != "" {
		c, err := time.Parse(TimeLayout, clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid anchor time %q: %w", clock, err)
		}
		base = time.Date(base.Year(), base.Month(), base.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	}

	return base, nil
}

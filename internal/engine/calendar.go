package engine

import (
	"context"
	"fmt"
	"time"
)

// IsOpen resolves whether the restaurant accepts bookings at the
// given date ("2006-01-02") and time ("15:04").  Resolution
// precedence is: closed date, then per-date custom hours, then the
// weekly pattern.  A restaurant with no hours configured for the
// weekday is treated as closed and the reason flags the configuration
// gap.  The requested time must fall within [opens_at, closes_at);
// alignment to the slot granularity is the caller's concern.
func (e *Engine) IsOpen(ctx context.Context, restaurantID uint64, date, slot string) (bool, string, error) {
	day, err := parseDate(date)
	if err != nil {
		return false, "", fmt.Errorf("%w: bad date %q", ErrInvalidTimeSlot, date)
	}
	minutes, err := parseClock(slot)
	if err != nil {
		return false, "", fmt.Errorf("%w: bad time %q", ErrInvalidTimeSlot, slot)
	}

	if cd, err := e.store.ClosedDate(ctx, restaurantID, date); err != nil {
		return false, "", err
	} else if cd != nil {
		reason := "closed on " + date
		if cd.Reason != nil && *cd.Reason != "" {
			reason += ": " + *cd.Reason
		}
		return false, reason, nil
	}

	if ch, err := e.store.CustomHours(ctx, restaurantID, date); err != nil {
		return false, "", err
	} else if ch != nil {
		if ch.IsClosed {
			return false, "closed on " + date, nil
		}
		return withinWindow(minutes, ch.OpensAt, ch.ClosesAt, date)
	}

	weekday := uint8(day.Weekday())
	wh, err := e.store.WeeklyHours(ctx, restaurantID, weekday)
	if err != nil {
		return false, "", err
	}
	if wh == nil {
		return false, "no operating hours configured for " + day.Weekday().String(), nil
	}
	if wh.IsClosed {
		return false, "closed on " + day.Weekday().String() + "s", nil
	}
	return withinWindow(minutes, wh.OpensAt, wh.ClosesAt, date)
}

// DayWindow resolves the effective service window for one date using
// the same precedence as IsOpen.  open is false when the restaurant
// does not serve that day; opensAt/closesAt are "HH:MM" and only
// meaningful when open is true.
func (e *Engine) DayWindow(ctx context.Context, restaurantID uint64, date string) (open bool, opensAt, closesAt string, err error) {
	if _, err = parseDate(date); err != nil {
		return false, "", "", fmt.Errorf("%w: bad date %q", ErrInvalidTimeSlot, date)
	}

	if cd, err := e.store.ClosedDate(ctx, restaurantID, date); err != nil {
		return false, "", "", err
	} else if cd != nil {
		return false, "", "", nil
	}

	if ch, err := e.store.CustomHours(ctx, restaurantID, date); err != nil {
		return false, "", "", err
	} else if ch != nil {
		if ch.IsClosed {
			return false, "", "", nil
		}
		return true, ch.OpensAt, ch.ClosesAt, nil
	}

	day, _ := parseDate(date)
	wh, err := e.store.WeeklyHours(ctx, restaurantID, uint8(day.Weekday()))
	if err != nil {
		return false, "", "", err
	}
	if wh == nil || wh.IsClosed {
		return false, "", "", nil
	}
	return true, wh.OpensAt, wh.ClosesAt, nil
}

// withinWindow checks minutes against [opens, closes) given as
// "HH:MM" strings.
func withinWindow(minutes int, opensAt, closesAt, date string) (bool, string, error) {
	opens, err := parseClock(opensAt)
	if err != nil {
		return false, "", fmt.Errorf("malformed opening time %q", opensAt)
	}
	closes, err := parseClock(closesAt)
	if err != nil {
		return false, "", fmt.Errorf("malformed closing time %q", closesAt)
	}
	if minutes < opens || minutes >= closes {
		return false, fmt.Sprintf("open %s-%s on %s", opensAt, closesAt, date), nil
	}
	return true, "", nil
}

// parseDate parses a "2006-01-02" calendar date in UTC.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseClock converts an "HH:MM" wall-clock string to minutes from
// midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock renders minutes from midnight back to "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AlignedToGranularity reports whether the "HH:MM" time lands on a
// slot boundary of the given granularity in minutes.
func AlignedToGranularity(slot string, slotMinutes uint32) bool {
	minutes, err := parseClock(slot)
	if err != nil || slotMinutes == 0 {
		return false
	}
	return minutes%int(slotMinutes) == 0
}

package orders

import (
	"strings"
	"time"

	"github.com/go-faster/errors"

	"wolt-report-service/internal/timebucket"
)

// Cutoff reports whether a delivered order belongs to the report window.
type Cutoff func(deliveredAt time.Time, yearMonth string) bool

// Window builds a Cutoff for the moment a report is generated.
type Window func(now time.Time) Cutoff

// RollingWindow keeps orders delivered on or after the first day of the
// month twelve months before now, in UTC.
func RollingWindow(now time.Time) Cutoff {
	now = now.UTC()
	start := time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return func(deliveredAt time.Time, _ string) bool {
		return !deliveredAt.Before(start)
	}
}

// YearPrefix keeps orders whose year-month starts with prefix, e.g. "2021".
func YearPrefix(prefix string) Cutoff {
	return func(_ time.Time, yearMonth string) bool {
		return strings.HasPrefix(yearMonth, prefix)
	}
}

func AllTime() Cutoff {
	return func(time.Time, string) bool { return true }
}

// ParseWindow reads a window setting: "rolling", "all" or "year:YYYY".
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "rolling":
		return RollingWindow, nil
	case s == "all":
		return func(time.Time) Cutoff { return AllTime() }, nil
	case strings.HasPrefix(s, "year:"):
		year := strings.TrimPrefix(s, "year:")
		if len(year) != 4 || strings.Trim(year, "0123456789") != "" {
			return nil, errors.Errorf("invalid report window year %q", year)
		}
		return func(time.Time) Cutoff { return YearPrefix(year) }, nil
	default:
		return nil, errors.Errorf("unknown report window %q", s)
	}
}

// Filter keeps delivered orders accepted by cutoff, preserving order. A nil
// cutoff accepts every delivered order.
func Filter(in []Order, cutoff Cutoff) []Order {
	out := make([]Order, 0, len(in))
	for _, o := range in {
		if o.Status != StatusDelivered {
			continue
		}
		if cutoff != nil && !cutoff(o.DeliveredAt(), timebucket.YearMonth(o.DeliveredAtMs)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Package timebucket derives calendar keys for delivered orders: the UTC
// year-month and the venue-local weekday and time-of-day slot.
package timebucket

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/go-faster/errors"
)

const (
	SlotMorning = iota
	SlotNoon
	SlotAfternoon
	SlotEvening
	SlotNight
)

const (
	Slots    = 5
	Weekdays = 7
)

var SlotLabels = [Slots]string{
	"Morning, 6-12",
	"Noon, 12-16",
	"Afternoon, 16-19",
	"Evening, 19-22",
	"Night, 22-6",
}

// WeekdayLabels is indexed like time.Weekday, Sunday first.
var WeekdayLabels = [Weekdays]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type UnknownZoneError struct {
	Zone string
	Err  error
}

func (e *UnknownZoneError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unknown timezone %q", e.Zone)
	}
	return fmt.Sprintf("unknown timezone %q: %v", e.Zone, e.Err)
}

func (e *UnknownZoneError) Unwrap() error { return e.Err }

var locations sync.Map

// Location resolves an IANA zone name. Empty and "Local" are rejected so
// results never depend on the host clock settings.
func Location(zone string) (*time.Location, error) {
	name := strings.TrimSpace(zone)
	if name == "" || name == "Local" {
		return nil, &UnknownZoneError{Zone: zone}
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &UnknownZoneError{Zone: zone, Err: errors.Wrap(err, "load location")}
	}
	locations.Store(name, loc)
	return loc, nil
}

// YearMonth formats the UTC calendar month of a millisecond timestamp as
// "YYYY-MM".
func YearMonth(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01")
}

// SlotForHour maps a local hour to a slot. Boundary hours belong to the
// earlier slot, so 6 is still night and 12 is still morning.
func SlotForHour(hour int) int {
	switch {
	case hour <= 6:
		return SlotNight
	case hour <= 12:
		return SlotMorning
	case hour <= 16:
		return SlotNoon
	case hour <= 19:
		return SlotAfternoon
	case hour <= 24:
		return SlotEvening
	default:
		return SlotNight
	}
}

// TimeSlot returns the weekday (0 = Sunday) and slot of the instant in the
// given zone.
func TimeSlot(ms int64, zone string) (weekday, slot int, err error) {
	loc, err := Location(zone)
	if err != nil {
		return 0, 0, err
	}
	local := time.UnixMilli(ms).In(loc)
	return int(local.Weekday()), SlotForHour(local.Hour()), nil
}

package timebucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearMonthUsesUTC(t *testing.T) {
	assert.Equal(t, "2021-07", YearMonth(time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC).UnixMilli()))
	// 23:30 in New York on Jan 31st is already February in UTC.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2022-02", YearMonth(time.Date(2022, 1, 31, 23, 30, 0, 0, ny).UnixMilli()))
}

func TestSlotForHour(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{0, SlotNight},
		{3, SlotNight},
		{6, SlotNight},
		{7, SlotMorning},
		{12, SlotMorning},
		{13, SlotNoon},
		{16, SlotNoon},
		{17, SlotAfternoon},
		{19, SlotAfternoon},
		{20, SlotEvening},
		{23, SlotEvening},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlotForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestTimeSlotUsesVenueZone(t *testing.T) {
	noonUTC := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC).UnixMilli() // Thursday

	weekday, slot, err := TimeSlot(noonUTC, "UTC")
	require.NoError(t, err)
	assert.Equal(t, int(time.Thursday), weekday)
	assert.Equal(t, SlotMorning, slot)

	weekday, slot, err = TimeSlot(noonUTC, "Asia/Jerusalem")
	require.NoError(t, err)
	assert.Equal(t, int(time.Thursday), weekday)
	assert.Equal(t, SlotNoon, slot)

	lateUTC := time.Date(2021, 7, 1, 22, 30, 0, 0, time.UTC).UnixMilli()
	weekday, slot, err = TimeSlot(lateUTC, "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, int(time.Friday), weekday)
	assert.Equal(t, SlotMorning, slot)
}

func TestTimeSlotUnknownZone(t *testing.T) {
	for _, zone := range []string{"", "  ", "Mars/Olympus_Mons", "Local"} {
		_, _, err := TimeSlot(0, zone)
		var unknown *UnknownZoneError
		require.ErrorAs(t, err, &unknown, "zone %q", zone)
		assert.Equal(t, zone, unknown.Zone)
	}
}

func TestLocationIsCached(t *testing.T) {
	first, err := Location("Europe/Helsinki")
	require.NoError(t, err)
	second, err := Location("Europe/Helsinki")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

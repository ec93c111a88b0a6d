package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msAt(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func ids(in []Order) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		out = append(out, o.ID)
	}
	return out
}

func TestFilterKeepsDeliveredInsideRollingWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	in := []Order{
		{ID: "feb-first", Status: StatusDelivered, DeliveredAtMs: msAt(2023, 2, 1)},
		{ID: "old", Status: StatusDelivered, DeliveredAtMs: msAt(2023, 2, 28)},
		{ID: "edge", Status: StatusDelivered, DeliveredAtMs: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "march-fifth", Status: StatusDelivered, DeliveredAtMs: msAt(2023, 3, 5)},
		{ID: "recent", Status: StatusDelivered, DeliveredAtMs: msAt(2024, 3, 1)},
		{ID: "cancelled", Status: "rejected", DeliveredAtMs: msAt(2024, 1, 5)},
	}

	got := Filter(in, RollingWindow(now))
	assert.Equal(t, []string{"edge", "march-fifth", "recent"}, ids(got))
}

func TestFilterYearPrefix(t *testing.T) {
	in := []Order{
		{ID: "a", Status: StatusDelivered, DeliveredAtMs: msAt(2020, 12, 31)},
		{ID: "b", Status: StatusDelivered, DeliveredAtMs: msAt(2021, 6, 1)},
		{ID: "c", Status: StatusDelivered, DeliveredAtMs: msAt(2022, 1, 1)},
	}
	assert.Equal(t, []string{"b"}, ids(Filter(in, YearPrefix("2021"))))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(in, AllTime())))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(in, nil)))
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, Filter(nil, AllTime()))
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	old := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)

	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.False(t, w(now)(old, "2019-05"))

	w, err = ParseWindow("all")
	require.NoError(t, err)
	assert.True(t, w(now)(old, "2019-05"))

	w, err = ParseWindow("year:2019")
	require.NoError(t, err)
	assert.True(t, w(now)(old, "2019-05"))
	assert.False(t, w(now)(now, "2024-03"))

	_, err = ParseWindow("year:19")
	assert.Error(t, err)
	_, err = ParseWindow("weekly")
	assert.Error(t, err)
}

package ramadan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

func TestRoughDaysUntil(t *testing.T) {
	tests := []struct {
		month, day, want int
	}{
		{8, 25, 5},
		{8, 30, 0},
		{7, 1, 59},   // 29.5 + 29 = 58.5
		{1, 1, 236},  // 7*29.5 + 29 = 235.5
		{9, 5, 0},    // negative estimates floor at zero
		{12, 30, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoughDaysUntil(tt.month, tt.day), "month %d day %d", tt.month, tt.day)
	}
}

func TestDaysBetween(t *testing.T) {
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)

	assert.Equal(t, 10, DaysBetween(date(2026, 2, 8), date(2026, 2, 18)))
	assert.Equal(t, -1, DaysBetween(date(2026, 2, 19), date(2026, 2, 18)))
	// Clock time is ignored.
	late := time.Date(2026, 2, 8, 23, 59, 0, 0, dhaka)
	start := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, start))
	// Daylight saving does not produce fractional days.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, 1, DaysBetween(time.Date(2026, 3, 8, 0, 30, 0, 0, ny), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestTotalOrDefault(t *testing.T) {
	assert.Equal(t, 29, totalOrDefault(29))
	assert.Equal(t, 30, totalOrDefault(30))
	assert.Equal(t, 30, totalOrDefault(0))
	assert.Equal(t, 30, totalOrDefault(31))
}

func TestCacheKey(t *testing.T) {
	local := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)

	k := CacheKey(Query{Timezone: "Asia/Dhaka"}, offset.Resolution{Offset: -1, Country: "BD"}, local)
	assert.Equal(t, "Asia/Dhaka|BD|NA|-1|auto|2026-02-08", k)

	k = CacheKey(
		Query{Timezone: "Asia/Riyadh", Coordinates: &offset.Coordinates{Latitude: 24.7136, Longitude: 46.6753}},
		offset.Resolution{Offset: 2, Override: true},
		local,
	)
	assert.Equal(t, "Asia/Riyadh|NA|24.71,46.68|2|override|2026-02-08", k)
}

func TestCacheKey_CoordinateBucket(t *testing.T) {
	res := offset.Resolution{Country: "BD", Offset: -1}
	now := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	a := CacheKey(Query{Timezone: "Asia/Dhaka", Coordinates: &offset.Coordinates{Latitude: 23.8101, Longitude: 90.4102}}, res, now)
	b := CacheKey(Query{Timezone: "Asia/Dhaka", Coordinates: &offset.Coordinates{Latitude: 23.8149, Longitude: 90.4149}}, res, now)
	assert.Equal(t, a, b)
}

// -----------------------------------------------------------------------------
// Static fallback
// -----------------------------------------------------------------------------

func TestFallback_Phases(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		phase     Phase
		day       int
		daysUntil int
	}{
		{"before window", date(2026, 2, 8), PhasePre, 0, 10},
		{"first day", date(2026, 2, 18), PhaseRamadan, 1, 0},
		{"inside window", date(2026, 3, 1), PhaseRamadan, 12, 0},
		{"last day", date(2026, 3, 19), PhaseRamadan, 30, 0},
		{"after window", date(2026, 3, 20), PhasePost, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultFallback.Status(tt.now)
			assert.Equal(t, tt.phase, st.Phase)
			assert.Equal(t, "1447", st.HijriYear)
			switch tt.phase {
			case PhaseRamadan:
				require.NotNil(t, st.CurrentDay)
				assert.Equal(t, tt.day, *st.CurrentDay)
				assert.Nil(t, st.DaysUntil)
				assert.Equal(t, RamadanMonth, st.HijriMonth)
			case PhasePre:
				require.NotNil(t, st.DaysUntil)
				assert.Equal(t, tt.daysUntil, *st.DaysUntil)
				assert.Nil(t, st.CurrentDay)
				assert.Zero(t, st.HijriMonth)
			case PhasePost:
				assert.Nil(t, st.CurrentDay)
				assert.Nil(t, st.DaysUntil)
				assert.Nil(t, st.RamadanStartGregorian)
			}
		})
	}
}

func TestFallback_NearestYear(t *testing.T) {
	w, ok := DefaultFallback.Lookup(2040)
	require.True(t, ok)
	assert.Equal(t, 2030, w.Year)

	w, ok = DefaultFallback.Lookup(2019)
	require.True(t, ok)
	assert.Equal(t, 2024, w.Year)

	w, ok = DefaultFallback.Lookup(2027)
	require.True(t, ok)
	assert.Equal(t, 2027, w.Year)
}

func TestFallback_WindowsAreThirtyDays(t *testing.T) {
	for _, w := range DefaultFallback {
		assert.Equal(t, 29, DaysBetween(w.Start, w.End), "year %d", w.Year)
	}
}

func TestFallback_EmptyTable(t *testing.T) {
	st := FallbackTable{}.Status(date(2026, 1, 1))
	assert.Equal(t, PhasePost, st.Phase)
}

// Package ramadan classifies "today" relative to the current Hijri year's
// Ramadan for a caller's location.
//
// The Engine is the single entry point. It is total: whatever happens
// upstream it returns a well-formed Status in one of the three phases.
// Degraded answers come from progressively rougher sources: the official
// announcement, the mathematical calendar, the Ramadan day tables, a rough
// day-count estimate and finally a static table of approximate windows.
package ramadan

import (
	"math"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

// Phase is the position of today relative to Ramadan.
type Phase string

const (
	PhasePre     Phase = "pre-ramadan"
	PhaseRamadan Phase = "ramadan"
	PhasePost    Phase = "post-ramadan"
)

// RamadanMonth is the Hijri month number of Ramadan.
const RamadanMonth = 9

// DefaultTotalDays is assumed whenever the length of Ramadan is unknown.
const DefaultTotalDays = 30

// Status is the answer returned to callers. Nullable fields serialise as
// JSON null rather than being omitted.
//
// Exactly one of CurrentDay and DaysUntil is set for the ramadan and
// pre-ramadan phases; neither is set for post-ramadan.
type Status struct {
	Phase                 Phase   `json:"phase"`
	CurrentDay            *int    `json:"currentDay"`
	DaysUntil             *int    `json:"daysUntil"`
	RamadanStartGregorian *string `json:"ramadanStartGregorian"`
	RamadanEndGregorian   *string `json:"ramadanEndGregorian"`
	HijriMonth            int     `json:"hijriMonth"`
	HijriMonthName        string  `json:"hijriMonthName"`
	HijriDay              int     `json:"hijriDay"`
	HijriYear             string  `json:"hijriYear"`
	RamadanTotalDays      int     `json:"ramadanTotalDays"`
}

// Query identifies the caller's location.
type Query struct {
	Timezone    string
	Country     string
	Coordinates *offset.Coordinates
}

// Boundary holds the Gregorian edges of one Ramadan. Nil dates mean the
// calendar could not be pinpointed; that is a degraded result, not an error.
type Boundary struct {
	Start     *string // DD-MM-YYYY
	End       *string // DD-MM-YYYY
	TotalDays int
}

// Known reports whether both edges were found.
func (b Boundary) Known() bool {
	return b.Start != nil && b.End != nil
}

func newRamadanStatus(h api.HijriDate, day int, b Boundary) Status {
	return Status{
		Phase:                 PhaseRamadan,
		CurrentDay:            intPtr(day),
		RamadanStartGregorian: b.Start,
		RamadanEndGregorian:   b.End,
		HijriMonth:            h.Month,
		HijriMonthName:        h.MonthName,
		HijriDay:              h.Day,
		HijriYear:             h.Year,
		RamadanTotalDays:      totalOrDefault(b.TotalDays),
	}
}

func newPreStatus(h api.HijriDate, daysUntil int, b Boundary) Status {
	if daysUntil < 0 {
		daysUntil = 0
	}
	return Status{
		Phase:                 PhasePre,
		DaysUntil:             intPtr(daysUntil),
		RamadanStartGregorian: b.Start,
		RamadanEndGregorian:   b.End,
		HijriMonth:            h.Month,
		HijriMonthName:        h.MonthName,
		HijriDay:              h.Day,
		HijriYear:             h.Year,
		RamadanTotalDays:      totalOrDefault(b.TotalDays),
	}
}

func newPostStatus(h api.HijriDate) Status {
	return Status{
		Phase:            PhasePost,
		HijriMonth:       h.Month,
		HijriMonthName:   h.MonthName,
		HijriDay:         h.Day,
		HijriYear:        h.Year,
		RamadanTotalDays: DefaultTotalDays,
	}
}

// RoughDaysUntil estimates the days left before Ramadan from a Hijri date
// alone, assuming 29.5-day months. It is a last-resort approximation used
// only when the start date cannot be resolved; do not rely on its precision.
func RoughDaysUntil(month, day int) int {
	est := float64(RamadanMonth-month-1)*29.5 + float64(30-day)
	n := int(math.Round(est))
	if n < 0 {
		return 0
	}
	return n
}

// DaysBetween returns the whole days from the civil date of from to the
// civil date of to, ignoring clock time and timezone offsets.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// parseGregorian parses a DD-MM-YYYY date as a civil date in UTC.
func parseGregorian(s string) (time.Time, bool) {
	t, err := time.Parse(api.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func totalOrDefault(n int) int {
	if n == 29 || n == 30 {
		return n
	}
	return DefaultTotalDays
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

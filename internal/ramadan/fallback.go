package ramadan

import (
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
)

// Window is the approximate Gregorian span of Ramadan in one Gregorian year.
type Window struct {
	Year      int
	HijriYear string
	Start     time.Time
	End       time.Time
}

// FallbackTable answers without any network access. Its windows are
// approximate and may be off by a day or two against local sighting.
type FallbackTable []Window

func window(year int, hijri string, sm time.Month, sd int, em time.Month, ed int) Window {
	return Window{
		Year:      year,
		HijriYear: hijri,
		Start:     time.Date(year, sm, sd, 0, 0, 0, 0, time.UTC),
		End:       time.Date(year, em, ed, 0, 0, 0, 0, time.UTC),
	}
}

// DefaultFallback covers the Ramadans falling in 2024 through 2030.
var DefaultFallback = FallbackTable{
	window(2024, "1445", time.March, 11, time.April, 9),
	window(2025, "1446", time.March, 1, time.March, 30),
	window(2026, "1447", time.February, 18, time.March, 19),
	window(2027, "1448", time.February, 8, time.March, 9),
	window(2028, "1449", time.January, 28, time.February, 26),
	window(2029, "1450", time.January, 16, time.February, 14),
	window(2030, "1451", time.January, 6, time.February, 4),
}

// Lookup returns the window for year, or the nearest known year's window.
func (t FallbackTable) Lookup(year int) (Window, bool) {
	if len(t) == 0 {
		return Window{}, false
	}
	best := t[0]
	for _, w := range t[1:] {
		if w.Year == year {
			return w, true
		}
		if absInt(w.Year-year) < absInt(best.Year-year) {
			best = w
		}
	}
	return best, true
}

// Status classifies now against the window of its Gregorian year. Only the
// civil date of now in its own location is used.
func (t FallbackTable) Status(now time.Time) Status {
	w, ok := t.Lookup(now.Year())
	if !ok {
		return newPostStatus(api.HijriDate{})
	}
	b := Boundary{
		Start:     strPtr(w.Start.Format(api.DateLayout)),
		End:       strPtr(w.End.Format(api.DateLayout)),
		TotalDays: DaysBetween(w.Start, w.End) + 1,
	}

	switch untilStart := DaysBetween(now, w.Start); {
	case untilStart > 0:
		return newPreStatus(api.HijriDate{Year: w.HijriYear}, untilStart, b)
	case DaysBetween(now, w.End) >= 0:
		day := clampDay(1-untilStart, totalOrDefault(b.TotalDays))
		h := api.HijriDate{Day: day, Month: RamadanMonth, Year: w.HijriYear, MonthName: "Ramadan"}
		return newRamadanStatus(h, day, b)
	default:
		return newPostStatus(api.HijriDate{Year: w.HijriYear})
	}
}

func clampDay(day, total int) int {
	if day < 1 {
		return 1
	}
	if day > total {
		return total
	}
	return day
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

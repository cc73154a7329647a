// Package format renders a Ramadan status as a single line for status bars.
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// Display modes.
const (
	FormatDaysUntil    = "days-until"
	FormatDayOfRamadan = "day-of-ramadan"
	FormatPhase        = "phase"
	FormatShort        = "short"
	FormatFull         = "full"
)

// Modes lists the built-in display modes.
var Modes = []string{FormatDaysUntil, FormatDayOfRamadan, FormatPhase, FormatShort, FormatFull}

// Data is the data passed to custom Go templates.
type Data struct {
	Phase     string // "pre-ramadan", "ramadan" or "post-ramadan"
	Day       int    // day of Ramadan, 0 outside Ramadan
	DaysUntil int    // days until Ramadan, 0 unless pre-ramadan
	Total     int    // length of Ramadan in days
	HijriDate string // e.g. "12 Ramaḍān 1447 AH"; empty when unknown
	Start     string // DD-MM-YYYY; empty when unknown
	End       string // DD-MM-YYYY; empty when unknown
}

// NewData flattens st for templates.
func NewData(st ramadan.Status) Data {
	d := Data{
		Phase: string(st.Phase),
		Total: st.RamadanTotalDays,
		HijriDate: api.HijriDate{
			Day: st.HijriDay, Month: st.HijriMonth, Year: st.HijriYear, MonthName: st.HijriMonthName,
		}.Format(),
	}
	if st.CurrentDay != nil {
		d.Day = *st.CurrentDay
	}
	if st.DaysUntil != nil {
		d.DaysUntil = *st.DaysUntil
	}
	if st.RamadanStartGregorian != nil {
		d.Start = *st.RamadanStartGregorian
	}
	if st.RamadanEndGregorian != nil {
		d.End = *st.RamadanEndGregorian
	}
	return d
}

// Output formats st according to mode.
//
// If mode contains "{{", it is treated as a custom Go template string over Data.
//
// Example: "☾ {{.Day}}/{{.Total}}" -> "☾ 12/30"
//
// days-until and day-of-ramadan only apply to their own phase; in any other
// phase they print the full form. Unknown modes print the short form.
func Output(st ramadan.Status, mode string) string {
	d := NewData(st)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, d)
	}

	switch mode {
	case FormatDaysUntil:
		if st.Phase == ramadan.PhasePre {
			return plural(d.DaysUntil, "day")
		}
		return full(st.Phase, d)
	case FormatDayOfRamadan:
		if st.Phase == ramadan.PhaseRamadan {
			return fmt.Sprintf("Day %d/%d", d.Day, d.Total)
		}
		return full(st.Phase, d)
	case FormatPhase:
		return d.Phase
	case FormatFull:
		return full(st.Phase, d)
	default:
		return short(st.Phase, d)
	}
}

func short(p ramadan.Phase, d Data) string {
	switch p {
	case ramadan.PhasePre:
		return fmt.Sprintf("%dd", d.DaysUntil)
	case ramadan.PhaseRamadan:
		return fmt.Sprintf("%d/%d", d.Day, d.Total)
	default:
		return "-"
	}
}

func full(p ramadan.Phase, d Data) string {
	switch p {
	case ramadan.PhasePre:
		if d.DaysUntil == 0 {
			return "Ramadan starts today"
		}
		return "Ramadan in " + plural(d.DaysUntil, "day")
	case ramadan.PhaseRamadan:
		return fmt.Sprintf("Ramadan day %d of %d", d.Day, d.Total)
	default:
		return "Ramadan is over"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// formatCustom executes a user-provided Go template string against d.
func formatCustom(tmpl string, d Data) string {
	t, err := template.New("custom").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}

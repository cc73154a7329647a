package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// PhaseLabel returns the localized name of a phase.
func PhaseLabel(tr *Translator, p ramadan.Phase) string {
	switch p {
	case ramadan.PhasePre:
		return tr.T("PhasePre", nil)
	case ramadan.PhaseRamadan:
		return tr.T("PhaseRamadan", nil)
	default:
		return tr.T("PhasePost", nil)
	}
}

// Headline is the one-line summary of st, e.g. "Ramadan · Day 12 of 30".
func Headline(tr *Translator, st ramadan.Status) string {
	label := PhaseColor(st.Phase, PhaseLabel(tr, st.Phase))
	switch {
	case st.Phase == ramadan.PhaseRamadan && st.CurrentDay != nil:
		return label + " · " + tr.T("DayOfRamadan", map[string]any{"Day": *st.CurrentDay, "Total": st.RamadanTotalDays})
	case st.Phase == ramadan.PhasePre && st.DaysUntil != nil:
		return label + " · " + tr.N("DaysUntil", *st.DaysUntil)
	default:
		return label + " · " + tr.T("RamadanOver", nil)
	}
}

// RenderStatus renders the full status block shown by `ramadan status`.
func RenderStatus(tr *Translator, st ramadan.Status) string {
	var sb strings.Builder
	sb.WriteString("\n  " + Headline(tr, st) + "\n\n")

	h := api.HijriDate{Day: st.HijriDay, Month: st.HijriMonth, Year: st.HijriYear, MonthName: st.HijriMonthName}
	rows := [][2]string{}
	if f := h.Format(); f != "" {
		rows = append(rows, [2]string{tr.T("LabelHijri", nil), f})
	}
	if st.Phase != ramadan.PhasePost {
		rows = append(rows,
			[2]string{tr.T("LabelStart", nil), orUnknown(tr, st.RamadanStartGregorian)},
			[2]string{tr.T("LabelEnd", nil), orUnknown(tr, st.RamadanEndGregorian)},
		)
	}

	width := 0
	for _, r := range rows {
		if n := len([]rune(r[0])); n > width {
			width = n
		}
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len([]rune(r[0])))
		sb.WriteString(fmt.Sprintf("  %s%s  %s\n", Dim(r[0]), pad, r[1]))
	}
	return sb.String()
}

// DaysTable renders one row per day of Ramadan, highlighting today.
func DaysTable(tr *Translator, days []api.CalendarDay, today time.Time) string {
	if len(days) == 0 {
		return "  " + tr.T("NoDays", nil) + "\n"
	}
	tbl := NewTable(tr.T("HeaderDay", nil), tr.T("HeaderDate", nil), tr.T("HeaderWeekday", nil))
	key := today.Format(api.DateLayout)
	for i, d := range days {
		tbl.AddRow(fmt.Sprintf("%d", d.HijriDay), d.Gregorian, d.Weekday)
		if d.Gregorian == key {
			tbl.SetHighlightRow(i)
		}
	}
	return tbl.Render()
}

func orUnknown(tr *Translator, s *string) string {
	if s == nil {
		return tr.T("LabelUnknown", nil)
	}
	return *s
}

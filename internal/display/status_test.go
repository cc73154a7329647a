package display

import (
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }

func ramadanStatus() ramadan.Status {
	return ramadan.Status{
		Phase:                 ramadan.PhaseRamadan,
		CurrentDay:            intp(12),
		RamadanStartGregorian: strp("18-02-2026"),
		RamadanEndGregorian:   strp("19-03-2026"),
		HijriMonth:            9,
		HijriMonthName:        "Ramaḍān",
		HijriDay:              12,
		HijriYear:             "1447",
		RamadanTotalDays:      30,
	}
}

func TestHeadline(t *testing.T) {
	SetEnabled(false)
	tr := NewTranslator("en")

	tests := []struct {
		name string
		st   ramadan.Status
		want string
	}{
		{"ramadan", ramadanStatus(), "Ramadan · Day 12 of 30"},
		{"pre plural", ramadan.Status{Phase: ramadan.PhasePre, DaysUntil: intp(10)}, "Pre-Ramadan · 10 days until Ramadan"},
		{"pre singular", ramadan.Status{Phase: ramadan.PhasePre, DaysUntil: intp(1)}, "Pre-Ramadan · 1 day until Ramadan"},
		{"post", ramadan.Status{Phase: ramadan.PhasePost}, "Post-Ramadan · Ramadan has ended for this year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Headline(tr, tt.st); got != tt.want {
				t.Errorf("Headline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadline_Bengali(t *testing.T) {
	SetEnabled(false)
	tr := NewTranslator("bn")

	got := Headline(tr, ramadan.Status{Phase: ramadan.PhasePre, DaysUntil: intp(3)})
	if got != "রমজানের আগে · রমজান শুরু হতে 3 দিন বাকি" {
		t.Errorf("Headline() = %q", got)
	}
}

func TestTranslator_Fallbacks(t *testing.T) {
	// Missing in the Bengali file, present in English.
	if got := NewTranslator("bn").T("NoDays", nil); got != "The Ramadan calendar is not available right now." {
		t.Errorf("bn NoDays = %q", got)
	}
	if got := NewTranslator("fr").T("PhaseRamadan", nil); got != "Ramadan" {
		t.Errorf("fr PhaseRamadan = %q", got)
	}
	if got := NewTranslator("en").T("NoSuchMessage", nil); got != "NoSuchMessage" {
		t.Errorf("unknown id = %q", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := strings.Join(Languages(), ",")
	if !strings.Contains(langs, "en") || !strings.Contains(langs, "bn") {
		t.Errorf("Languages() = %s, want en and bn", langs)
	}
}

func TestRenderStatus_Ramadan(t *testing.T) {
	SetEnabled(false)

	got := RenderStatus(NewTranslator("en"), ramadanStatus())

	for _, want := range []string{"Day 12 of 30", "Hijri date  12 Ramaḍān 1447 AH", "Starts      18-02-2026", "Ends        19-03-2026"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderStatus() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderStatus_UnknownBoundaries(t *testing.T) {
	SetEnabled(false)

	st := ramadan.Status{Phase: ramadan.PhasePre, DaysUntil: intp(5), HijriYear: "1447"}
	got := RenderStatus(NewTranslator("en"), st)

	if strings.Contains(got, "Hijri date") {
		t.Error("incomplete Hijri date should be omitted")
	}
	if !strings.Contains(got, "Starts  unknown") {
		t.Errorf("missing unknown start in:\n%s", got)
	}
}

func TestRenderStatus_PostHasNoBoundaries(t *testing.T) {
	SetEnabled(false)

	got := RenderStatus(NewTranslator("en"), ramadan.Status{Phase: ramadan.PhasePost})
	if strings.Contains(got, "Starts") {
		t.Errorf("post-ramadan should not list boundaries:\n%s", got)
	}
}

func TestDaysTable(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	days := []api.CalendarDay{
		{HijriDay: 1, HijriMonth: 9, Gregorian: "18-02-2026", Weekday: "Wednesday"},
		{HijriDay: 2, HijriMonth: 9, Gregorian: "19-02-2026", Weekday: "Thursday"},
	}
	got := DaysTable(NewTranslator("en"), days, time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC))

	if !strings.Contains(got, Accent("2    19-02-2026  Thursday")) {
		t.Errorf("today not highlighted:\n%q", got)
	}
}

func TestDaysTable_Empty(t *testing.T) {
	got := DaysTable(NewTranslator("en"), nil, time.Now())
	if !strings.Contains(got, "not available") {
		t.Errorf("DaysTable(nil) = %q", got)
	}
}

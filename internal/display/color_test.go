package display

import (
	"testing"

	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

func TestWrap_Enabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Bold("hello"); got != "\033[1mhello\033[0m" {
		t.Errorf("Bold(\"hello\") = %q, want ANSI bold wrapped", got)
	}
	if got := Dim("text"); got != "\033[2mtext\033[0m" {
		t.Errorf("Dim(\"text\") = %q, want ANSI dim wrapped", got)
	}
	if got := Accent("today"); got != "\033[1m\033[36mtoday\033[0m" {
		t.Errorf("Accent(\"today\") = %q", got)
	}
}

func TestWrap_Disabled(t *testing.T) {
	SetEnabled(false)

	if got := Bold("hello"); got != "hello" {
		t.Errorf("Bold(\"hello\") with colors disabled = %q, want plain \"hello\"", got)
	}
}

func TestPhaseColor(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tests := []struct {
		phase ramadan.Phase
		want  string
	}{
		{ramadan.PhasePre, "\033[1m\033[33mx\033[0m"},
		{ramadan.PhaseRamadan, "\033[1m\033[32mx\033[0m"},
		{ramadan.PhasePost, "\033[1m\033[35mx\033[0m"},
		{ramadan.Phase("other"), "x"},
	}
	for _, tt := range tests {
		if got := PhaseColor(tt.phase, "x"); got != tt.want {
			t.Errorf("PhaseColor(%s) = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestEnabled_ReportsState(t *testing.T) {
	SetEnabled(true)
	if !Enabled() {
		t.Error("Enabled() should return true after SetEnabled(true)")
	}

	SetEnabled(false)
	if Enabled() {
		t.Error("Enabled() should return false after SetEnabled(false)")
	}
}

func TestShouldEnable_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")

	if shouldEnable() {
		t.Error("NO_COLOR must win over FORCE_COLOR")
	}
}

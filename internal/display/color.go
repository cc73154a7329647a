// Package display renders Ramadan statuses and day tables for the terminal.
//
// Colors use raw ANSI escape codes. They respect NO_COLOR (https://no-color.org/)
// and are disabled automatically when stdout is not a terminal.
package display

import (
	"os"

	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
)

// enabled is set once at init time.
var enabled bool

func init() {
	enabled = shouldEnable()
}

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

// isTerminal uses Stat().Mode() to check for a character device, no cgo.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the auto-detected color state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold returns text rendered in bold.
func Bold(text string) string { return wrap(bold, text) }

// Dim returns text rendered faint.
func Dim(text string) string { return wrap(dim, text) }

// Accent marks the row or value that refers to today.
func Accent(text string) string { return wrap(bold+cyan, text) }

// PhaseColor colors text by phase: yellow before Ramadan, green during it
// and magenta after it.
func PhaseColor(p ramadan.Phase, text string) string {
	switch p {
	case ramadan.PhasePre:
		return wrap(bold+yellow, text)
	case ramadan.PhaseRamadan:
		return wrap(bold+green, text)
	case ramadan.PhasePost:
		return wrap(bold+magenta, text)
	default:
		return text
	}
}

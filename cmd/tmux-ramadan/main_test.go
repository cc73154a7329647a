package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smokyabdulrahman/ramadan-status/internal/geo"
)

// TestVersionFlag verifies that --version prints the version string.
func TestVersionFlag(t *testing.T) {
	// Build the binary with a known version.
	binPath := t.TempDir() + "/tmux-ramadan"
	cmd := exec.Command("go", "build", "-ldflags", "-X main.version=v1.2.3-test", "-o", binPath, ".")
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	want := "tmux-ramadan v1.2.3-test"
	if got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

// TestListFormatsFlag verifies that --list-formats prints every mode.
func TestListFormatsFlag(t *testing.T) {
	binPath := t.TempDir() + "/tmux-ramadan"
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	out, err := exec.Command(binPath, "--list-formats").Output()
	if err != nil {
		t.Fatalf("--list-formats failed: %v", err)
	}

	for _, f := range formatHelp {
		if !strings.Contains(string(out), f.Mode) {
			t.Errorf("--list-formats output missing %q", f.Mode)
		}
	}
}

// withCalendar points the engine at a fake calendar service reporting
// 12 Ramadan 1447.
func withCalendar(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/gToH/"):
			_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":{"hijri":{"day":"12","month":{"number":9,"en":"Ramaḍān"},"year":"1447"}}}`))
		default:
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RAMADAN_CALENDAR_URL", srv.URL)
	t.Setenv("RAMADAN_HIJRI_ADJUSTMENT", "")
}

func TestRun_Formats(t *testing.T) {
	withCalendar(t)

	tests := []struct {
		format string
		want   string
	}{
		{"short", "12/30"},
		{"phase", "ramadan"},
		{"day-of-ramadan", "Day 12/30"},
		{"full", "Ramadan day 12 of 30"},
		{"{{.Phase}}:{{.Day}}", "ramadan:12"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := run(context.Background(), options{timezone: "Asia/Riyadh", format: tt.format, cacheDir: t.TempDir(), noDetect: true}, nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got != tt.want {
				t.Errorf("run(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestRun_DetectionFailureStillPrints(t *testing.T) {
	withCalendar(t)
	detect := func(context.Context) (*geo.Location, error) { return nil, errors.New("offline") }

	got, err := run(context.Background(), options{format: "phase", cacheDir: t.TempDir()}, detect)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "ramadan" {
		t.Errorf("run = %q, want ramadan", got)
	}
}

func TestRun_BadOffsetsFile(t *testing.T) {
	withCalendar(t)
	t.Setenv("RAMADAN_OFFSETS_FILE", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := run(context.Background(), options{timezone: "UTC", format: "short", cacheDir: t.TempDir(), noDetect: true}, nil); err == nil {
		t.Error("expected error for unreadable offsets file")
	}
}

func TestRun_CachesAcrossInvocations(t *testing.T) {
	withCalendar(t)
	dir := t.TempDir()
	opts := options{timezone: "Asia/Riyadh", format: "short", cacheDir: dir, noDetect: true}

	if _, err := run(context.Background(), opts, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "status_") {
			found = true
		}
	}
	if !found {
		t.Errorf("no status cache file in %s", dir)
	}
}

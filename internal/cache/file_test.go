package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
)

type payload struct {
	Phase string `json:"phase"`
	Day   *int   `json:"day"`
}

func newTestFile(t *testing.T, clk clock.Clock) *File[payload] {
	t.Helper()
	f, err := NewFile[payload](t.TempDir(), "status", time.Hour, WithClock(clk))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestFile_RoundTrip(t *testing.T) {
	f := newTestFile(t, clock.NewManual(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	day := 12

	f.Set("Asia/Dhaka|BD|NA|-1|auto|2026-03-01", payload{Phase: "ramadan", Day: &day})

	got, ok := f.Get("Asia/Dhaka|BD|NA|-1|auto|2026-03-01")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Phase != "ramadan" || got.Day == nil || *got.Day != 12 {
		t.Errorf("got %+v", got)
	}
	if f.Has("other") {
		t.Error("unexpected hit for other key")
	}
}

func TestFile_Expiry(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f := newTestFile(t, clk)
	f.Set("k", payload{Phase: "pre-ramadan"})

	clk.Advance(time.Hour)

	if _, ok := f.Get("k"); ok {
		t.Fatal("entry should expire at exactly the TTL")
	}
	if _, err := os.Stat(f.path("k")); !os.IsNotExist(err) {
		t.Error("stale file should be removed")
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewManual(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	a, err := NewFile[payload](dir, "status", time.Hour, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	a.Set("k", payload{Phase: "post-ramadan"})

	b, err := NewFile[payload](dir, "status", time.Hour, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := b.Get("k"); !ok || got.Phase != "post-ramadan" {
		t.Errorf("reopened store: got %+v, %v", got, ok)
	}
}

func TestFile_CorruptFileIsMiss(t *testing.T) {
	f := newTestFile(t, clock.Real{})
	if err := os.WriteFile(f.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Get("k"); ok {
		t.Error("corrupt file should be a miss")
	}
}

func TestFile_NamesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	a, _ := NewFile[payload](dir, "status", time.Hour)
	b, _ := NewFile[payload](dir, "geo", time.Hour)

	a.Set("k", payload{Phase: "ramadan"})
	if b.Has("k") {
		t.Error("stores with different names must not share entries")
	}
	if filepath.Dir(a.path("k")) != dir {
		t.Errorf("path outside dir: %s", a.path("k"))
	}
}

var _ Store[string, payload] = (*File[payload])(nil)

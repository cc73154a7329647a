package ramadan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
)

var errUnreachable = errors.New("upstream unreachable")

// fakeSource returns a fixed date (or error) and records the offsets it saw.
type fakeSource struct {
	mu      sync.Mutex
	name    string
	date    api.HijriDate
	err     error
	offsets []int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Resolve(_ context.Context, _ time.Time, off int) (api.HijriDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets = append(s.offsets, off)
	if s.err != nil {
		return api.HijriDate{}, s.err
	}
	return s.date, nil
}

func (s *fakeSource) set(h api.HijriDate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = h
}

func (s *fakeSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offsets)
}

// fakeFetcher serves a Hijri month table and per-Gregorian-month tables.
type fakeFetcher struct {
	mu       sync.Mutex
	hijri    []api.CalendarDay
	hijriErr error
	months   map[time.Month][]api.CalendarDay
	failing  map[time.Month]bool
	requests int
}

func (f *fakeFetcher) HijriMonthCalendar(_ context.Context, _ string, _, _ int) ([]api.CalendarDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.hijriErr != nil {
		return nil, f.hijriErr
	}
	return f.hijri, nil
}

func (f *fakeFetcher) GregorianMonthCalendar(_ context.Context, _ int, month time.Month, _ api.MonthQuery) ([]api.CalendarDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.failing[month] {
		return nil, errUnreachable
	}
	return f.months[month], nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

type fakeAnnouncer struct {
	mu    sync.Mutex
	a     api.Announcement
	err   error
	count int
}

func (f *fakeAnnouncer) Check(context.Context, time.Time) (api.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return f.a, f.err
}

func (f *fakeAnnouncer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// ramadanDays builds n consecutive days of Ramadan starting at start.
func ramadanDays(start time.Time, n int, year string) []api.CalendarDay {
	days := make([]api.CalendarDay, n)
	for i := range days {
		days[i] = api.CalendarDay{
			HijriDay:   i + 1,
			HijriMonth: RamadanMonth,
			HijriYear:  year,
			Gregorian:  start.AddDate(0, 0, i).Format(api.DateLayout),
		}
	}
	return days
}

func hijri(day, month int) api.HijriDate {
	names := map[int]string{8: "Shaʿbān", 9: "Ramaḍān", 10: "Shawwāl", 11: "Dhū al-Qaʿdah"}
	return api.HijriDate{Day: day, Month: month, Year: "1447", MonthName: names[month]}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(clk clock.Clock, opts Options) *Engine {
	nop := logger.Nop()
	opts.Logger = &nop
	opts.Clock = clk
	return New(opts)
}

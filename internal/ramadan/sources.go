package ramadan

import (
	"context"
	"errors"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
)

// ErrNoSources is returned when the engine has no Hijri source configured.
var ErrNoSources = errors.New("no hijri sources configured")

// HijriSource converts a Gregorian date to a Hijri date, shifted by offset days.
// The engine tries its sources in order and keeps the first success.
type HijriSource interface {
	Name() string
	Resolve(ctx context.Context, date time.Time, offset int) (api.HijriDate, error)
}

// Announcer reports the officially announced state of a date.
type Announcer interface {
	Check(ctx context.Context, date time.Time) (api.Announcement, error)
}

// CalendarFetcher returns day tables used to find the edges of Ramadan.
// *api.Client satisfies it.
type CalendarFetcher interface {
	HijriMonthCalendar(ctx context.Context, hijriYear string, hijriMonth, offset int) ([]api.CalendarDay, error)
	GregorianMonthCalendar(ctx context.Context, year int, month time.Month, q api.MonthQuery) ([]api.CalendarDay, error)
}

type converter interface {
	GregorianToHijri(ctx context.Context, date time.Time, offset int) (api.HijriDate, error)
}

// MathematicalSource resolves dates with the calendar service's mathematical method.
type MathematicalSource struct {
	Converter converter
}

// NewMathematicalSource wraps an api.Client.
func NewMathematicalSource(c *api.Client) MathematicalSource {
	return MathematicalSource{Converter: c}
}

// Name implements HijriSource.
func (MathematicalSource) Name() string { return "mathematical" }

// Resolve implements HijriSource.
func (s MathematicalSource) Resolve(ctx context.Context, date time.Time, offset int) (api.HijriDate, error) {
	return s.Converter.GregorianToHijri(ctx, date, offset)
}

// SourceFunc adapts a function to HijriSource.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context, date time.Time, offset int) (api.HijriDate, error)
}

// Name implements HijriSource.
func (s SourceFunc) Name() string { return s.Label }

// Resolve implements HijriSource.
func (s SourceFunc) Resolve(ctx context.Context, date time.Time, offset int) (api.HijriDate, error) {
	return s.Fn(ctx, date, offset)
}

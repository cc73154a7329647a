package ramadan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloudeng.io/errors"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

// scanMonths are the Gregorian months, relative to now, searched when the
// Hijri month table is unavailable.
var scanMonths = []int{-1, 0, 1, 2}

// Place describes where the month scan should compute its calendar.
type Place struct {
	Coordinates *offset.Coordinates
	Timezone    string
	Location    *time.Location
}

// BoundaryResolver finds the Gregorian edges of a Hijri year's Ramadan.
type BoundaryResolver struct {
	fetcher CalendarFetcher
	clock   clock.Clock
	log     logger.Logger
}

// NewBoundaryResolver creates a BoundaryResolver. A nil clock uses the wall clock.
func NewBoundaryResolver(f CalendarFetcher, c clock.Clock, log logger.Logger) *BoundaryResolver {
	if c == nil {
		c = clock.Real{}
	}
	return &BoundaryResolver{fetcher: f, clock: c, log: log}
}

// Resolve never fails: when neither the Hijri month table nor the Gregorian
// month scan yields a day of Ramadan it returns nil edges and DefaultTotalDays.
func (r *BoundaryResolver) Resolve(ctx context.Context, hijriYear string, off int, place Place) Boundary {
	days := r.Days(ctx, hijriYear, off, place)
	if len(days) == 0 {
		return Boundary{TotalDays: DefaultTotalDays}
	}
	return boundaryFrom(days)
}

// Days returns the days of hijriYear's Ramadan in Hijri day order, or nil
// when they cannot be found.
func (r *BoundaryResolver) Days(ctx context.Context, hijriYear string, off int, place Place) []api.CalendarDay {
	if r.fetcher == nil {
		return nil
	}

	days, err := r.fetcher.HijriMonthCalendar(ctx, hijriYear, RamadanMonth, off)
	switch {
	case err != nil:
		r.log.Debug().Err(err).Str("hijri_year", hijriYear).Msg("hijri month table failed, scanning gregorian months")
	case len(days) == 0:
		r.log.Debug().Str("hijri_year", hijriYear).Msg("hijri month table empty, scanning gregorian months")
	default:
		return days
	}

	days = r.scan(ctx, hijriYear, off, place)
	if len(days) == 0 {
		r.log.Warn().Str("hijri_year", hijriYear).Msg("no ramadan days found")
	}
	return days
}

// scan fetches the months around now concurrently and keeps the Ramadan days
// of hijriYear, ordered by Hijri day whatever order the fetches finish in.
func (r *BoundaryResolver) scan(ctx context.Context, hijriYear string, off int, place Place) []api.CalendarDay {
	loc := place.Location
	if loc == nil {
		loc = time.UTC
	}
	now := r.clock.Now().In(loc)
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	q := api.MonthQuery{Timezone: place.Timezone, Offset: off}
	if place.Coordinates != nil {
		lat, lon := place.Coordinates.Latitude, place.Coordinates.Longitude
		q.Latitude, q.Longitude = &lat, &lon
	}

	results := make([][]api.CalendarDay, len(scanMonths))
	errs := &errors.M{}

	var g errgroup.Group
	g.SetLimit(len(scanMonths))
	for i, delta := range scanMonths {
		i := i
		m := base.AddDate(0, delta, 0)
		g.Go(func() error {
			days, err := r.fetcher.GregorianMonthCalendar(ctx, m.Year(), m.Month(), q)
			if err != nil {
				errs.Append(fmt.Errorf("%04d-%02d: %w", m.Year(), int(m.Month()), err))
				return nil
			}
			results[i] = days
			return nil
		})
	}
	_ = g.Wait()

	if err := errs.Err(); err != nil {
		r.log.Debug().Err(err).Msg("month scan had failures")
	}

	var matched []api.CalendarDay
	for _, days := range results {
		for _, d := range days {
			if d.HijriMonth != RamadanMonth {
				continue
			}
			if hijriYear != "" && d.HijriYear != "" && d.HijriYear != hijriYear {
				continue
			}
			matched = append(matched, d)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].HijriDay < matched[j].HijriDay
	})
	return matched
}

func boundaryFrom(days []api.CalendarDay) Boundary {
	return Boundary{
		Start:     strPtr(days[0].Gregorian),
		End:       strPtr(days[len(days)-1].Gregorian),
		TotalDays: len(days),
	}
}

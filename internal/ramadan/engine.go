package ramadan

import (
	"context"
	"fmt"
	"time"

	"cloudeng.io/errors"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/cache"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

// DefaultTimeout bounds a whole Status call, network included.
const DefaultTimeout = 5 * time.Second

// DefaultHomeRegions are the countries for which the announcement source is trusted.
var DefaultHomeRegions = []string{"BD"}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Resolver *offset.Resolver

	// Sources are tried in order; the first success wins.
	Sources []HijriSource

	// Announcer is optional. When nil the announcement step is skipped.
	Announcer   Announcer
	HomeRegions []string

	Calendar CalendarFetcher
	Cache    cache.Store[string, Status]
	Clock    clock.Clock
	Timeout  time.Duration
	Fallback FallbackTable
	Logger   *logger.Logger
}

// Engine computes Ramadan statuses.
type Engine struct {
	resolver  *offset.Resolver
	sources   []HijriSource
	announcer Announcer
	home      map[string]bool
	boundary  *BoundaryResolver
	cache     cache.Store[string, Status]
	clock     clock.Clock
	timeout   time.Duration
	fallback  FallbackTable
	log       logger.Logger
}

// New creates an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		resolver:  opts.Resolver,
		sources:   opts.Sources,
		announcer: opts.Announcer,
		cache:     opts.Cache,
		clock:     opts.Clock,
		timeout:   opts.Timeout,
		fallback:  opts.Fallback,
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	} else {
		e.log = logger.Named("ramadan")
	}
	if e.resolver == nil {
		e.resolver = offset.NewResolver(offset.DefaultTables(), "")
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.cache == nil {
		e.cache = cache.New[string, Status](cache.DefaultTTL, cache.WithClock(e.clock))
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if len(e.fallback) == 0 {
		e.fallback = DefaultFallback
	}

	regions := opts.HomeRegions
	if regions == nil {
		regions = DefaultHomeRegions
	}
	e.home = make(map[string]bool, len(regions))
	for _, r := range regions {
		if cc := offset.NormalizeCountry(r); cc != "" {
			e.home[cc] = true
		}
	}

	e.boundary = NewBoundaryResolver(opts.Calendar, e.clock, e.log)
	return e
}

// Resolver returns the offset resolver in use.
func (e *Engine) Resolver() *offset.Resolver {
	return e.resolver
}

// Boundaries returns the boundary resolver in use.
func (e *Engine) Boundaries() *BoundaryResolver {
	return e.boundary
}

// Location returns the location for tz, or UTC when tz is empty or unknown.
func (e *Engine) Location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.log.Warn().Err(err).Str("timezone", tz).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

// Status returns today's status for q. It always returns a value in one of
// the three phases; upstream failures degrade the answer instead of failing it.
func (e *Engine) Status(ctx context.Context, q Query) (st Status) {
	loc := e.Location(q.Timezone)
	now := e.clock.Now().In(loc)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("status computation panicked, using static fallback")
			st = e.fallback.Status(now)
		}
	}()

	res := e.resolver.Resolve(q.Timezone, q.Country, q.Coordinates)
	key := CacheKey(q, res, now)
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	st, err := e.compute(ctx, q, res, now, key)
	if err != nil {
		e.log.Warn().Err(err).Str("timezone", q.Timezone).Msg("calendar sources failed, using static fallback")
		return e.fallback.Status(now)
	}
	e.cache.Set(key, st)
	return st
}

func (e *Engine) compute(ctx context.Context, q Query, res offset.Resolution, now time.Time, key string) (Status, error) {
	var provisional *Status
	if e.consultAnnouncement(q, res) {
		a, err := e.announcer.Check(ctx, now)
		switch {
		case err != nil:
			e.log.Debug().Err(err).Msg("announcement source failed")
		case a.IsRamadan:
			return fromAnnouncement(a), nil
		default:
			p := provisionalStatus(a)
			e.cache.Set(key, p)
			provisional = &p
		}
	}

	h, err := e.hijriToday(ctx, now, res.Offset)
	if err != nil {
		if provisional != nil {
			e.log.Debug().Err(err).Msg("keeping provisional announcement status")
			return *provisional, nil
		}
		return Status{}, err
	}

	place := Place{Coordinates: q.Coordinates, Timezone: now.Location().String(), Location: now.Location()}
	return e.classify(ctx, h, res.Offset, now, place), nil
}

func (e *Engine) consultAnnouncement(q Query, res offset.Resolution) bool {
	if e.announcer == nil || res.Override {
		return false
	}
	return offset.NormalizeCountry(q.Country) == "" || e.home[res.Country]
}

// hijriToday folds over the sources and keeps the first success.
func (e *Engine) hijriToday(ctx context.Context, now time.Time, off int) (api.HijriDate, error) {
	if len(e.sources) == 0 {
		return api.HijriDate{}, ErrNoSources
	}
	errs := &errors.M{}
	for _, src := range e.sources {
		h, err := src.Resolve(ctx, now, off)
		if err == nil {
			return h, nil
		}
		e.log.Debug().Err(err).Str("source", src.Name()).Msg("hijri source failed")
		errs.Append(fmt.Errorf("%s: %w", src.Name(), err))
	}
	return api.HijriDate{}, errs.Err()
}

func (e *Engine) classify(ctx context.Context, h api.HijriDate, off int, now time.Time, place Place) Status {
	switch {
	case h.Month == RamadanMonth:
		b := e.boundary.Resolve(ctx, h.Year, off, place)
		return newRamadanStatus(h, clampDay(h.Day, totalOrDefault(b.TotalDays)), b)
	case h.Month < RamadanMonth:
		b := e.boundary.Resolve(ctx, h.Year, off, place)
		if b.Start != nil {
			if start, ok := parseGregorian(*b.Start); ok {
				return newPreStatus(h, DaysBetween(now, start), b)
			}
		}
		return newPreStatus(h, RoughDaysUntil(h.Month, h.Day), b)
	default:
		return newPostStatus(h)
	}
}

func fromAnnouncement(a api.Announcement) Status {
	b := Boundary{Start: strPtr(a.Start), End: strPtr(a.End), TotalDays: totalOrDefault(a.TotalDays)}
	h := a.Hijri
	h.Month = RamadanMonth
	if h.MonthName == "" {
		h.MonthName = "Ramadan"
	}
	return newRamadanStatus(h, clampDay(h.Day, b.TotalDays), b)
}

func provisionalStatus(a api.Announcement) Status {
	h := a.Hijri
	if h.Month > RamadanMonth {
		return newPostStatus(h)
	}
	return newPreStatus(h, RoughDaysUntil(h.Month, h.Day), Boundary{})
}


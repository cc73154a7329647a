// Package app turns merged settings into a ready engine. The ramadan CLI
// and the status-line binary both start here.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/cache"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/config"
	"github.com/smokyabdulrahman/ramadan-status/internal/geo"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// GeoTTL is how long a detected location is reused.
const GeoTTL = 24 * time.Hour

const geoCacheKey = "ip"

// Location sources reported by Locate.
const (
	SourceSettings = "settings"
	SourceCache    = "cache"
	SourceDetected = "detected"
	SourceDefault  = "default"
)

// Detector looks up the caller's location. geo.DetectLocation is the default.
type Detector func(ctx context.Context) (*geo.Location, error)

// Stores are the caches used by short-lived processes.
type Stores struct {
	Status cache.Store[string, ramadan.Status]
	Geo    cache.Store[string, geo.Location]
}

// FileStores opens on-disk stores in dir, or in memory ones when the
// directory cannot be used.
func FileStores(dir string, ttl time.Duration, log logger.Logger) Stores {
	status, err := cache.NewFile[ramadan.Status](dir, "status", ttl)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled, using memory")
		return MemoryStores(ttl)
	}
	g, err := cache.NewFile[geo.Location](dir, "geo", GeoTTL)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled, using memory")
		return MemoryStores(ttl)
	}
	return Stores{Status: status, Geo: g}
}

// MemoryStores returns process-local stores.
func MemoryStores(ttl time.Duration) Stores {
	return Stores{
		Status: cache.New[string, ramadan.Status](ttl, cache.WithMaxEntries(4096)),
		Geo:    cache.New[string, geo.Location](GeoTTL),
	}
}

// Locate fills in the location fields s leaves empty. Explicit settings win;
// without a timezone it tries the cached detection, then detect, then UTC.
// It never fails.
func Locate(ctx context.Context, s config.Settings, detect Detector, store cache.Store[string, geo.Location], log logger.Logger) (config.Settings, string) {
	if s.Timezone != "" {
		return s, SourceSettings
	}

	if store != nil {
		if loc, ok := store.Get(geoCacheKey); ok {
			return merge(s, &loc), SourceCache
		}
	}

	if detect != nil {
		loc, err := detect(ctx)
		if err == nil && loc != nil && loc.Timezone != "" {
			if store != nil {
				store.Set(geoCacheKey, *loc)
			}
			return merge(s, loc), SourceDetected
		}
		log.Warn().Err(err).Msg("location detection failed, using UTC")
	}

	s.Timezone = "UTC"
	return s, SourceDefault
}

func merge(s config.Settings, loc *geo.Location) config.Settings {
	s.Timezone = loc.Timezone
	if s.Country == "" {
		s.Country = loc.CountryCode
	}
	if s.Latitude == nil && s.Longitude == nil {
		lat, lon := loc.Latitude, loc.Longitude
		s.Latitude, s.Longitude = &lat, &lon
	}
	return s
}

// Query converts settings into an engine query. Coordinates are only used
// when both halves are set.
func Query(s config.Settings) ramadan.Query {
	q := ramadan.Query{Timezone: s.Timezone, Country: s.Country}
	if s.Latitude != nil && s.Longitude != nil {
		q.Coordinates = &offset.Coordinates{Latitude: *s.Latitude, Longitude: *s.Longitude}
	}
	return q
}

// Tables loads s.OffsetsFile, or the built-in tables when it is unset.
func Tables(s config.Settings) (offset.Tables, error) {
	if s.OffsetsFile == "" {
		return offset.DefaultTables(), nil
	}
	return offset.LoadTables(s.OffsetsFile)
}

// NewEngine builds the engine for s. The only error is an unreadable
// offsets file.
func NewEngine(s config.Settings, store cache.Store[string, ramadan.Status], clk clock.Clock, log *logger.Logger) (*ramadan.Engine, error) {
	tables, err := Tables(s)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: s.Timeout}
	client := api.NewClient(s.CalendarURL, httpClient)

	opts := ramadan.Options{
		Resolver:    offset.NewResolver(tables, s.Adjustment),
		Sources:     []ramadan.HijriSource{ramadan.NewMathematicalSource(client)},
		HomeRegions: s.HomeRegions,
		Calendar:    client,
		Cache:       store,
		Clock:       clk,
		Timeout:     s.Timeout,
		Logger:      log,
	}
	if s.AnnouncementURL != "" {
		opts.Announcer = api.NewAnnouncementClient(s.AnnouncementURL, httpClient)
	}
	return ramadan.New(opts), nil
}

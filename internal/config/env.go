package config

import (
	"os"
	"strings"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
)

// EnvPrefix namespaces every environment variable read by Resolve.
const EnvPrefix = "RAMADAN_"

const (
	defaultCalendarURL = "https://api.aladhan.com/v1"
	defaultAddr        = ":8080"
	defaultCacheTTL    = 6 * time.Hour
	defaultTimeout     = 5 * time.Second
)

// Env is a namespaced view over environment variables, e.g. Env{}.Prefix("RAMADAN_").
type Env struct{ prefix string }

// NewEnv returns the application's environment view.
func NewEnv() Env { return Env{prefix: EnvPrefix} }

// Prefix returns a child view with an additional prefix.
func (e Env) Prefix(p string) Env { return Env{prefix: e.prefix + p} }

func (e Env) key(k string) string { return e.prefix + k }

// MayString returns the value or def if missing/empty.
func (e Env) MayString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(e.key(key)))
	if v == "" {
		return def
	}
	return v
}

// MayDuration returns the value or def if missing/empty; logs and returns def if invalid.
func (e Env) MayDuration(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(e.key(key)))
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	logger.Get().Warn().Str("key", e.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayCSV returns the comma-separated values of key, or def if missing/empty.
func (e Env) MayCSV(key string, def []string) []string {
	out := SplitList(os.Getenv(e.key(key)))
	if len(out) == 0 {
		return def
	}
	return out
}

// Settings is the effective configuration after merging environment, file
// and defaults. CLI flags are applied on top by the caller.
type Settings struct {
	Timezone        string
	Country         string
	Latitude        *float64
	Longitude       *float64
	HomeRegions     []string
	CalendarURL     string
	AnnouncementURL string
	OffsetsFile     string
	Adjustment      string // raw process-wide Hijri override; may be malformed
	Timeout         time.Duration
	CacheTTL        time.Duration
	Addr            string
	Lang            string
}

// Resolve merges env over file over defaults. A nil file is treated as empty.
func Resolve(file *Config, env Env) Settings {
	if file == nil {
		file = &Config{}
	}
	d := Defaults()

	s := Settings{
		Timezone:        env.MayString("TIMEZONE", file.Timezone),
		Country:         strings.ToUpper(env.MayString("COUNTRY", file.Country)),
		Latitude:        file.Latitude,
		Longitude:       file.Longitude,
		HomeRegions:     env.MayCSV("HOME_REGIONS", SplitList(firstNonEmpty(file.HomeRegions, d.HomeRegions))),
		CalendarURL:     env.MayString("CALENDAR_URL", firstNonEmpty(file.CalendarURL, defaultCalendarURL)),
		AnnouncementURL: env.MayString("ANNOUNCEMENT_URL", file.AnnouncementURL),
		OffsetsFile:     env.MayString("OFFSETS_FILE", file.OffsetsFile),
		Adjustment:      env.MayString("HIJRI_ADJUSTMENT", ""),
		Timeout:         env.MayDuration("TIMEOUT", file.TimeoutOrDefault(defaultTimeout)),
		CacheTTL:        env.MayDuration("CACHE_TTL", defaultCacheTTL),
		Addr:            env.MayString("ADDR", defaultAddr),
		Lang:            env.MayString("LANG", firstNonEmpty(file.Lang, d.Lang)),
	}
	for i, r := range s.HomeRegions {
		s.HomeRegions[i] = strings.ToUpper(r)
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

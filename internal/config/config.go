// Package config provides persistent configuration for the ramadan CLI.
//
// Configuration is stored as JSON at ~/.config/ramadan-status/config.json
// (XDG-compliant). The merge priority is: CLI flags > environment > config
// file > defaults. See Resolve for the environment layer.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	configDirName  = "ramadan-status"
	configFileName = "config.json"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"timezone", "country",
	"latitude", "longitude",
	"home_regions",
	"calendar_url", "announcement_url",
	"offsets_file",
	"timeout",
	"lang",
}

// Languages are the supported display languages.
var Languages = []string{"en", "bn"}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	Timezone        string   `json:"timezone,omitempty"`
	Country         string   `json:"country,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"` // pointer so the equator is settable
	Longitude       *float64 `json:"longitude,omitempty"`
	HomeRegions     string   `json:"home_regions,omitempty"` // comma-separated ISO-2 codes
	CalendarURL     string   `json:"calendar_url,omitempty"`
	AnnouncementURL string   `json:"announcement_url,omitempty"`
	OffsetsFile     string   `json:"offsets_file,omitempty"`
	Timeout         string   `json:"timeout,omitempty"` // Go duration, e.g. "5s"
	Lang            string   `json:"lang,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		HomeRegions: "BD",
		Timeout:     "5s",
		Lang:        "en",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil || value == "" {
			return fmt.Errorf("invalid timezone %q: must be an IANA name such as Asia/Dhaka", value)
		}
		c.Timezone = value
	case "country":
		if !isCountryCode(value) {
			return fmt.Errorf("invalid country %q: must be a two-letter ISO code", value)
		}
		c.Country = strings.ToUpper(value)
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = &v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = &v
	case "home_regions":
		codes := SplitList(value)
		for _, cc := range codes {
			if !isCountryCode(cc) {
				return fmt.Errorf("invalid country %q in home_regions", cc)
			}
		}
		c.HomeRegions = strings.ToUpper(strings.Join(codes, ","))
	case "calendar_url":
		if !isAbsURL(value) {
			return fmt.Errorf("invalid calendar_url %q: must be an absolute URL", value)
		}
		c.CalendarURL = value
	case "announcement_url":
		if value != "" && !isAbsURL(value) {
			return fmt.Errorf("invalid announcement_url %q: must be an absolute URL or empty", value)
		}
		c.AnnouncementURL = value
	case "offsets_file":
		c.OffsetsFile = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q: must be a positive duration such as 5s", value)
		}
		c.Timeout = value
	case "lang":
		if !isLanguage(value) {
			return fmt.Errorf("invalid lang %q: must be one of %s", value, strings.Join(Languages, ", "))
		}
		c.Lang = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "timezone":
		return c.Timezone, nil
	case "country":
		return c.Country, nil
	case "latitude":
		return formatFloat(c.Latitude), nil
	case "longitude":
		return formatFloat(c.Longitude), nil
	case "home_regions":
		return c.HomeRegions, nil
	case "calendar_url":
		return c.CalendarURL, nil
	case "announcement_url":
		return c.AnnouncementURL, nil
	case "offsets_file":
		return c.OffsetsFile, nil
	case "timeout":
		return c.Timeout, nil
	case "lang":
		return c.Lang, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// TimeoutOrDefault returns the parsed timeout, falling back to def when unset or invalid.
func (c *Config) TimeoutOrDefault(def time.Duration) time.Duration {
	if c.Timeout == "" {
		return def
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func isAbsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

func isLanguage(s string) bool {
	for _, l := range Languages {
		if s == l {
			return true
		}
	}
	return false
}

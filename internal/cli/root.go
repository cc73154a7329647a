package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/ramadan-status/internal/app"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/config"
	"github.com/smokyabdulrahman/ramadan-status/internal/display"
	"github.com/smokyabdulrahman/ramadan-status/internal/geo"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// Global flags shared across all subcommands.
var (
	FlagTimezone    string
	FlagCountry     string
	FlagLatitude    float64
	FlagLongitude   float64
	FlagAdjustment  string
	FlagOffsetsFile string
	FlagLang        string
	FlagJSON        bool
	FlagCacheDir    string
	FlagNoCache     bool
	FlagNoDetect    bool
	FlagNoColor     bool
	FlagVerbose     bool
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// detector is swapped in tests.
var detector app.Detector = geo.DetectLocation

// NewRootCmd creates the root command for the ramadan CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ramadan",
		Short:   "Ramadan status for your location",
		Long:    "Shows whether today is before, during or after Ramadan, powered by the Al Adhan calendar API.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogger()
			if FlagNoColor || FlagJSON {
				display.SetEnabled(false)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's status.
		RunE:          runStatus,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone, e.g. Asia/Dhaka (default: config, then auto-detect)")
	pf.StringVar(&FlagCountry, "country", "", "ISO-2 country code, e.g. BD")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude of the location")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude of the location")
	pf.StringVar(&FlagAdjustment, "adjustment", "", "Force a Hijri day adjustment in [-2, 2] for every query")
	pf.StringVar(&FlagOffsetsFile, "offsets-file", "", "JSON file replacing the built-in offset tables")
	pf.StringVar(&FlagLang, "lang", "", "Display language: en or bn")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/ramadan-status/)")
	pf.BoolVar(&FlagNoCache, "no-cache", false, "Do not read or write the on-disk cache")
	pf.BoolVar(&FlagNoDetect, "no-detect", false, "Do not guess the location from the public IP")
	pf.BoolVar(&FlagNoColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Log fallback decisions to stderr")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newOffsetCmd())
	rootCmd.AddCommand(newDaysCmd())
	rootCmd.AddCommand(newICSCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("ramadan %s\n", version)
}

func initLogger() {
	opt := logger.FromEnv()
	if os.Getenv("LOG_LEVEL") == "" {
		opt.Level = "warn"
	}
	if FlagVerbose {
		opt.Level = "debug"
	}
	logger.Init(opt)
}

// effectiveSettings returns the merged settings, applying the priority:
// CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveSettings(cmd *cobra.Command) config.Settings {
	s := config.Resolve(loadedConfig, config.NewEnv())

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "timezone") {
		s.Timezone = FlagTimezone
	}
	if flagWasSet(flags, root, "country") {
		s.Country = offset.NormalizeCountry(FlagCountry)
	}
	if flagWasSet(flags, root, "latitude") {
		v := FlagLatitude
		s.Latitude = &v
	}
	if flagWasSet(flags, root, "longitude") {
		v := FlagLongitude
		s.Longitude = &v
	}
	if flagWasSet(flags, root, "adjustment") {
		s.Adjustment = FlagAdjustment
	}
	if flagWasSet(flags, root, "offsets-file") {
		s.OffsetsFile = FlagOffsetsFile
	}
	if flagWasSet(flags, root, "lang") {
		s.Lang = FlagLang
	}
	return s
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// session bundles what a one-shot command needs: located settings, the
// engine and the query for the caller's place.
type session struct {
	settings config.Settings
	engine   *ramadan.Engine
	query    ramadan.Query
	source   string
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	s := effectiveSettings(cmd)
	log := logger.Named("cli")

	stores := app.MemoryStores(s.CacheTTL)
	if !FlagNoCache {
		stores = app.FileStores(FlagCacheDir, s.CacheTTL, log)
	}

	detect := detector
	if FlagNoDetect {
		detect = nil
	}
	s, source := app.Locate(ctx, s, detect, stores.Geo, log)

	eng, err := app.NewEngine(s, stores.Status, clock.Real{}, nil)
	if err != nil {
		return nil, err
	}
	return &session{settings: s, engine: eng, query: app.Query(s), source: source}, nil
}

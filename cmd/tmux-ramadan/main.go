package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/smokyabdulrahman/ramadan-status/internal/app"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/config"
	"github.com/smokyabdulrahman/ramadan-status/internal/format"
	"github.com/smokyabdulrahman/ramadan-status/internal/geo"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

// formatHelp describes every built-in mode for --list-formats.
var formatHelp = []struct {
	Mode    string
	Example string
}{
	{format.FormatDaysUntil, "10 days (full form outside the run-up)"},
	{format.FormatDayOfRamadan, "Day 12/30 (full form outside Ramadan)"},
	{format.FormatPhase, "pre-ramadan / ramadan / post-ramadan"},
	{format.FormatShort, "10d / 12/30 / -"},
	{format.FormatFull, "Ramadan in 10 days / Ramadan day 12 of 30"},
}

type options struct {
	timezone, country   string
	latitude, longitude *float64
	adjustment          string
	format              string
	cacheDir            string
	noDetect            bool
}

func main() {
	// Location flags
	timezone := flag.String("timezone", "", "IANA timezone, e.g. Asia/Dhaka (default: config, then auto-detect)")
	country := flag.String("country", "", "ISO-2 country code, e.g. BD")
	latitude := flag.Float64("latitude", 0, "Latitude of the location")
	longitude := flag.Float64("longitude", 0, "Longitude of the location")
	adjustment := flag.String("adjustment", "", "Force a Hijri day adjustment in [-2, 2]")

	// Display flags
	mode := flag.String("format", format.FormatShort, "Display format: days-until, day-of-ramadan, phase, short, full, or a custom Go template (e.g. '{{.Phase}} {{.Day}}'). Template fields: .Phase, .Day, .DaysUntil, .Total, .HijriDate, .Start, .End")

	// Cache flags
	cacheDir := flag.String("cache-dir", "", "Cache directory (default: ~/.cache/ramadan-status/)")
	noDetect := flag.Bool("no-detect", false, "Do not guess the location from the public IP")

	// Info flags
	showVersion := flag.Bool("version", false, "Print version and exit")
	listFormats := flag.Bool("list-formats", false, "Print the built-in display formats and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("tmux-ramadan %s\n", version)
		return
	}

	if *listFormats {
		printFormats(os.Stdout)
		return
	}

	opts := options{
		timezone:   *timezone,
		country:    *country,
		adjustment: *adjustment,
		format:     *mode,
		cacheDir:   *cacheDir,
		noDetect:   *noDetect,
	}
	// Zero is a valid coordinate, so only explicitly passed flags count.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "latitude":
			opts.latitude = latitude
		case "longitude":
			opts.longitude = longitude
		}
	})

	out, err := run(context.Background(), opts, geo.DetectLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// printFormats prints the table of built-in display formats.
func printFormats(w io.Writer) {
	fmt.Fprintln(w, "Built-in formats:")
	fmt.Fprintln(w)
	for _, f := range formatHelp {
		fmt.Fprintf(w, "  %-15s %s\n", f.Mode, f.Example)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Anything containing {{ is treated as a Go template.")
}

// run merges flags over the config file and environment, then renders the
// status in the requested format. Upstream failures never reach the status
// bar; only an unreadable offsets file is an error.
func run(ctx context.Context, opts options, detect app.Detector) (string, error) {
	logger.Init(logger.Options{Level: "disabled"})
	log := logger.Named("tmux")

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring config file")
		cfg = nil
	}
	s := config.Resolve(cfg, config.NewEnv())
	if opts.timezone != "" {
		s.Timezone = opts.timezone
	}
	if opts.country != "" {
		s.Country = offset.NormalizeCountry(opts.country)
	}
	if opts.latitude != nil {
		s.Latitude = opts.latitude
	}
	if opts.longitude != nil {
		s.Longitude = opts.longitude
	}
	if opts.adjustment != "" {
		s.Adjustment = opts.adjustment
	}
	if opts.noDetect {
		detect = nil
	}

	stores := app.FileStores(opts.cacheDir, s.CacheTTL, log)
	s, _ = app.Locate(ctx, s, detect, stores.Geo, log)

	eng, err := app.NewEngine(s, stores.Status, clock.Real{}, &log)
	if err != nil {
		return "", err
	}
	st := eng.Status(ctx, app.Query(s))
	return format.Output(st, opts.format), nil
}

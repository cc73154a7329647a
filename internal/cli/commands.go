package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/app"
	"github.com/smokyabdulrahman/ramadan-status/internal/calendar"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/config"
	"github.com/smokyabdulrahman/ramadan-status/internal/display"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
	"github.com/smokyabdulrahman/ramadan-status/internal/server"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's Ramadan status (default)",
		Long:  "Show whether today is before, during or after Ramadan for your location.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	st := sess.engine.Status(cmd.Context(), sess.query)

	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), st)
	}
	tr := display.NewTranslator(sess.settings.Lang)
	fmt.Fprint(cmd.OutOrStdout(), display.RenderStatus(tr, st))
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n\n", display.Dim(sess.settings.Timezone))
	return nil
}

var (
	flagServeAddr    string
	flagServeOrigins string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve GET /api/ramadan/status and GET /api/ramadan/calendar.ics until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default: $RAMADAN_ADDR or :8080)")
	cmd.Flags().StringVar(&flagServeOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	s := effectiveSettings(cmd)
	if flagServeAddr != "" {
		s.Addr = flagServeAddr
	}

	eng, err := app.NewEngine(s, app.MemoryStores(s.CacheTTL).Status, clock.Real{}, nil)
	if err != nil {
		return err
	}

	srv := server.New(eng, server.Options{
		Addr:           s.Addr,
		AllowedOrigins: config.SplitList(flagServeOrigins),
		SlowRequest:    s.Timeout,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func newOffsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offset",
		Short: "Show the Hijri day adjustment used for your location",
		Long:  "Print the day adjustment applied to the mathematical calendar and which rule produced it.",
		Args:  cobra.NoArgs,
		RunE:  runOffset,
	}
}

type offsetJSON struct {
	Timezone string `json:"timezone"`
	Country  string `json:"country,omitempty"`
	Offset   int    `json:"offset"`
	Rule     string `json:"rule"`
	Override bool   `json:"override"`
}

func runOffset(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	q := sess.query
	res := sess.engine.Resolver().Resolve(q.Timezone, q.Country, q.Coordinates)

	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), offsetJSON{
			Timezone: q.Timezone,
			Country:  res.Country,
			Offset:   res.Offset,
			Rule:     res.Rung.String(),
			Override: res.Override,
		})
	}

	country := res.Country
	if country == "" {
		country = "-"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %s\n", "timezone", q.Timezone)
	fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %s\n", "country", country)
	fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %+d\n", "offset", res.Offset)
	fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %s\n", "rule", res.Rung)
	return nil
}

var flagDaysYear string

func newDaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "days",
		Short: "List the days of Ramadan",
		Long:  "Print the Gregorian date of every day of Ramadan, today highlighted.",
		Args:  cobra.NoArgs,
		RunE:  runDays,
	}
	cmd.Flags().StringVar(&flagDaysYear, "hijri-year", "", "Hijri year to list (default: the current one)")
	return cmd
}

func runDays(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	eng, q := sess.engine, sess.query

	year := flagDaysYear
	if year == "" {
		year = eng.Status(cmd.Context(), q).HijriYear
	}
	res := eng.Resolver().Resolve(q.Timezone, q.Country, q.Coordinates)

	ctx, cancel := context.WithTimeout(cmd.Context(), sess.settings.Timeout)
	defer cancel()
	loc := eng.Location(q.Timezone)
	days := eng.Boundaries().Days(ctx, year, res.Offset, ramadan.Place{
		Coordinates: q.Coordinates,
		Timezone:    q.Timezone,
		Location:    loc,
	})

	if FlagJSON {
		if days == nil {
			days = []api.CalendarDay{}
		}
		return printJSON(cmd.OutOrStdout(), days)
	}

	tr := display.NewTranslator(sess.settings.Lang)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n\n", display.Bold("Ramadan "+year))
	fmt.Fprint(cmd.OutOrStdout(), display.DaysTable(tr, days, clock.Real{}.Now().In(loc)))
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

var flagICSOutput string

func newICSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export Ramadan as an iCalendar file",
		Long:  "Write an all-day event spanning Ramadan. The calendar is empty when the dates are not yet known.",
		Args:  cobra.NoArgs,
		RunE:  runICS,
	}
	cmd.Flags().StringVarP(&flagICSOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func runICS(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	st := sess.engine.Status(cmd.Context(), sess.query)

	data, err := calendar.Build(st, clock.Real{}.Now())
	if err != nil {
		return err
	}
	if flagICSOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flagICSOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", flagICSOutput, err)
	}
	log := logger.Named("cli")
	log.Info().Str("path", flagICSOutput).Msg("calendar written")
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  ramadan config set timezone Asia/Dhaka\n  ramadan config set country BD\n  ramadan config set home_regions BD,IN\n  ramadan config set lang bn",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Configuration (%s)\n\n", path)
	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		fmt.Fprintf(out, "  %-17s %s\n", key, val)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

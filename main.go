package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/weatherinsight/internal/app"
	"github.com/briangreenhill/weatherinsight/internal/config"
	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const version = "0.1.0"

func main() {
	if err := runCLI(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCLI(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

type cliFlags struct {
	units    string
	provider string
	asJSON   bool
	verbose  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f cliFlags

	root := &cobra.Command{
		Use:           "weatherinsight",
		Short:         "Current weather with language-model advice",
		Long:          "weatherinsight looks up the weather for a city on OpenWeatherMap and asks a language model what to wear.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&f.units, "units", "u", "metric", "metric, imperial or standard")
	root.PersistentFlags().BoolVar(&f.asJSON, "json", false, "print JSON instead of text")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log cache and model activity to stderr")

	lookup := &cobra.Command{
		Use:   "lookup <city>",
		Short: "Show current weather and an insight for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), cmd.OutOrStdout(), stderr, args[0], f)
		},
	}
	lookup.Flags().StringVarP(&f.provider, "provider", "p", "", "language-model provider (default LLM_PROVIDER)")

	forecast := &cobra.Command{
		Use:   "forecast <city>",
		Short: "Show the 5 day forecast for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd.Context(), cmd.OutOrStdout(), stderr, args[0], f)
		},
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List configured language-model providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := app.Build(cfg, "", app.NewLogger(io.Discard, "disabled"))
			if err != nil {
				return err
			}
			for _, name := range svc.Providers.List() {
				marker := " "
				if name == cfg.LLM.Provider {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print weatherinsight version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weatherinsight version %s\n", version)
		},
	}

	root.AddCommand(lookup, forecast, providersCmd, versionCmd)
	return root
}

func build(stderr io.Writer, provider string, f cliFlags) (*app.Services, weather.Units, error) {
	units, err := weather.ParseUnits(f.units)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	svc, err := app.Build(cfg, provider, app.NewLogger(stderr, level))
	if err != nil {
		return nil, "", err
	}
	return svc, units, nil
}

func runLookup(ctx context.Context, out, stderr io.Writer, city string, f cliFlags) error {
	svc, units, err := build(stderr, f.provider, f)
	if err != nil {
		return err
	}
	defer svc.Close(context.WithoutCancel(ctx))

	snap, err := svc.Fetcher.FetchCurrent(ctx, city, units)
	if err != nil {
		return describe(city, err)
	}
	insight, err := svc.Generator.Generate(ctx, snap)
	if err != nil {
		return describe(city, err)
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			weather.Snapshot
			Insight weather.Insight `json:"insight"`
		}{snap, insight})
	}

	sym := units.Symbol()
	fmt.Fprintf(out, "%s, %s\n", snap.City, snap.Country)
	fmt.Fprintf(out, "  Temperature: %.1f%s (feels like %.1f%s)\n", snap.Temperature, sym, snap.FeelsLike, sym)
	fmt.Fprintf(out, "  Conditions:  %s\n", snap.Description)
	fmt.Fprintf(out, "  Humidity:    %d%%\n", snap.Humidity)
	fmt.Fprintf(out, "  Wind:        %.1f %s\n\n", snap.WindSpeed, windUnit(units))
	fmt.Fprintf(out, "%s\n", insight.Summary)
	fmt.Fprintf(out, "Recommendation: %s\n", insight.Recommendation)
	fmt.Fprintf(out, "Comfort: %s | Umbrella: %s\n", insight.ComfortLevel, yesNo(insight.BringUmbrella))
	return nil
}

func runForecast(ctx context.Context, out, stderr io.Writer, city string, f cliFlags) error {
	svc, units, err := build(stderr, "", f)
	if err != nil {
		return err
	}
	defer svc.Close(context.WithoutCancel(ctx))

	fc, err := svc.Fetcher.FetchForecast(ctx, city, units)
	if err != nil {
		return describe(city, err)
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	}

	fmt.Fprintf(out, "%s, %s\n", fc.City, fc.Country)
	for _, p := range fc.Points {
		fmt.Fprintf(out, "  %s  %6.1f%s  %3.0f%% precip  %s\n",
			p.At.UTC().Format("Mon 02 15:04"), p.Temperature, units.Symbol(), p.PrecipitationChance*100, p.Description)
	}
	return nil
}

// describe turns pipeline errors into the same messages the API returns
func describe(city string, err error) error {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fmt.Errorf("city '%s' not found. Please check the spelling and try again", city)
	case errors.Is(err, weather.ErrRateLimited):
		return fmt.Errorf("API rate limit exceeded. Please try again later")
	case errors.Is(err, weather.ErrUpstreamAuth):
		return fmt.Errorf("upstream authentication failed. Please check API key configuration")
	case errors.Is(err, weather.ErrTimeout):
		return fmt.Errorf("weather API request timed out. Please try again")
	default:
		return err
	}
}

func windUnit(u weather.Units) string {
	if u == weather.Imperial {
		return "mph"
	}
	return "m/s"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

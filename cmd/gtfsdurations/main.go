package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/transitmetrics/gtfs"
	"github.com/transitmetrics/gtfs/config"
	"github.com/transitmetrics/gtfs/export"
	"github.com/transitmetrics/gtfs/metrics"
	"github.com/urfave/cli/v2"
)

func main() {
	// Results may be written to stdout, so logs go to stderr.
	if os.Getenv("GTFSDURATIONS_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
	if os.Getenv("GTFSDURATIONS_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:  "gtfsdurations",
		Usage: "compute trip duration metrics from GTFS static feeds",
		Commands: []*cli.Command{
			durationsCommand(),
			patternsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func durationsCommand() *cli.Command {
	return &cli.Command{
		Name:      "durations",
		Usage:     "compute trip durations and write them as CSV",
		ArgsUsage: "[path to GTFS static zip]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"m"},
				Usage:   "aggregation method: by.route, by.trip, detailed",
			},
			&cli.StringFlag{
				Name:  "trips",
				Usage: "comma separated trip IDs to restrict the computation to",
			},
			&cli.StringFlag{
				Name:  "patterns",
				Usage: "precomputed service pattern CSV; derived from the feed if not set",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file; standard output if not set",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of trip partitions computed concurrently",
			},
			&cli.StringFlag{
				Name:  "metrics-textfile",
				Usage: "write Prometheus metrics to this file",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load(ctx.String("config"))
			if err != nil {
				return err
			}
			if ctx.Args().Present() {
				cfg.Feed = ctx.Args().First()
			}
			if ctx.IsSet("method") {
				cfg.Method = ctx.String("method")
			}
			if ctx.IsSet("trips") {
				cfg.Trips = config.SplitList(ctx.String("trips"))
			}
			if ctx.IsSet("patterns") {
				cfg.ServicePatterns = ctx.String("patterns")
			}
			if ctx.IsSet("out") {
				cfg.Output = ctx.String("out")
			}
			if ctx.IsSet("workers") {
				cfg.Workers = ctx.Int("workers")
			}
			if ctx.IsSet("metrics-textfile") {
				cfg.MetricsTextfile = ctx.String("metrics-textfile")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDurations(cfg)
		},
	}
}

func runDurations(cfg *config.Config) error {
	schedule, err := readSchedule(cfg.Feed)
	if err != nil {
		return err
	}
	opts := &gtfs.Options{Workers: cfg.Workers}
	if cfg.ServicePatterns != "" {
		f, err := os.Open(cfg.ServicePatterns)
		if err != nil {
			return fmt.Errorf("failed to open service patterns %s: %w", cfg.ServicePatterns, err)
		}
		opts.ServicePatterns, err = gtfs.ReadServicePatterns(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	var collector *metrics.Collector
	if cfg.MetricsTextfile != "" {
		collector = metrics.NewCollector()
		opts.Recorder = collector
	}
	method := gtfs.DefaultMethod
	if cfg.Method != "" {
		method = gtfs.Method(cfg.Method)
	}
	trips := gtfs.AllTrips()
	if len(cfg.Trips) > 0 {
		trips = gtfs.OnlyTrips(cfg.Trips...)
	}

	durations := gtfs.GetDurations(schedule, method, trips, opts)

	if err := writeOutput(cfg.Output, func(w io.Writer) error {
		return export.WriteCsv(w, durations)
	}); err != nil {
		return err
	}
	if collector != nil {
		if err := collector.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
	}
	printSummary(durations)
	return nil
}

func patternsCommand() *cli.Command {
	return &cli.Command{
		Name:      "patterns",
		Usage:     "derive the service patterns of a feed and write them as CSV",
		ArgsUsage: "path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "trips",
				Usage: "comma separated trip IDs to count pattern frequencies over",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file; standard output if not set",
			},
		},
		Action: func(ctx *cli.Context) error {
			if !ctx.Args().Present() {
				return fmt.Errorf("a path to the GTFS static feed was not provided")
			}
			schedule, err := readSchedule(ctx.Args().First())
			if err != nil {
				return err
			}
			if ids := config.SplitList(ctx.String("trips")); len(ids) > 0 {
				schedule = gtfs.FilterTrips(schedule, gtfs.OnlyTrips(ids...))
			}
			patterns := gtfs.DeriveServicePatterns(schedule)
			if err := writeOutput(ctx.String("out"), func(w io.Writer) error {
				return gtfs.WriteServicePatterns(w, patterns)
			}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s service patterns for %s services\n",
				color.CyanString("%d", len(patterns)),
				color.CyanString("%d", len(schedule.Services)),
			)
			return nil
		},
	}
}

func readSchedule(path string) (*gtfs.Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	schedule, err := gtfs.ParseStatic(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GTFS static data: %w", err)
	}
	for _, w := range schedule.Warnings {
		log.Warn().Str("file", string(w.File())).Msg(w.Error())
	}
	return gtfs.Normalize(schedule), nil
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(durations *gtfs.Durations) {
	tc := color.New(color.FgCyan)
	wc := color.New(color.FgYellow)
	fmt.Fprintf(os.Stderr, "Method %s  Rows %s  Trips %s\n",
		tc.Sprint(durations.Method),
		tc.Sprint(durations.Len()),
		tc.Sprint(durations.Stats.Trips),
	)
	fmt.Fprintf(os.Stderr, "Trips without arrivals %s  Trips without service pattern %s  Dropped segments %s\n",
		wc.Sprint(durations.Stats.TripsWithoutArrivals),
		wc.Sprint(durations.Stats.TripsWithoutServicePattern),
		wc.Sprint(durations.Stats.DroppedSegments),
	)
	if len(durations.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%s warnings\n", wc.Sprint(len(durations.Warnings)))
	}
}

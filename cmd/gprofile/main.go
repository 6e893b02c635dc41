package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/planbiir/gprofile/internal/chart"
	"github.com/planbiir/gprofile/internal/config"
	"github.com/planbiir/gprofile/internal/gpx"
	"github.com/planbiir/gprofile/internal/logging"
	"github.com/planbiir/gprofile/internal/metrics"
	"github.com/planbiir/gprofile/internal/profile"
	"github.com/planbiir/gprofile/internal/summary"
)

const version = "gprofile v1.0.0 - GPX elevation and speed profile"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	configPath  string
	input       string
	output      string
	window      int
	width       int
	height      int
	trackPolicy string
	metricsFile string
	logLevel    string
	logFormat   string
	showStats   bool
	statsJSON   bool
	dryRun      bool
	version     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, version)
		return exitOK
	}

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if cfg.Input == "" {
		fs.Usage()
		return exitUsage
	}

	// Generate output filename if not provided
	if cfg.Output == "" {
		ext := filepath.Ext(cfg.Input)
		base := strings.TrimSuffix(cfg.Input, ext)
		cfg.Output = base + "_profile.png"
	}

	logger := logging.NewWithOutput(stderr, cfg.Log.Level, cfg.Log.Format)

	if err := render(cfg, opts, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("gprofile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := config.Default()

	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.input, "input", "", "Input GPX file")
	fs.StringVar(&opts.input, "i", "", "Input GPX file (shorthand)")
	fs.StringVar(&opts.output, "output", "", "Output PNG file (default: <input>_profile.png)")
	fs.StringVar(&opts.output, "o", "", "Output PNG file (shorthand)")
	fs.IntVar(&opts.window, "window", defaults.Profile.Window, "Moving average window in samples")
	fs.IntVar(&opts.width, "width", defaults.Chart.Width, "Chart width in pixels")
	fs.IntVar(&opts.height, "height", defaults.Chart.Height, "Chart height in pixels (both panels)")
	fs.StringVar(&opts.trackPolicy, "track-policy", defaults.Profile.TrackPolicy, "strict: exactly one track, first: use the first track")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	fs.StringVar(&opts.logLevel, "log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", defaults.Log.Format, "Log format (text, json)")
	fs.BoolVar(&opts.showStats, "stats", false, "Show detailed statistics")
	fs.BoolVar(&opts.statsJSON, "stats-json", false, "Output statistics as JSON")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Build the profile without writing the image")
	fs.BoolVar(&opts.version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stdout, "gprofile - Plot elevation and speed of a GPX track\n\n")
		fmt.Fprintf(stdout, "usage: gprofile --input /path/to/file.gpx [--output profile.png] [--window 75]\n\n")
		fmt.Fprintf(stdout, "examples:\n")
		fmt.Fprintf(stdout, "  gprofile --input track.gpx\n")
		fmt.Fprintf(stdout, "  gprofile -i \"My Activity.gpx\" -o activity.png --window 30\n")
		fmt.Fprintf(stdout, "  gprofile --config gprofile.yaml --stats\n\n")
		fmt.Fprintf(stdout, "options:\n")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		fs.SetOutput(stderr)
	}

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return opts, fs, errUsage
	}
	return opts, fs, nil
}

// loadConfig layers explicitly set flags over the config file over defaults.
func loadConfig(opts options, fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input", "i":
			cfg.Input = opts.input
		case "output", "o":
			cfg.Output = opts.output
		case "window":
			cfg.Profile.Window = opts.window
		case "width":
			cfg.Chart.Width = opts.width
		case "height":
			cfg.Chart.Height = opts.height
		case "track-policy":
			cfg.Profile.TrackPolicy = opts.trackPolicy
		case "metrics-file":
			cfg.MetricsFile = opts.metricsFile
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "log-format":
			cfg.Log.Format = opts.logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// render runs parse -> build -> draw. Nothing is written to cfg.Output unless
// the profile was built successfully.
func render(cfg config.Config, opts options, logger *logrus.Logger, stdout io.Writer) error {
	recorder := metrics.NewRecorder()
	log := logger.WithField("input", cfg.Input)

	quiet := opts.statsJSON
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Fprintf(stdout, format, args...)
		}
	}

	say("📖 Reading GPX file: %s\n", cfg.Input)
	stage := time.Now()
	data, doc, err := gpx.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	recorder.ObserveStage("parse", time.Since(stage))

	tracks, segments, points := doc.Stats()
	log.WithFields(logrus.Fields{
		"tracks":   tracks,
		"segments": segments,
		"points":   points,
	}).Debug("GPX parsed")

	stage = time.Now()
	builder := profile.NewBuilder(cfg.ProfileConfig(), log)
	prof, err := builder.Build(doc)
	if err != nil {
		return err
	}
	recorder.ObserveStage("build", time.Since(stage))
	recorder.ObserveProfile(prof)

	say("📊 Profile: %d points, %s speed, window %d\n", prof.Len(), prof.SpeedSource, prof.Window)

	sum, err := summary.FromBytes(data, 0, cfg.Summary.GeohashPrecision)
	if err != nil {
		log.WithError(err).Warn("Track summary unavailable")
	} else {
		log.WithFields(logrus.Fields{
			"profile_distance_m": prof.Stats.DistanceMeters,
			"gpxgo_length_m":     sum.Length2DMeters,
		}).Debug("Distance cross-check")
	}

	if opts.showStats || opts.statsJSON || opts.dryRun {
		if opts.statsJSON {
			report := struct {
				Profile profile.Stats    `json:"profile"`
				Summary *summary.Summary `json:"summary,omitempty"`
			}{prof.Stats, sum}
			jsonData, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal stats: %w", err)
			}
			fmt.Fprintln(stdout, string(jsonData))
		} else {
			printStats(stdout, prof, sum)
		}
	}

	if opts.dryRun {
		say("🔍 Dry run completed - no image written\n")
		return writeMetrics(cfg, recorder, log)
	}

	stage = time.Now()
	renderer := chart.NewRenderer(cfg.ChartOptions(), log)
	err = renderer.WriteFile(cfg.Output, chart.Input{
		Elevation: prof.Elevation,
		Speed:     prof.Speed,
		Caption:   caption(prof),
	})
	if err != nil {
		return err
	}
	recorder.ObserveStage("render", time.Since(stage))
	recorder.MarkSuccess(time.Now())

	say("✅ Profile written: %s\n", cfg.Output)

	return writeMetrics(cfg, recorder, log)
}

func writeMetrics(cfg config.Config, recorder *metrics.Recorder, log logrus.FieldLogger) error {
	if cfg.MetricsFile == "" {
		return nil
	}
	if err := recorder.WriteFile(cfg.MetricsFile); err != nil {
		return err
	}
	log.WithField("path", cfg.MetricsFile).Debug("Metrics written")
	return nil
}

func caption(prof *profile.Profile) string {
	name := prof.TrackName
	if name == "" {
		name = "Untitled track"
	}
	return fmt.Sprintf("%s - window %d - %s speed", name, prof.Window, prof.SpeedSource)
}

func printStats(w io.Writer, prof *profile.Profile, sum *summary.Summary) {
	st := prof.Stats
	fmt.Fprintf(w, "\n📊 Profile Statistics:\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "🎯 Activity Type: %s (P95 %.1f m/s)\n", st.ActivityType, st.P95Speed)
	fmt.Fprintf(w, "📍 Points: %d (tracks in file: %d)\n", st.Points, st.TrackCount)
	fmt.Fprintf(w, "📏 Distance: %.2f km in %v\n", st.DistanceMeters/1000, st.Duration)
	fmt.Fprintf(w, "⛰️  Elevation: %.0f → %.0f m\n", st.MinElevation, st.MaxElevation)
	fmt.Fprintf(w, "⚡ Speed: mean %.1f m/s, max %.1f m/s (%s)\n", st.MeanSpeed, st.MaxSpeed, prof.SpeedSource)
	if st.NonPositiveIntervals > 0 {
		fmt.Fprintf(w, "⚠️  Samples with zero/negative time delta: %d\n", st.NonPositiveIntervals)
	}
	if sum != nil {
		fmt.Fprintf(w, "🧭 Start %s → End %s, climb +%.0f/-%.0f m\n",
			sum.StartGeohash, sum.EndGeohash, sum.UphillMeters, sum.DownhillMeters)
	}
	fmt.Fprintf(w, "⏱️  Processing Time: %v\n", st.ProcessingTime)
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/planbiir/gprofile/internal/chart"
	"github.com/planbiir/gprofile/internal/errs"
	"github.com/planbiir/gprofile/internal/profile"
	"github.com/planbiir/gprofile/internal/summary"
)

type Config struct {
	Input       string        `yaml:"input"`
	Output      string        `yaml:"output"`
	MetricsFile string        `yaml:"metrics_file"`
	Profile     ProfileConfig `yaml:"profile"`
	Chart       ChartConfig   `yaml:"chart"`
	Summary     SummaryConfig `yaml:"summary"`
	Log         LogConfig     `yaml:"log"`
}

type ProfileConfig struct {
	Window      int    `yaml:"window"`
	TrackPolicy string `yaml:"track_policy"`
}

type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type SummaryConfig struct {
	GeohashPrecision int `yaml:"geohash_precision"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Profile: ProfileConfig{
			Window:      profile.DefaultWindow,
			TrackPolicy: string(profile.PolicyStrict),
		},
		Chart: ChartConfig{
			Width:  chart.DefaultWidth,
			Height: chart.DefaultHeight,
		},
		Summary: SummaryConfig{
			GeohashPrecision: summary.DefaultGeohashPrecision,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.IO("read config", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errs.InvalidParameter("load config", "%s: %v", path, err)
	}

	return cfg, nil
}

// Validate rejects values that would fail later in the pipeline.
func (c Config) Validate() error {
	if err := c.ProfileConfig().Validate(); err != nil {
		return err
	}
	if c.Chart.Width <= 0 || c.Chart.Height < 2 {
		return errs.InvalidParameter("config", "chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Summary.GeohashPrecision < 1 || c.Summary.GeohashPrecision > 12 {
		return errs.InvalidParameter("config", "summary.geohash_precision must be 1..12, got %d", c.Summary.GeohashPrecision)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errs.InvalidParameter("config", "log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ProfileConfig converts the profile section.
func (c Config) ProfileConfig() profile.Config {
	return profile.Config{
		Window:      c.Profile.Window,
		TrackPolicy: profile.TrackPolicy(strings.ToLower(c.Profile.TrackPolicy)),
	}
}

// ChartOptions converts the chart section.
func (c Config) ChartOptions() chart.Options {
	opts := chart.DefaultOptions()
	opts.Width = c.Chart.Width
	opts.Height = c.Chart.Height
	return opts
}

func (c Config) String() string {
	return fmt.Sprintf("window=%d track_policy=%s chart=%dx%d",
		c.Profile.Window, c.Profile.TrackPolicy, c.Chart.Width, c.Chart.Height)
}

// Package metrics records run metrics for a single profile render and writes
// them in the Prometheus textfile format (node_exporter textfile collector).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/planbiir/gprofile/internal/errs"
	"github.com/planbiir/gprofile/internal/profile"
)

// Recorder holds the gauges of one run.
type Recorder struct {
	registry *prometheus.Registry

	Points           prometheus.Gauge
	DistanceMeters   prometheus.Gauge
	DurationSeconds  prometheus.Gauge
	Window           prometheus.Gauge
	NonPositiveDelta prometheus.Gauge
	SpeedSource      *prometheus.GaugeVec
	StageSeconds     *prometheus.GaugeVec
	LastSuccess      prometheus.Gauge
}

// NewRecorder registers the gauges on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		Points: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_points",
			Help: "Number of samples in the profiled segment.",
		}),
		DistanceMeters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_distance_meters",
			Help: "Great-circle length of the profiled segment.",
		}),
		DurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_track_duration_seconds",
			Help: "Time between the first and last sample.",
		}),
		Window: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_smoothing_window",
			Help: "Moving average window in samples.",
		}),
		NonPositiveDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_non_positive_intervals",
			Help: "Samples with a zero or negative time delta.",
		}),
		SpeedSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gprofile_speed_source",
			Help: "1 for the source used for the speed series.",
		}, []string{"source"}),
		StageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gprofile_stage_duration_seconds",
			Help: "Wall time per pipeline stage.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gprofile_last_success_timestamp_seconds",
			Help: "Unix time of the last successful render.",
		}),
	}

	reg.MustRegister(
		r.Points,
		r.DistanceMeters,
		r.DurationSeconds,
		r.Window,
		r.NonPositiveDelta,
		r.SpeedSource,
		r.StageSeconds,
		r.LastSuccess,
	)

	return r
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

// ObserveProfile copies profile statistics into the gauges.
func (r *Recorder) ObserveProfile(p *profile.Profile) {
	r.Points.Set(float64(p.Stats.Points))
	r.DistanceMeters.Set(p.Stats.DistanceMeters)
	r.DurationSeconds.Set(p.Stats.Duration.Seconds())
	r.Window.Set(float64(p.Window))
	r.NonPositiveDelta.Set(float64(p.Stats.NonPositiveIntervals))

	for _, src := range []profile.SpeedSource{profile.SpeedRecorded, profile.SpeedDerived} {
		v := 0.0
		if src == p.SpeedSource {
			v = 1
		}
		r.SpeedSource.WithLabelValues(string(src)).Set(v)
	}
}

// MarkSuccess stamps the last successful render time.
func (r *Recorder) MarkSuccess(now time.Time) {
	r.LastSuccess.Set(float64(now.Unix()))
}

// WriteFile writes all gauges to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errs.IO("write metrics", path, err)
	}
	return nil
}

// Package summary computes an independent overview of the profiled segment
// with gpxgo, used to cross-check the profile statistics.
package summary

import (
	"github.com/mmcloughlin/geohash"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/gprofile/internal/errs"
)

// DefaultGeohashPrecision gives cells of roughly 150 m.
const DefaultGeohashPrecision = 7

// Summary describes the first segment of one track.
type Summary struct {
	TrackName       string  `json:"track_name"`
	Points          int     `json:"points"`
	Length2DMeters  float64 `json:"length_2d_m"`
	DurationSeconds float64 `json:"duration_s"`
	UphillMeters    float64 `json:"uphill_m"`
	DownhillMeters  float64 `json:"downhill_m"`
	StartGeohash    string  `json:"start_geohash"`
	EndGeohash      string  `json:"end_geohash"`
}

// FromBytes parses data with gpxgo and summarises the first segment of
// track trackIndex.
func FromBytes(data []byte, trackIndex int, precision int) (*Summary, error) {
	if precision <= 0 || precision > 12 {
		return nil, errs.InvalidParameter("summary", "geohash precision must be 1..12, got %d", precision)
	}

	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindStructure, Op: "summary", Index: -1, Msg: "gpxgo parse", Err: err}
	}

	if trackIndex < 0 || trackIndex >= len(g.Tracks) {
		return nil, errs.Structure("summary", "track %d not found, document has %d", trackIndex, len(g.Tracks))
	}
	track := g.Tracks[trackIndex]
	if len(track.Segments) == 0 || len(track.Segments[0].Points) == 0 {
		return nil, errs.Structure("summary", "track %d has no points", trackIndex)
	}

	seg := &track.Segments[0]
	updown := seg.UphillDownhill()
	first, last := seg.Points[0], seg.Points[len(seg.Points)-1]

	return &Summary{
		TrackName:       track.Name,
		Points:          len(seg.Points),
		Length2DMeters:  seg.Length2D(),
		DurationSeconds: seg.Duration(),
		UphillMeters:    updown.Uphill,
		DownhillMeters:  updown.Downhill,
		StartGeohash:    geohash.EncodeWithPrecision(first.Latitude, first.Longitude, uint(precision)),
		EndGeohash:      geohash.EncodeWithPrecision(last.Latitude, last.Longitude, uint(precision)),
	}, nil
}

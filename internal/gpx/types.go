package gpx

import (
	"encoding/xml"
	"time"

	"github.com/planbiir/gprofile/internal/geo"
)

// RawXML keeps the inner XML of an element verbatim so that vendor
// extensions (Garmin, Strava, etc.) can be inspected after decoding.
type RawXML []byte

func (r *RawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type inner struct {
		Content string `xml:",innerxml"`
	}

	var data inner
	if err := d.DecodeElement(&data, &start); err != nil {
		return err
	}

	if len(data.Content) == 0 {
		*r = nil
		return nil
	}

	*r = append((*r)[:0], data.Content...)
	return nil
}

// TrackPoint is one GPS sample. Optional values are nil when the file does
// not carry them.
type TrackPoint struct {
	Lat       float64
	Lon       float64
	Elevation *float64   // meters
	Time      *time.Time // UTC
	Speed     *float64   // m/s
}

// Position returns the point's coordinates.
func (p TrackPoint) Position() geo.Position {
	return geo.Position{Lat: p.Lat, Lon: p.Lon}
}

// Segment is a time-ordered run of points.
type Segment struct {
	Points []TrackPoint
}

// Track is one recorded route.
type Track struct {
	Name     string
	Segments []Segment
}

// Document is a decoded GPX file.
type Document struct {
	Version string
	Creator string
	Name    string // metadata name, GPX 1.1 <metadata><name> or GPX 1.0 <name>
	Tracks  []Track
}

// wire types

type xmlPoint struct {
	Lat        float64  `xml:"lat,attr"`
	Lon        float64  `xml:"lon,attr"`
	Elevation  *float64 `xml:"ele"`
	Time       string   `xml:"time"`
	Speed      *float64 `xml:"speed"` // GPX 1.0
	Extensions RawXML   `xml:"extensions"`
}

type xmlSegment struct {
	Points []xmlPoint `xml:"trkpt"`
}

type xmlTrack struct {
	Name     string       `xml:"name"`
	Segments []xmlSegment `xml:"trkseg"`
}

type xmlMetadata struct {
	Name string `xml:"name"`
}

type xmlGPX struct {
	XMLName  xml.Name    `xml:"gpx"`
	Version  string      `xml:"version,attr"`
	Creator  string      `xml:"creator,attr"`
	Name     string      `xml:"name"`
	Metadata xmlMetadata `xml:"metadata"`
	Tracks   []xmlTrack  `xml:"trk"`
}

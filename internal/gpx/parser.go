package gpx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/planbiir/gprofile/internal/errs"
)

// Parse reads and decodes a GPX file.
func Parse(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errs.IO("open gpx", filename, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return ParseReader(file)
}

// ReadFile returns the raw bytes of a GPX file along with its decoded form,
// for callers that want to hand the same input to another reader.
func ReadFile(filename string) ([]byte, *Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, errs.IO("read gpx", filename, err)
	}

	doc, err := ParseBytes(data)
	if err != nil {
		return nil, nil, err
	}
	return data, doc, nil
}

// ParseBytes decodes GPX from memory.
func ParseBytes(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader decodes GPX from an io.Reader.
func ParseReader(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var raw xmlGPX
	if err := decoder.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, errs.Structure("parse gpx", "empty document")
		}
		return nil, &errs.Error{Kind: errs.KindStructure, Op: "parse gpx", Index: -1, Msg: "malformed GPX", Err: err}
	}

	doc := &Document{
		Version: raw.Version,
		Creator: raw.Creator,
		Name:    strings.TrimSpace(raw.Metadata.Name),
		Tracks:  make([]Track, 0, len(raw.Tracks)),
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSpace(raw.Name)
	}

	for trackIdx, rt := range raw.Tracks {
		track := Track{
			Name:     strings.TrimSpace(rt.Name),
			Segments: make([]Segment, 0, len(rt.Segments)),
		}
		for segIdx, rs := range rt.Segments {
			seg := Segment{Points: make([]TrackPoint, 0, len(rs.Points))}
			for ptIdx, rp := range rs.Points {
				p, err := convertPoint(rp)
				if err != nil {
					return nil, errs.Structure("parse gpx",
						"track %d segment %d point %d: %v", trackIdx, segIdx, ptIdx, err)
				}
				seg.Points = append(seg.Points, p)
			}
			track.Segments = append(track.Segments, seg)
		}
		doc.Tracks = append(doc.Tracks, track)
	}

	return doc, nil
}

func convertPoint(rp xmlPoint) (TrackPoint, error) {
	p := TrackPoint{
		Lat:       rp.Lat,
		Lon:       rp.Lon,
		Elevation: rp.Elevation,
		Speed:     rp.Speed,
	}
	if err := p.Position().Validate(); err != nil {
		return TrackPoint{}, err
	}

	if s := strings.TrimSpace(rp.Time); s != "" {
		ts, err := parseTime(s)
		if err != nil {
			return TrackPoint{}, err
		}
		p.Time = &ts
	}

	if p.Speed == nil && len(rp.Extensions) > 0 {
		speed, ok, err := extensionSpeed(rp.Extensions)
		if err != nil {
			return TrackPoint{}, err
		}
		if ok {
			p.Speed = &speed
		}
	}

	return p, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// parseTime accepts the timestamp variants emitted by common GPS devices.
// Timestamps without a zone are taken as UTC.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// extensionSpeed looks for the first element named "speed" inside an
// <extensions> block, whatever its namespace (gpxtpx:speed, ns3:speed, speed).
func extensionSpeed(raw RawXML) (float64, bool, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	// Prefixes declared on the <gpx> root are unknown here.
	decoder.Strict = false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("extensions: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "speed") {
			continue
		}

		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return 0, false, fmt.Errorf("extensions speed: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, false, fmt.Errorf("extensions speed %q: %w", text, err)
		}
		return v, true, nil
	}
}

// Stats returns basic counts for the document.
func (d *Document) Stats() (trackCount, segmentCount, pointCount int) {
	trackCount = len(d.Tracks)
	for _, track := range d.Tracks {
		segmentCount += len(track.Segments)
		for _, seg := range track.Segments {
			pointCount += len(seg.Points)
		}
	}
	return
}

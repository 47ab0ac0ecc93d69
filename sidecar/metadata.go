package sidecar

import (
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"sar-stac/footprint"
)

// Property keys produced by Extract.
const (
	PropPlatform             = "platform"
	PropInstrumentMode       = "sar:instrument_mode"
	PropObservationDirection = "sar:observation_direction"
	PropPolarizations        = "sar:polarizations"
	PropOrbitState           = "sat:orbit_state"
	PropIncidenceAngle       = "view:incidence_angle"
	PropCentroid             = "proj:centroid"
	PropProductName          = "product_name"
)

// Metadata is what a sidecar contributes to a catalog item.
type Metadata struct {
	Properties map[string]interface{}
	Start      time.Time
	End        *time.Time
}

// Fallback is the metadata of an item whose sidecar is missing or unreadable.
func Fallback(now time.Time) Metadata {
	return Metadata{
		Properties: map[string]interface{}{},
		Start:      now,
	}
}

type field struct {
	tag   string
	key   string
	parse func(string) (interface{}, bool)
}

var propertyFields = []field{
	{TagSatelliteName, PropPlatform, textValue},
	{TagAcquisitionMode, PropInstrumentMode, textValue},
	{TagLookSide, PropObservationDirection, lowerValue},
	{TagOrbitDirection, PropOrbitState, lowerValue},
	{TagIncidenceCenter, PropIncidenceAngle, floatValue},
	{TagPolarization, PropPolarizations, listValue},
	{TagProductFile, PropProductName, textValue},
	{TagCoordCenter, PropCentroid, centroidValue},
}

// Extract reads every known tag. Fields that are absent or malformed are left out; now
// stands in for a missing or unparsable acquisition start.
func (d *Document) Extract(now time.Time) Metadata {
	md := Fallback(now)
	for _, f := range propertyFields {
		raw, ok := d.Text(f.tag)
		if !ok {
			continue
		}
		v, ok := f.parse(raw)
		if !ok {
			log.Debugf("Ignoring malformed <%s> %q", f.tag, raw)
			continue
		}
		md.Properties[f.key] = v
	}

	if t, ok := d.timestamp(TagAcquisitionStart); ok {
		md.Start = t
	}
	if t, ok := d.timestamp(TagAcquisitionEnd); ok {
		md.End = &t
	}
	return md
}

func (d *Document) timestamp(tag string) (time.Time, bool) {
	raw, ok := d.Text(tag)
	if !ok {
		return time.Time{}, false
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		log.Debugf("Ignoring malformed <%s> %q", tag, raw)
	}
	return t, ok
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. A trailing Z is dropped and zone-less
// values are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "Z"), "z")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func textValue(s string) (interface{}, bool) {
	return s, true
}

func lowerValue(s string) (interface{}, bool) {
	return strings.ToLower(s), true
}

func floatValue(s string) (interface{}, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func listValue(s string) (interface{}, bool) {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, len(out) > 0
}

func centroidValue(s string) (interface{}, bool) {
	p, ok := footprint.ParseCorner(s)
	if !ok || !footprint.Finite(p) {
		return nil, false
	}
	return map[string]float64{"lat": p[1], "lon": p[0]}, true
}

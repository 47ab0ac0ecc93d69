// Package sidecar reads the XML metadata file that accompanies every SAR product.
//
// Only a fixed set of tags is consulted. Each one is looked up independently as the first
// element of that name at any depth, so a missing or malformed tag never hides the others.
package sidecar

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/spf13/afero"

	"sar-stac/footprint"
)

// Tags read from a product sidecar.
const (
	TagSatelliteName    = "satellite_name"
	TagAcquisitionStart = "acquisition_start_utc"
	TagAcquisitionEnd   = "acquisition_end_utc"
	TagAcquisitionMode  = "acquisition_mode"
	TagLookSide         = "look_side"
	TagOrbitDirection   = "orbit_direction"
	TagIncidenceCenter  = "incidence_center"
	TagPolarization     = "polarization"
	TagProductFile      = "product_file"
	TagCoordCenter      = "coord_center"
	TagCoordFirstFar    = "coord_first_far"
	TagCoordFirstNear   = "coord_first_near"
	TagCoordLastNear    = "coord_last_near"
	TagCoordLastFar     = "coord_last_far"
)

// Extension is the file extension identifying a sidecar.
const Extension = ".xml"

// IsSidecar reports whether name looks like a sidecar file.
func IsSidecar(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// Document is a parsed sidecar.
type Document struct {
	root *xmlquery.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

func ParseFile(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Text returns the trimmed text of the first element named tag. ok is false when the
// element is absent or blank.
func (d *Document) Text(tag string) (string, bool) {
	if d == nil || d.root == nil {
		return "", false
	}
	n := xmlquery.FindOne(d.root, "//"+tag)
	if n == nil {
		return "", false
	}
	text := strings.TrimSpace(n.InnerText())
	return text, text != ""
}

// Corners returns the raw text of the four corner coordinate records.
func (d *Document) Corners() footprint.Corners {
	var c footprint.Corners
	c.FirstFar, _ = d.Text(TagCoordFirstFar)
	c.FirstNear, _ = d.Text(TagCoordFirstNear)
	c.LastNear, _ = d.Text(TagCoordLastNear)
	c.LastFar, _ = d.Text(TagCoordLastFar)
	return c
}

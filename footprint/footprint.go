// Package footprint derives an acquisition's ground footprint from its four corner records.
package footprint

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"sar-stac/util"
)

// Corners holds the raw corner coordinate records of a product. An empty field is a
// missing corner.
type Corners struct {
	FirstFar  string
	FirstNear string
	LastNear  string
	LastFar   string
}

type Footprint struct {
	Polygon orb.Polygon
	Bound   orb.Bound

	// SelfIntersecting is set when the corners, taken in record order, traced a bow-tie.
	// Polygon then holds the convex hull of the corners instead.
	SelfIntersecting bool
}

// ParseCorner reads a whitespace separated coordinate record whose last two tokens are
// latitude and longitude.
func ParseCorner(text string) (orb.Point, bool) {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return orb.Point{}, false
	}
	lat, err := strconv.ParseFloat(tokens[len(tokens)-2], 64)
	if err != nil {
		return orb.Point{}, false
	}
	lon, err := strconv.ParseFloat(tokens[len(tokens)-1], 64)
	if err != nil {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}

// Build returns the footprint traced first-far, first-near, last-near, last-far. It
// returns nil when a corner is missing, unparsable or not finite, or
// when the corners enclose no area.
func Build(c Corners) *Footprint {
	var pts [4]orb.Point
	for i, text := range [4]string{c.FirstFar, c.FirstNear, c.LastNear, c.LastFar} {
		p, ok := ParseCorner(text)
		if !ok {
			return nil
		}
		pts[i] = p
	}

	// Bound comparisons skip NaN, so the corners themselves are checked.
	if !finite(pts[:]) {
		return nil
	}
	ring := orb.Ring{pts[0], pts[1], pts[2], pts[3], pts[0]}
	fp := &Footprint{Bound: ring.Bound()}

	if crosses(pts[0], pts[1], pts[2], pts[3]) || crosses(pts[1], pts[2], pts[3], pts[0]) {
		fp.SelfIntersecting = true
		ring = util.ConvexRing(pts[:])
	}
	if planar.Area(ring) == 0 {
		return nil
	}
	fp.Polygon = orb.Polygon{ring}
	return fp
}

func finite(pts []orb.Point) bool {
	for _, p := range pts {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Finite reports whether p has finite coordinates.
func Finite(p orb.Point) bool {
	return finite([]orb.Point{p})
}

// crosses reports whether segments ab and cd properly intersect.
func crosses(a, b, c, d orb.Point) bool {
	d1, d2 := side(c, d, a), side(c, d, b)
	d3, d4 := side(a, b, c), side(a, b, d)
	return opposite(d1, d2) && opposite(d3, d4)
}

func side(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func opposite(x, y float64) bool {
	return (x > 0 && y < 0) || (x < 0 && y > 0)
}

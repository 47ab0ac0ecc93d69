package util

import (
	"github.com/paulmach/orb"

	hull "github.com/furstenheim/go-convex-hull-2d"
)

type coordinates []orb.Point

func (c coordinates) Take(i int) (x, y float64) {
	return c[i][0], c[i][1]
}

func (c coordinates) Len() int {
	return len(c)
}

func (c coordinates) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

func (c coordinates) Slice(i, j int) hull.Interface {
	return c[i:j]
}

func toOuterRing(p orb.Polygon) coordinates {
	if len(p) == 0 {
		return coordinates{}
	}
	return coordinates(p[0])
}

// ConvexRing returns the closed, counter-clockwise convex hull of points.
// The input slice is left untouched.
func ConvexRing(points []orb.Point) orb.Ring {
	c := make(coordinates, len(points))
	copy(c, points)
	h := hull.New(c)

	var ring orb.Ring
	for i := 0; i < h.Len(); i++ {
		x, y := h.Take(i)
		ring = append(ring, orb.Point{x, y})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return ring
}

// PolyUnion approximates the union of two footprints by the convex hull of their outer rings.
func PolyUnion(p1, p2 orb.Polygon) orb.Polygon {
	var c coordinates
	c = append(c, toOuterRing(p1)...)
	c = append(c, toOuterRing(p2)...)
	if len(c) == 0 {
		return nil
	}
	return orb.Polygon{ConvexRing(c)}
}

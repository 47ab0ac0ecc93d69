package util

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundUnion returns the smallest bound covering every finite input.
// ok is false when no input qualified.
func BoundUnion(bounds ...orb.Bound) (union orb.Bound, ok bool) {
	for _, b := range bounds {
		if !finiteBound(b) {
			continue
		}
		if !ok {
			union, ok = b, true
			continue
		}
		union = union.Union(b)
	}
	return union, ok
}

func finiteBound(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

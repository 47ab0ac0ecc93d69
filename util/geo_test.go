package util

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundUnion(t *testing.T) {
	a := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	b := orb.Bound{Min: orb.Point{-2, 0.5}, Max: orb.Point{0.5, 3}}
	bad := orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{9, 9}}

	u, ok := BoundUnion(a, bad, b)
	assert.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{-2, 0}, Max: orb.Point{1, 3}}, u)

	_, ok = BoundUnion()
	assert.False(t, ok)
	_, ok = BoundUnion(bad)
	assert.False(t, ok)
}

func TestConvexRing(t *testing.T) {
	pts := []orb.Point{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {1, 1}}
	orig := append([]orb.Point(nil), pts...)

	ring := ConvexRing(pts)

	assert.Equal(t, orig, pts)
	require.Len(t, ring, 5)
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.CCW, ring.Orientation())
	assert.ElementsMatch(t, []orb.Point{{0, 0}, {2, 2}, {2, 0}, {0, 2}}, []orb.Point(ring[:4]))
}

func TestPolyUnion(t *testing.T) {
	p1 := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	p2 := orb.Polygon{orb.Ring{{2, 0}, {3, 0}, {3, 1}, {2, 1}, {2, 0}}}

	u := PolyUnion(p1, p2)

	require.Len(t, u, 1)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 1}}, u.Bound())
	assert.True(t, u[0].Closed())

	assert.Nil(t, PolyUnion(nil, nil))
	assert.Equal(t, p1.Bound(), PolyUnion(p1, nil).Bound())
}

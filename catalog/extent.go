package catalog

import (
	"time"

	"github.com/paulmach/orb"

	"sar-stac/util"
)

// Extent is a collection's spatial and temporal coverage. A nil End is open-ended.
type Extent struct {
	Spatial orb.Bound
	Start   time.Time
	End     *time.Time
}

// PlaceholderExtent covers the whole globe from 2020 onwards.
func PlaceholderExtent() Extent {
	return Extent{
		Spatial: orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}},
		Start:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// UpdateExtent recomputes the extent from the collection's items: the union of their
// bounding boxes and the span from the earliest start to the latest end. Items without a
// bounding box only count towards the temporal extent. Without items nothing changes.
func (c *Collection) UpdateExtent() {
	if len(c.items) == 0 {
		return
	}

	var bounds []orb.Bound
	start, end := c.items[0].Start, c.items[0].Latest()
	for _, it := range c.items {
		if it.BBox != nil {
			bounds = append(bounds, *it.BBox)
		}
		if it.Start.Before(start) {
			start = it.Start
		}
		if l := it.Latest(); l.After(end) {
			end = l
		}
	}

	if b, ok := util.BoundUnion(bounds...); ok {
		c.Extent.Spatial = b
	}
	c.Extent.Start = start
	c.Extent.End = &end
}

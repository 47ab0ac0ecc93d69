// Package catalog assembles product folders into a Catalog -> Collection -> Item graph
// and writes it out as a self-contained STAC tree.
package catalog

import (
	"strings"
	"time"

	"github.com/paulmach/orb"

	"sar-stac/assets"
	"sar-stac/footprint"
	"sar-stac/sidecar"
)

const StacVersion = "1.0.0"

// Extension schemas, attached to an item when it has a property with the prefix.
var extensionSchemas = []struct {
	prefix string
	uri    string
}{
	{"sar:", "https://stac-extensions.github.io/sar/v1.0.0/schema.json"},
	{"sat:", "https://stac-extensions.github.io/sat/v1.0.0/schema.json"},
	{"view:", "https://stac-extensions.github.io/view/v1.0.0/schema.json"},
	{"proj:", "https://stac-extensions.github.io/projection/v1.1.0/schema.json"},
}

// Catalog is the root of the graph. Collections keep the order in which they were
// first requested.
type Catalog struct {
	ID          string
	Title       string
	Description string

	collections []*Collection
	byID        map[string]*Collection
}

func New(id, description string) *Catalog {
	return &Catalog{
		ID:          id,
		Description: description,
		byID:        make(map[string]*Collection),
	}
}

// CollectionFor returns the collection with id, creating it with a placeholder extent
// on first use. created reports whether it was just made.
func (c *Catalog) CollectionFor(id string) (col *Collection, created bool) {
	if col, ok := c.byID[id]; ok {
		return col, false
	}
	col = NewCollection(id, "Imagens da coleção "+id+".")
	c.add(col)
	return col, true
}

func (c *Catalog) add(col *Collection) {
	if c.byID == nil {
		c.byID = make(map[string]*Collection)
	}
	c.collections = append(c.collections, col)
	c.byID[col.ID] = col
}

func (c *Catalog) Collection(id string) (*Collection, bool) {
	col, ok := c.byID[id]
	return col, ok
}

func (c *Catalog) Collections() []*Collection {
	return append([]*Collection(nil), c.collections...)
}

// Item looks an item up across all collections.
func (c *Catalog) Item(id string) (*Item, bool) {
	for _, col := range c.collections {
		if it, ok := col.Item(id); ok {
			return it, true
		}
	}
	return nil, false
}

type Collection struct {
	ID          string
	Title       string
	Description string
	License     string
	Extent      Extent

	items []*Item
	byID  map[string]*Item
}

func NewCollection(id, description string) *Collection {
	return &Collection{
		ID:          id,
		Description: description,
		License:     "proprietary",
		Extent:      PlaceholderExtent(),
		byID:        make(map[string]*Item),
	}
}

// AddItem attaches it to the collection. An item whose id is already present is refused.
func (c *Collection) AddItem(it *Item) bool {
	if c.byID == nil {
		c.byID = make(map[string]*Item)
	}
	if _, taken := c.byID[it.ID]; taken {
		return false
	}
	it.Collection = c.ID
	c.items = append(c.items, it)
	c.byID[it.ID] = it
	return true
}

func (c *Collection) Item(id string) (*Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

func (c *Collection) Items() []*Item {
	return append([]*Item(nil), c.items...)
}

// Item is the record of one acquisition. Geometry and BBox are either both set or both nil.
type Item struct {
	ID         string
	Collection string
	Geometry   orb.Polygon
	BBox       *orb.Bound
	Start      time.Time
	End        *time.Time
	Platform   string
	Properties map[string]interface{}
	Extensions []string
	Assets     *assets.Set
}

func NewItem(id string, start time.Time) *Item {
	return &Item{
		ID:         id,
		Start:      start,
		Properties: make(map[string]interface{}),
		Assets:     assets.NewSet(),
	}
}

// ApplyMetadata takes over the sidecar's datetimes and properties. The platform moves
// out of the property map into the item's common metadata.
func (it *Item) ApplyMetadata(md sidecar.Metadata) {
	it.Start = md.Start
	it.End = md.End
	for k, v := range md.Properties {
		it.Properties[k] = v
	}
	if p, ok := it.Properties[sidecar.PropPlatform].(string); ok {
		it.Platform = p
		delete(it.Properties, sidecar.PropPlatform)
	}
}

func (it *Item) SetFootprint(fp *footprint.Footprint) {
	if fp == nil {
		it.Geometry, it.BBox = nil, nil
		return
	}
	b := fp.Bound
	it.Geometry, it.BBox = fp.Polygon, &b
}

// Latest is the end of the acquisition, or its start when no end is known.
func (it *Item) Latest() time.Time {
	if it.End != nil {
		return *it.End
	}
	return it.Start
}

// AttachExtensions records the extension schemas the item's properties call for.
func (it *Item) AttachExtensions() {
	it.Extensions = it.Extensions[:0]
	for _, ext := range extensionSchemas {
		for k := range it.Properties {
			if strings.HasPrefix(k, ext.prefix) {
				it.Extensions = append(it.Extensions, ext.uri)
				break
			}
		}
	}
}

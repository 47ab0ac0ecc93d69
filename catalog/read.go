package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/afero"

	"sar-stac/sidecar"
)

// Read loads a catalog written by Save, following its child and item links.
func Read(fs afero.Fs, dir string) (*Catalog, error) {
	var doc catalogDoc
	if err := readJSON(fs, filepath.Join(dir, CatalogFile), &doc); err != nil {
		return nil, err
	}

	cat := New(doc.ID, doc.Description)
	cat.Title = doc.Title
	for _, l := range doc.Links {
		if l.Rel != "child" {
			continue
		}
		col, err := readCollection(fs, resolve(dir, l.Href))
		if err != nil {
			return nil, err
		}
		cat.add(col)
	}
	return cat, nil
}

func readCollection(fs afero.Fs, file string) (*Collection, error) {
	var doc collectionDoc
	if err := readJSON(fs, file, &doc); err != nil {
		return nil, err
	}

	col := NewCollection(doc.ID, doc.Description)
	col.Title = doc.Title
	col.License = doc.License
	if ext, ok := decodeExtent(doc.Extent); ok {
		col.Extent = ext
	}

	dir := filepath.Dir(file)
	for _, l := range doc.Links {
		if l.Rel != "item" {
			continue
		}
		it, err := readItem(fs, resolve(dir, l.Href))
		if err != nil {
			return nil, err
		}
		col.AddItem(it)
	}
	return col, nil
}

func readItem(fs afero.Fs, file string) (*Item, error) {
	var doc itemDoc
	if err := readJSON(fs, file, &doc); err != nil {
		return nil, err
	}

	it := NewItem(doc.ID, time.Time{})
	for k, v := range doc.Properties {
		it.Properties[k] = v
	}
	if s, ok := it.Properties["datetime"].(string); ok {
		it.Start, _ = time.Parse(time.RFC3339Nano, s)
	}
	if s, ok := it.Properties["end_datetime"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			it.End = &t
		}
	}
	if p, ok := it.Properties[sidecar.PropPlatform].(string); ok {
		it.Platform = p
	}
	for _, k := range []string{"datetime", "start_datetime", "end_datetime", sidecar.PropPlatform} {
		delete(it.Properties, k)
	}

	if doc.Geometry != nil && len(doc.BBox) == 4 {
		if poly, ok := doc.Geometry.Geometry().(orb.Polygon); ok {
			b := orb.Bound{Min: orb.Point{doc.BBox[0], doc.BBox[1]}, Max: orb.Point{doc.BBox[2], doc.BBox[3]}}
			it.Geometry, it.BBox = poly, &b
		}
	}
	if doc.Assets != nil {
		it.Assets = doc.Assets
	}
	it.Extensions = doc.Extensions
	return it, nil
}

func decodeExtent(doc extentDoc) (Extent, bool) {
	if len(doc.Spatial.BBox) == 0 || len(doc.Spatial.BBox[0]) != 4 {
		return Extent{}, false
	}
	if len(doc.Temporal.Interval) == 0 || len(doc.Temporal.Interval[0]) != 2 || doc.Temporal.Interval[0][0] == nil {
		return Extent{}, false
	}
	b := doc.Spatial.BBox[0]
	e := Extent{Spatial: orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}}

	var err error
	if e.Start, err = time.Parse(time.RFC3339Nano, *doc.Temporal.Interval[0][0]); err != nil {
		return Extent{}, false
	}
	if s := doc.Temporal.Interval[0][1]; s != nil {
		end, err := time.Parse(time.RFC3339Nano, *s)
		if err != nil {
			return Extent{}, false
		}
		e.End = &end
	}
	return e, true
}

// resolve joins a relative link onto the directory of the document holding it.
// Id segments in the link are percent-escaped.
func resolve(dir, href string) string {
	if p, err := url.PathUnescape(href); err == nil {
		href = p
	}
	return filepath.Join(dir, filepath.FromSlash(path.Clean(href)))
}

func readJSON(fs afero.Fs, file string, v interface{}) error {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}
	return nil
}

package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"

	"sar-stac/assets"
)

// File names of the written documents.
const (
	CatalogFile    = "catalog.json"
	CollectionFile = "collection.json"
)

const mediaJSON = "application/json"
const mediaGeoJSON = "application/geo+json"

type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type catalogDoc struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

type spatialDoc struct {
	BBox [][]float64 `json:"bbox"`
}

type temporalDoc struct {
	Interval [][]*string `json:"interval"`
}

type extentDoc struct {
	Spatial  spatialDoc  `json:"spatial"`
	Temporal temporalDoc `json:"temporal"`
}

type collectionDoc struct {
	Type        string    `json:"type"`
	StacVersion string    `json:"stac_version"`
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description"`
	License     string    `json:"license"`
	Extent      extentDoc `json:"extent"`
	Links       []Link    `json:"links"`
}

type itemDoc struct {
	Type        string                 `json:"type"`
	StacVersion string                 `json:"stac_version"`
	Extensions  []string               `json:"stac_extensions"`
	ID          string                 `json:"id"`
	Geometry    *geojson.Geometry      `json:"geometry"`
	BBox        []float64              `json:"bbox,omitempty"`
	Properties  map[string]interface{} `json:"properties"`
	Links       []Link                 `json:"links"`
	Assets      *assets.Set            `json:"assets"`
	Collection  string                 `json:"collection,omitempty"`
}

// Save writes cat below dir, replacing whatever dir held before:
//
//	dir/catalog.json
//	dir/<collection>/collection.json
//	dir/<collection>/<item>/<item>.json
//
// Links between documents are relative, so the tree can be moved as a whole.
func Save(fs afero.Fs, cat *Catalog, dir string) error {
	if err := fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}

	root := &catalogDoc{
		Type:        "Catalog",
		StacVersion: StacVersion,
		ID:          cat.ID,
		Title:       cat.Title,
		Description: cat.Description,
		Links: []Link{
			{Rel: "root", Href: "./" + CatalogFile, Type: mediaJSON},
			{Rel: "self", Href: "./" + CatalogFile, Type: mediaJSON},
		},
	}

	written := 0
	for _, col := range cat.Collections() {
		root.Links = append(root.Links, Link{
			Rel: "child", Href: "./" + url.PathEscape(col.ID) + "/" + CollectionFile, Type: mediaJSON, Title: col.Title,
		})
		n, err := saveCollection(fs, col, filepath.Join(dir, col.ID))
		if err != nil {
			return err
		}
		written += n
	}

	if err := writeJSON(fs, filepath.Join(dir, CatalogFile), root); err != nil {
		return err
	}
	log.Infof("Saved catalog %q to %q: %d collections, %d items", cat.ID, dir, len(cat.Collections()), written)
	return nil
}

func saveCollection(fs afero.Fs, col *Collection, dir string) (int, error) {
	doc := &collectionDoc{
		Type:        "Collection",
		StacVersion: StacVersion,
		ID:          col.ID,
		Title:       col.Title,
		Description: col.Description,
		License:     col.License,
		Extent:      encodeExtent(col.Extent),
		Links: []Link{
			{Rel: "root", Href: "../" + CatalogFile, Type: mediaJSON},
			{Rel: "parent", Href: "../" + CatalogFile, Type: mediaJSON},
			{Rel: "self", Href: "./" + CollectionFile, Type: mediaJSON},
		},
	}

	items := col.Items()
	for _, it := range items {
		doc.Links = append(doc.Links, Link{
			Rel: "item", Href: "./" + url.PathEscape(it.ID) + "/" + url.PathEscape(it.ID) + ".json", Type: mediaGeoJSON,
		})
		if err := writeJSON(fs, filepath.Join(dir, it.ID, it.ID+".json"), encodeItem(it)); err != nil {
			return 0, err
		}
	}
	if err := writeJSON(fs, filepath.Join(dir, CollectionFile), doc); err != nil {
		return 0, err
	}
	return len(items), nil
}

func encodeExtent(e Extent) extentDoc {
	start := formatTime(e.Start)
	var end *string
	if e.End != nil {
		s := formatTime(*e.End)
		end = &s
	}
	return extentDoc{
		Spatial:  spatialDoc{BBox: [][]float64{boundSlice(e.Spatial)}},
		Temporal: temporalDoc{Interval: [][]*string{{&start, end}}},
	}
}

func encodeItem(it *Item) *itemDoc {
	props := make(map[string]interface{}, len(it.Properties)+4)
	for k, v := range it.Properties {
		props[k] = v
	}
	props["datetime"] = formatTime(it.Start)
	if it.End != nil {
		props["start_datetime"] = formatTime(it.Start)
		props["end_datetime"] = formatTime(*it.End)
	}
	if it.Platform != "" {
		props["platform"] = it.Platform
	}

	doc := &itemDoc{
		Type:        "Feature",
		StacVersion: StacVersion,
		Extensions:  append([]string{}, it.Extensions...),
		ID:          it.ID,
		Properties:  props,
		Links: []Link{
			{Rel: "root", Href: "../../" + CatalogFile, Type: mediaJSON},
			{Rel: "parent", Href: "../" + CollectionFile, Type: mediaJSON},
			{Rel: "collection", Href: "../" + CollectionFile, Type: mediaJSON},
			{Rel: "self", Href: "./" + url.PathEscape(it.ID) + ".json", Type: mediaGeoJSON},
		},
		Assets:     it.Assets,
		Collection: it.Collection,
	}
	if it.Geometry != nil && it.BBox != nil {
		doc.Geometry = geojson.NewGeometry(it.Geometry)
		doc.BBox = boundSlice(*it.BBox)
	}
	if doc.Assets == nil {
		doc.Assets = assets.NewSet()
	}
	return doc
}

func boundSlice(b orb.Bound) []float64 {
	return []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSON(fs afero.Fs, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

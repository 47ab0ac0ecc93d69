package catalog

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"

	"sar-stac/assets"
	"sar-stac/footprint"
	"sar-stac/raster"
	"sar-stac/sidecar"
	"sar-stac/walk"
)

const PropShape = "proj:shape"

type Assembler struct {
	Fs afero.Fs

	// Root is the organized tree; the first path segment below it names the collection.
	Root string
	// ImagesRoot is the directory asset hrefs are made relative to. Defaults to Root.
	ImagesRoot string
	// ImagesURL is the published URL of ImagesRoot.
	ImagesURL string
	// ProductFilter restricts primary rasters to names containing it, case-insensitively.
	ProductFilter string

	Now func() time.Time
}

// Stats counts the outcome of one assembly.
type Stats struct {
	Items      int
	Duplicates int
	Errors     int
}

// Assemble walks Root top-down and adds an item to cat for every directory holding a
// primary raster. A directory that fails is logged and skipped.
func (a *Assembler) Assemble(cat *Catalog) (Stats, error) {
	var stats Stats
	log.Infof("Building catalog %q from %q", cat.ID, a.Root)

	err := walk.PreOrder(a.Fs, a.Root, func(dir string, entries []os.FileInfo) error {
		if filepath.Clean(dir) == filepath.Clean(a.Root) {
			return nil
		}
		files := walk.Files(entries)
		primary := a.primaryRaster(files)
		if primary == "" {
			log.Debugf("No matching raster in %q, skipping", dir)
			return nil
		}

		colID, err := a.collectionID(dir)
		if err != nil {
			stats.Errors++
			log.Errorf("Failed to place %q: %v", dir, err)
			return nil
		}
		it, err := a.buildItem(dir, primary, files)
		if err != nil {
			stats.Errors++
			log.Errorf("Failed to build item from %q: %v", dir, err)
			return nil
		}

		col, created := cat.CollectionFor(colID)
		if created {
			log.Infof("Creating collection %q", colID)
		}
		if !col.AddItem(it) {
			stats.Duplicates++
			log.Warnf("Item %q already in collection %q, dropping %q", it.ID, colID, dir)
			return nil
		}
		stats.Items++
		log.Infof("Added item %q to %q with %d assets", it.ID, colID, it.Assets.Len())
		return nil
	})
	if err != nil {
		return stats, err
	}

	for _, col := range cat.Collections() {
		col.UpdateExtent()
		log.Debugf("Collection %q extent %v", col.ID, col.Extent.Spatial)
	}
	log.Infof("Catalog built: %d items in %d collections, %d duplicates, %d errors",
		stats.Items, len(cat.Collections()), stats.Duplicates, stats.Errors)
	return stats, nil
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *Assembler) primaryRaster(files []string) string {
	filter := strings.ToUpper(a.ProductFilter)
	for _, name := range files {
		if assets.IsRaster(name) && strings.Contains(strings.ToUpper(name), filter) {
			return name
		}
	}
	return ""
}

func (a *Assembler) collectionID(dir string) (string, error) {
	rel, err := filepath.Rel(a.Root, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not below %s", dir, a.Root)
	}
	return strings.SplitN(rel, "/", 2)[0], nil
}

func (a *Assembler) buildItem(dir, primary string, files []string) (*Item, error) {
	base := strings.TrimSuffix(primary, filepath.Ext(primary))
	it := NewItem(base, a.now())

	if name := firstSidecar(files); name != "" {
		a.applySidecar(it, filepath.Join(dir, name))
	} else {
		log.Warnf("No sidecar next to %q", primary)
	}

	if shape, err := raster.Shape(a.Fs, filepath.Join(dir, primary)); err == nil {
		it.Properties[PropShape] = []int{shape[0], shape[1]}
	} else {
		log.Debugf("No raster shape for %q: %v", primary, err)
	}

	for _, name := range files {
		href, err := a.href(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		key, mediaType, roles := assets.Classify(name, base)
		asset := assets.Asset{Href: href, Title: name, MediaType: mediaType, Roles: roles}
		if !it.Assets.Add(key, asset) {
			log.Infof("Asset %q of %q already registered, dropping %q", key, it.ID, name)
		}
	}

	it.AttachExtensions()
	return it, nil
}

func (a *Assembler) applySidecar(it *Item, path string) {
	doc, err := sidecar.ParseFile(a.Fs, path)
	if err != nil {
		log.Errorf("Unreadable sidecar, %q keeps default metadata: %v", it.ID, err)
		return
	}

	md := doc.Extract(it.Start)
	log.Debugf("Metadata of %q: %s", it.ID, spew.Sdump(md))
	it.ApplyMetadata(md)

	fp := footprint.Build(doc.Corners())
	switch {
	case fp == nil:
		log.Warnf("No usable footprint in %q, %q has no geometry", path, it.ID)
	case fp.SelfIntersecting:
		log.Warnf("Corners of %q trace a self-intersecting ring, using their convex hull", it.ID)
	}
	it.SetFootprint(fp)
}

func (a *Assembler) href(path string) (string, error) {
	root := a.ImagesRoot
	if root == "" {
		root = a.Root
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(a.ImagesURL, "/") + "/" + strings.Join(segments, "/"), nil
}

func firstSidecar(files []string) string {
	for _, name := range files {
		if sidecar.IsSidecar(name) {
			return name
		}
	}
	return ""
}

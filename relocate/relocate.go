// Package relocate moves product folders into a tree partitioned by satellite.
package relocate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"

	"sar-stac/sidecar"
	"sar-stac/walk"
)

var ErrDestinationExists = errors.New("destination already exists")

// ResolveFunc returns the sanitized satellite name recorded in a sidecar.
type ResolveFunc func(fs afero.Fs, sidecarPath string) (string, error)

type Relocator struct {
	Fs      afero.Fs
	Resolve ResolveFunc
}

// Result counts the outcome of one run. Skipped covers unresolved satellites,
// destination collisions and failed moves alike.
type Result struct {
	Moved   int
	Skipped int
}

func New(fs afero.Fs) *Relocator {
	return &Relocator{
		Fs:      fs,
		Resolve: sidecar.ResolveSatellite,
	}
}

// Relocate moves every product folder under sourceRoot to
// destRoot/<satellite>/<path relative to sourceRoot>. A product folder is any directory
// holding a sidecar. Folders are handled deepest first, so a nested product folder has
// already left its parent by the time the parent is looked at. Existing destinations are
// never overwritten or merged.
func (r *Relocator) Relocate(sourceRoot, destRoot string) (Result, error) {
	var res Result
	if filepath.Clean(sourceRoot) == filepath.Clean(destRoot) {
		return res, fmt.Errorf("source and destination are both %s", destRoot)
	}
	// A destination nested in the source is skipped, a source nested in the destination is not.
	skipDest := !within(sourceRoot, destRoot)
	if err := r.Fs.MkdirAll(destRoot, 0o755); err != nil {
		return res, fmt.Errorf("create destination %s: %w", destRoot, err)
	}
	log.Infof("Relocating product folders from %q into %q", sourceRoot, destRoot)

	err := walk.PostOrder(r.Fs, sourceRoot, func(dir string, entries []os.FileInfo) error {
		if skipDest && within(dir, destRoot) {
			return nil
		}
		sidecarName := findSidecar(entries)
		if sidecarName == "" {
			return nil
		}

		log.Debugf("Found product folder %q", dir)
		if err := r.move(sourceRoot, destRoot, dir, sidecarName); err != nil {
			res.Skipped++
			switch {
			case errors.Is(err, sidecar.ErrSatelliteUnresolved):
				log.Warnf("No satellite in %q, leaving %q in place", sidecarName, dir)
			case errors.Is(err, ErrDestinationExists):
				log.Warnf("Not moving %q: %v", dir, err)
			default:
				log.Errorf("Failed to relocate %q: %v", dir, err)
			}
			return nil
		}
		res.Moved++
		return nil
	})

	log.Infof("Relocation done: %d product folders moved, %d skipped or failed", res.Moved, res.Skipped)
	return res, err
}

func (r *Relocator) move(sourceRoot, destRoot, dir, sidecarName string) error {
	satellite, err := r.Resolve(r.Fs, filepath.Join(dir, sidecarName))
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(sourceRoot, dir)
	if err != nil {
		return err
	}
	target := filepath.Join(destRoot, satellite, rel)

	exists, err := afero.Exists(r.Fs, target)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", target, ErrDestinationExists)
	}
	if err := r.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	log.Infof("Moving %q (satellite %q) to %q", dir, satellite, target)
	return r.Fs.Rename(dir, target)
}

// findSidecar returns the first sidecar in the listing, or "".
func findSidecar(entries []os.FileInfo) string {
	for _, name := range walk.Files(entries) {
		if sidecar.IsSidecar(name) {
			return name
		}
	}
	return ""
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

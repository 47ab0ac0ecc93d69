// Package walk traverses directory trees on an afero filesystem.
//
// Both walks hand the visitor the directory's listing as read at visit time. Only
// directories are visited; subdirectories are entered in lexical order. A subdirectory
// that cannot be listed is logged and skipped, the rest of the tree is still walked.
package walk

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	log "github.com/sirupsen/logrus"
)

// VisitFunc receives a directory and its entries. A non-nil error stops the walk.
type VisitFunc func(dir string, entries []os.FileInfo) error

// PostOrder visits every directory under root, root included, strictly after all of its
// descendants. The listing passed to fn is read after the descendants were visited, so
// it reflects anything their visits moved away.
func PostOrder(fs afero.Fs, root string, fn VisitFunc) error {
	if _, err := afero.ReadDir(fs, root); err != nil {
		return err
	}
	return postOrder(fs, root, fn)
}

func postOrder(fs afero.Fs, dir string, fn VisitFunc) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		log.Warnf("Cannot list %q, skipping: %v", dir, err)
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := postOrder(fs, filepath.Join(dir, e.Name()), fn); err != nil {
			return err
		}
	}

	entries, err = afero.ReadDir(fs, dir)
	if err != nil {
		log.Warnf("Cannot list %q, skipping: %v", dir, err)
		return nil
	}
	return fn(dir, entries)
}

// PreOrder visits every directory under root, root included, before any of its
// descendants.
func PreOrder(fs afero.Fs, root string, fn VisitFunc) error {
	if _, err := afero.ReadDir(fs, root); err != nil {
		return err
	}
	return preOrder(fs, root, fn)
}

func preOrder(fs afero.Fs, dir string, fn VisitFunc) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		log.Warnf("Cannot list %q, skipping: %v", dir, err)
		return nil
	}
	if err := fn(dir, entries); err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := preOrder(fs, filepath.Join(dir, e.Name()), fn); err != nil {
			return err
		}
	}
	return nil
}

// Files returns the names of the regular entries, in listing order.
func Files(entries []os.FileInfo) []string {
	var names []string
	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names
}

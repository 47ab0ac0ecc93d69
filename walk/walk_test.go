package walk

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewOsFs()
	root := t.TempDir()
	for _, f := range []string{"top.txt", "a/x/deep.txt", "a/mid.txt", "b/other.txt"} {
		p := filepath.Join(root, f)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(f), 0o644))
	}
	return fs, root
}

func rel(t *testing.T, root string, dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		r, err := filepath.Rel(root, d)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestPostOrder(t *testing.T) {
	fs, root := tree(t)

	var visited []string
	err := PostOrder(fs, root, func(dir string, entries []os.FileInfo) error {
		visited = append(visited, dir)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a/x", "a", "b", "."}, rel(t, root, visited))
}

func TestPreOrder(t *testing.T) {
	fs, root := tree(t)

	var visited []string
	files := map[string][]string{}
	err := PreOrder(fs, root, func(dir string, entries []os.FileInfo) error {
		visited = append(visited, dir)
		files[filepath.Base(dir)] = Files(entries)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{".", "a", "a/x", "b"}, rel(t, root, visited))
	assert.Equal(t, []string{"mid.txt"}, files["a"])
	assert.Equal(t, []string{"deep.txt"}, files["x"])
}

func TestPostOrder_ListingReflectsEarlierVisits(t *testing.T) {
	fs, root := tree(t)
	elsewhere := t.TempDir()

	var rootFiles []string
	var rootDirs []string
	err := PostOrder(fs, root, func(dir string, entries []os.FileInfo) error {
		switch dir {
		case filepath.Join(root, "a"):
			return fs.Rename(dir, filepath.Join(elsewhere, "a"))
		case root:
			rootFiles = Files(entries)
			for _, e := range entries {
				if e.IsDir() {
					rootDirs = append(rootDirs, e.Name())
				}
			}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"top.txt"}, rootFiles)
	assert.Equal(t, []string{"b"}, rootDirs)
}

func TestWalk_StopsOnVisitorError(t *testing.T) {
	fs, root := tree(t)
	stop := errors.New("stop")

	calls := 0
	err := PreOrder(fs, root, func(dir string, entries []os.FileInfo) error {
		calls++
		if filepath.Base(dir) == "a" {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestWalk_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	noop := func(string, []os.FileInfo) error { return nil }

	assert.Error(t, PostOrder(fs, "/nope", noop))
	assert.Error(t, PreOrder(fs, "/nope", noop))
}

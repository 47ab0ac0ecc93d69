package sidecar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// UnnamedFolder replaces names that sanitize to nothing.
const UnnamedFolder = "sem_nome"

var ErrSatelliteUnresolved = errors.New("satellite name not found")

var invalidFolderChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFolderName strips the characters that are not allowed in a folder name.
func SanitizeFolderName(name string) string {
	name = invalidFolderChars.ReplaceAllString(strings.TrimSpace(name), "")
	switch name {
	case "", ".", "..":
		return UnnamedFolder
	}
	return name
}

// ResolveSatellite reads the platform name from the sidecar at path and returns it
// sanitized for use as a path segment.
func ResolveSatellite(fs afero.Fs, path string) (string, error) {
	doc, err := ParseFile(fs, path)
	if err != nil {
		return "", err
	}
	return doc.Satellite()
}

func (d *Document) Satellite() (string, error) {
	name, ok := d.Text(TagSatelliteName)
	if !ok {
		return "", fmt.Errorf("<%s>: %w", TagSatelliteName, ErrSatelliteUnresolved)
	}
	return SanitizeFolderName(name), nil
}

// Package assets maps the files of a product folder to typed catalog assets.
package assets

import (
	"path/filepath"
	"strings"
)

// Asset keys.
const (
	KeyData           = "data"
	KeyQuickOrthoTIF  = "quickortho_tif"
	KeyThumbnail      = "thumbnail"
	KeyMetadataGRDXML = "metadata_grd_xml"
	KeyMetadataSLCXML = "metadata_slc_xml"
	KeyMetadataXML    = "metadata_xml"
	KeyQuicklookKML   = "quicklook_kml"
	KeyThumbnailKML   = "thumbnail_kml"
	KeyQuickOrthoKMZ  = "quickortho_kmz"
	KeyDataSLCH5      = "data_slc_h5"
	KeyThumbnailJSON  = "thumbnail_json"
)

// Media types.
const (
	MediaCOG         = "image/tiff; application=geotiff; profile=cloud-optimized"
	MediaGeoTIFF     = "image/tiff; application=geotiff"
	MediaPNG         = "image/png"
	MediaJPEG        = "image/jpeg"
	MediaXML         = "application/xml"
	MediaKML         = "application/vnd.google-earth.kml+xml"
	MediaKMZ         = "application/vnd.google-earth.kmz"
	MediaHDF5        = "application/x-hdf5"
	MediaJSON        = "application/json"
	MediaOctetStream = "application/octet-stream"
)

// Roles.
const (
	RoleData      = "data"
	RoleVisual    = "visual"
	RoleThumbnail = "thumbnail"
	RoleOverview  = "overview"
	RoleMetadata  = "metadata"
)

// Markers looked for, case-insensitively, in file names.
const (
	MarkerGroundRange = "GRD"
	MarkerSingleLook  = "SLC"
	MarkerOrtho       = "ORTHO"
	MarkerQuicklook   = "QUICKLOOK"
)

// IsRaster reports whether name has a TIFF extension.
func IsRaster(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return true
	}
	return false
}

// Classify picks the asset key, media type and roles of filename, a file of the item
// whose primary raster is named baseName (without extension). It does no I/O.
func Classify(filename, baseName string) (key, mediaType string, roles []string) {
	ext := strings.ToLower(filepath.Ext(filename))
	upper := strings.ToUpper(filename)
	has := func(marker string) bool {
		return strings.Contains(upper, marker)
	}

	switch ext {
	case ".tif", ".tiff":
		if has(MarkerOrtho) {
			return KeyQuickOrthoTIF, MediaGeoTIFF, []string{RoleVisual}
		}
		if has(MarkerGroundRange) {
			return KeyData, MediaCOG, []string{RoleData}
		}
	case ".png":
		return KeyThumbnail, MediaPNG, []string{RoleThumbnail}
	case ".jpg", ".jpeg":
		return KeyThumbnail, MediaJPEG, []string{RoleThumbnail}
	case ".xml":
		switch {
		case has(MarkerSingleLook):
			return KeyMetadataSLCXML, MediaXML, []string{RoleMetadata}
		case has(MarkerGroundRange):
			return KeyMetadataGRDXML, MediaXML, []string{RoleMetadata}
		}
		return KeyMetadataXML, MediaXML, []string{RoleMetadata}
	case ".kml":
		if has(MarkerQuicklook) {
			return KeyQuicklookKML, MediaKML, []string{RoleOverview}
		}
		return KeyThumbnailKML, MediaKML, []string{RoleThumbnail}
	case ".kmz":
		return KeyQuickOrthoKMZ, MediaKMZ, []string{RoleOverview}
	case ".h5":
		return KeyDataSLCH5, MediaHDF5, []string{RoleData}
	case ".json":
		return KeyThumbnailJSON, MediaJSON, []string{RoleMetadata}
	}
	return provisionalKey(filename, baseName), MediaOctetStream, []string{RoleMetadata}
}

// provisionalKey is the file stem with the item's base name removed, or the whole stem
// when nothing else is left.
func provisionalKey(filename, baseName string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if baseName == "" {
		return stem
	}
	if key := strings.Trim(strings.Replace(stem, baseName, "", 1), "_-. "); key != "" {
		return key
	}
	return stem
}

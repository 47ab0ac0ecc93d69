package assets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	const base = "prod1_GRD"
	tests := []struct {
		file      string
		key       string
		mediaType string
		roles     []string
	}{
		{"prod1_GRD.tif", KeyData, MediaCOG, []string{RoleData}},
		{"prod1_GRD.TIFF", KeyData, MediaCOG, []string{RoleData}},
		{"prod1_GRD_QUICKORTHO.tif", KeyQuickOrthoTIF, MediaGeoTIFF, []string{RoleVisual}},
		{"prod1_GRD.png", KeyThumbnail, MediaPNG, []string{RoleThumbnail}},
		{"prod1_GRD_THUMB.jpg", KeyThumbnail, MediaJPEG, []string{RoleThumbnail}},
		{"prod1_GRD.xml", KeyMetadataGRDXML, MediaXML, []string{RoleMetadata}},
		{"prod1_SLC.xml", KeyMetadataSLCXML, MediaXML, []string{RoleMetadata}},
		{"manifest.xml", KeyMetadataXML, MediaXML, []string{RoleMetadata}},
		{"prod1_GRD_QUICKLOOK.kml", KeyQuicklookKML, MediaKML, []string{RoleOverview}},
		{"prod1_GRD.kml", KeyThumbnailKML, MediaKML, []string{RoleThumbnail}},
		{"prod1_GRD.kmz", KeyQuickOrthoKMZ, MediaKMZ, []string{RoleOverview}},
		{"prod1_SLC.h5", KeyDataSLCH5, MediaHDF5, []string{RoleData}},
		{"prod1_GRD.json", KeyThumbnailJSON, MediaJSON, []string{RoleMetadata}},
		{"prod1_GRD_noise.dat", "noise", MediaOctetStream, []string{RoleMetadata}},
		{"readme.txt", "readme", MediaOctetStream, []string{RoleMetadata}},
		{"prod1_GRD.tar", "prod1_GRD", MediaOctetStream, []string{RoleMetadata}},
		{"prod1_SLC.tif", "prod1_SLC", MediaOctetStream, []string{RoleMetadata}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			key, mediaType, roles := Classify(tt.file, base)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.mediaType, mediaType)
			assert.Equal(t, tt.roles, roles)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for _, f := range []string{"prod1_GRD.tif", "odd name.bin", "prod1_GRD_QUICKLOOK.kml"} {
		k1, m1, r1 := Classify(f, "prod1_GRD")
		k2, m2, r2 := Classify(f, "prod1_GRD")
		assert.Equal(t, k1, k2)
		assert.Equal(t, m1, m2)
		assert.Equal(t, r1, r2)
	}
}

func TestIsRaster(t *testing.T) {
	assert.True(t, IsRaster("a.tif"))
	assert.True(t, IsRaster("a.TIFF"))
	assert.False(t, IsRaster("a.tif.xml"))
	assert.False(t, IsRaster("tif"))
}

func TestSet_FirstWins(t *testing.T) {
	s := NewSet()

	assert.True(t, s.Add(KeyThumbnail, Asset{Href: "first.png"}))
	assert.True(t, s.Add(KeyData, Asset{Href: "data.tif", Roles: []string{RoleData}}))
	assert.False(t, s.Add(KeyThumbnail, Asset{Href: "second.png"}))

	a, ok := s.Get(KeyThumbnail)
	assert.True(t, ok)
	assert.Equal(t, "first.png", a.Href)
	assert.Equal(t, []string{KeyThumbnail, KeyData}, s.Keys())
	assert.Equal(t, 2, s.Len())

	key, a, ok := s.WithRole(RoleData)
	assert.True(t, ok)
	assert.Equal(t, KeyData, key)
	assert.Equal(t, "data.tif", a.Href)

	_, _, ok = s.WithRole(RoleVisual)
	assert.False(t, ok)
}

func TestSet_JSON(t *testing.T) {
	s := NewSet()
	s.Add(KeyData, Asset{Href: "http://x/d.tif", MediaType: MediaCOG, Roles: []string{RoleData}, Title: "d.tif"})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"href":"http://x/d.tif","title":"d.tif","type":"`+MediaCOG+`","roles":["data"]}}`, string(data))

	var back Set
	require.NoError(t, json.Unmarshal(data, &back))
	a, ok := back.Get(KeyData)
	assert.True(t, ok)
	assert.Equal(t, "http://x/d.tif", a.Href)
}

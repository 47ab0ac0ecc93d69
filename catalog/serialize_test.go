package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sar-stac/assets"
)

func sampleCatalog() *Catalog {
	cat := New("Catalogo Censipam", "Catálogo Geoespacial de Imagens do Censipam.")
	col, _ := cat.CollectionFor("siteA")

	end := time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)
	b := orb.Bound{Min: orb.Point{-60.1, -3.1}, Max: orb.Point{-60.0, -3.0}}
	it := itemAt("prod1_GRD", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), &end, &b)
	it.Platform = "ICEYE-X43"
	it.Properties["sar:observation_direction"] = "left"
	it.Assets.Add(assets.KeyData, assets.Asset{
		Href: "http://h/org/prod1_GRD.tif", Title: "prod1_GRD.tif", MediaType: assets.MediaCOG, Roles: []string{assets.RoleData},
	})
	it.AttachExtensions()
	col.AddItem(it)

	col.AddItem(itemAt("bare", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil, nil))
	col.UpdateExtent()
	return cat
}

func readDoc(t *testing.T, fs afero.Fs, path string) map[string]interface{} {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func hrefs(doc map[string]interface{}) map[string][]string {
	out := map[string][]string{}
	for _, l := range doc["links"].([]interface{}) {
		link := l.(map[string]interface{})
		rel := link["rel"].(string)
		out[rel] = append(out[rel], link["href"].(string))
	}
	return out
}

func TestSave_Layout(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cat/stale/old.json", []byte("{}"), 0o644))

	require.NoError(t, Save(fs, sampleCatalog(), "/cat"))

	stale, err := afero.Exists(fs, "/cat/stale/old.json")
	require.NoError(t, err)
	assert.False(t, stale)

	root := readDoc(t, fs, "/cat/catalog.json")
	assert.Equal(t, "Catalog", root["type"])
	assert.Equal(t, "1.0.0", root["stac_version"])
	assert.Equal(t, "Catalogo Censipam", root["id"])
	assert.Equal(t, map[string][]string{
		"root":  {"./catalog.json"},
		"self":  {"./catalog.json"},
		"child": {"./siteA/collection.json"},
	}, hrefs(root))

	col := readDoc(t, fs, "/cat/siteA/collection.json")
	assert.Equal(t, "Collection", col["type"])
	assert.Equal(t, "proprietary", col["license"])
	assert.Equal(t, map[string][]string{
		"root":   {"../catalog.json"},
		"parent": {"../catalog.json"},
		"self":   {"./collection.json"},
		"item":   {"./prod1_GRD/prod1_GRD.json", "./bare/bare.json"},
	}, hrefs(col))
	extent := col["extent"].(map[string]interface{})
	assert.Equal(t, []interface{}{[]interface{}{-60.1, -3.1, -60.0, -3.0}},
		extent["spatial"].(map[string]interface{})["bbox"])
	assert.Equal(t, []interface{}{[]interface{}{"2024-01-01T00:00:00Z", "2024-03-01T00:00:00Z"}},
		extent["temporal"].(map[string]interface{})["interval"])

	item := readDoc(t, fs, "/cat/siteA/prod1_GRD/prod1_GRD.json")
	assert.Equal(t, "Feature", item["type"])
	assert.Equal(t, "siteA", item["collection"])
	assert.Equal(t, []interface{}{-60.1, -3.1, -60.0, -3.0}, item["bbox"])
	assert.Equal(t, "Polygon", item["geometry"].(map[string]interface{})["type"])
	assert.Equal(t, []interface{}{"https://stac-extensions.github.io/sar/v1.0.0/schema.json"}, item["stac_extensions"])
	props := item["properties"].(map[string]interface{})
	assert.Equal(t, "2024-01-01T00:00:00Z", props["datetime"])
	assert.Equal(t, "2024-01-01T00:00:00Z", props["start_datetime"])
	assert.Equal(t, "2024-01-01T00:00:10Z", props["end_datetime"])
	assert.Equal(t, "ICEYE-X43", props["platform"])
	assert.Equal(t, "left", props["sar:observation_direction"])
	assert.Equal(t, map[string][]string{
		"root":       {"../../catalog.json"},
		"parent":     {"../collection.json"},
		"collection": {"../collection.json"},
		"self":       {"./prod1_GRD.json"},
	}, hrefs(item))
	data := item["assets"].(map[string]interface{})["data"].(map[string]interface{})
	assert.Equal(t, "http://h/org/prod1_GRD.tif", data["href"])
	assert.Equal(t, assets.MediaCOG, data["type"])

	bare := readDoc(t, fs, "/cat/siteA/bare/bare.json")
	assert.Contains(t, bare, "geometry")
	assert.Nil(t, bare["geometry"])
	assert.NotContains(t, bare, "bbox")
	assert.Equal(t, []interface{}{}, bare["stac_extensions"])
	assert.Equal(t, map[string]interface{}{}, bare["assets"])
	assert.NotContains(t, bare["properties"], "end_datetime")
	assert.NotContains(t, bare["properties"], "platform")
}

func TestSave_OpenEndedExtent(t *testing.T) {
	fs := afero.NewMemMapFs()
	cat := New("c", "d")
	cat.CollectionFor("empty")

	require.NoError(t, Save(fs, cat, "/cat"))

	col := readDoc(t, fs, "/cat/empty/collection.json")
	extent := col["extent"].(map[string]interface{})
	assert.Equal(t, []interface{}{[]interface{}{"2020-01-01T00:00:00Z", nil}},
		extent["temporal"].(map[string]interface{})["interval"])
	assert.Equal(t, []interface{}{[]interface{}{-180.0, -90.0, 180.0, 90.0}},
		extent["spatial"].(map[string]interface{})["bbox"])
}

func TestRead_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	orig := sampleCatalog()
	require.NoError(t, Save(fs, orig, "/cat"))

	cat, err := Read(fs, "/cat")

	require.NoError(t, err)
	assert.Equal(t, orig.ID, cat.ID)
	assert.Equal(t, orig.Description, cat.Description)
	col, ok := cat.Collection("siteA")
	require.True(t, ok)
	origCol, _ := orig.Collection("siteA")
	assert.Equal(t, origCol.Extent, col.Extent)
	require.Len(t, col.Items(), 2)

	it, ok := cat.Item("prod1_GRD")
	require.True(t, ok)
	assert.Equal(t, "siteA", it.Collection)
	assert.Equal(t, "ICEYE-X43", it.Platform)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), it.Start)
	require.NotNil(t, it.End)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC), *it.End)
	assert.Equal(t, map[string]interface{}{"sar:observation_direction": "left"}, it.Properties)
	require.NotNil(t, it.BBox)
	assert.Equal(t, orb.Bound{Min: orb.Point{-60.1, -3.1}, Max: orb.Point{-60.0, -3.0}}, *it.BBox)
	require.Len(t, it.Geometry, 1)
	data, ok := it.Assets.Get(assets.KeyData)
	require.True(t, ok)
	assert.Equal(t, "http://h/org/prod1_GRD.tif", data.Href)

	bare, ok := cat.Item("bare")
	require.True(t, ok)
	assert.Nil(t, bare.BBox)
	assert.Nil(t, bare.End)
}

func TestSave_EscapesIdsInLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	cat := New("c", "")
	col, _ := cat.CollectionFor("ICEYE X43#1")
	col.AddItem(itemAt("p #1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, nil))
	col.UpdateExtent()

	require.NoError(t, Save(fs, cat, "/cat"))

	root := hrefs(readDoc(t, fs, "/cat/catalog.json"))
	assert.Equal(t, []string{"./ICEYE%20X43%231/collection.json"}, root["child"])
	colDoc := hrefs(readDoc(t, fs, "/cat/ICEYE X43#1/collection.json"))
	assert.Equal(t, []string{"./p%20%231/p%20%231.json"}, colDoc["item"])
	itemDoc := hrefs(readDoc(t, fs, "/cat/ICEYE X43#1/p #1/p #1.json"))
	assert.Equal(t, []string{"./p%20%231.json"}, itemDoc["self"])

	back, err := Read(fs, "/cat")
	require.NoError(t, err)
	it, ok := back.Item("p #1")
	require.True(t, ok)
	assert.Equal(t, "ICEYE X43#1", it.Collection)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(afero.NewMemMapFs(), "/nope")
	assert.Error(t, err)
}

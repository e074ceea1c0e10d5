package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/manrura/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	standards := cat.Standards()
	require.Len(t, standards, 5)
	assert.Equal(t, "bab1", cat.DefaultStandardID())
	assert.Equal(t, 22, cat.PointCount())
	assert.Equal(t, 220, cat.MaxScore())

	bab3 := cat.Standard("bab3")
	require.NotNil(t, bab3)
	assert.Len(t, bab3.Elements, 2)
	assert.Equal(t, []string{
		"bab3-el1-p1", "bab3-el1-p2", "bab3-el1-p3", "bab3-el2-p1", "bab3-el2-p2",
	}, bab3.PointIDs())

	p := cat.Point("bab4-el2-p1")
	require.NotNil(t, p)
	assert.Contains(t, p.Description, "high alert")
	assert.Equal(t, models.PointWeight, p.Weight())
	assert.Equal(t, "bab4", cat.StandardOf("bab4-el2-p1"))

	for _, info := range cat.List() {
		assert.Equal(t, len(cat.Standard(info.ID).PointIDs()), info.PointsCount)
	}
}

func TestParse_DuplicatePointID(t *testing.T) {
	doc := `
standards:
  - id: s1
    title: One
    elements:
      - id: e1
        points:
          - id: p1
  - id: s2
    title: Two
    elements:
      - id: e2
        points:
          - id: p1
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrDuplicatePointID)
}

func TestParse_DuplicateStandardID(t *testing.T) {
	doc := `
standards:
  - id: s1
  - id: s1
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrDuplicateStandardID)
}

func TestParse_MissingPointID(t *testing.T) {
	doc := `
standards:
  - id: s1
    elements:
      - id: e1
        points:
          - description: nameless
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestEmptyCatalog(t *testing.T) {
	cat, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cat.PointCount())
	assert.Equal(t, 0, cat.MaxScore())
	assert.Equal(t, "", cat.DefaultStandardID())
	assert.Empty(t, cat.List())
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	write("02-bab2.yaml", `
title: Second
elements:
  - id: b2e1
    points:
      - id: b2p1
        description: second point
`)
	write("01-first.yml", `
id: first
title: First
elements:
  - id: b1e1
    points:
      - id: b1p1
      - id: b1p2
`)
	write("notes.txt", "ignored")

	cat, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, cat.Standards(), 2)
	assert.Equal(t, "first", cat.Standards()[0].ID)
	// id falls back to the file name
	assert.Equal(t, "02-bab2", cat.Standards()[1].ID)
	assert.Equal(t, []string{"b1p1", "b1p2", "b2p1"}, cat.PointIDs())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
standards:
  - id: s
    title: "  Padded  "
    elements:
      - id: e
        points:
          - id: p
`), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Padded", cat.Standard("s").Title)
	assert.True(t, cat.HasPoint("p"))
	assert.False(t, cat.HasPoint("q"))
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCatalogJSON(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	doc, err := cat.JSON()
	require.NoError(t, err)
	assert.Contains(t, doc, `"id":"bab1"`)
	assert.Contains(t, doc, `"poin":[`)
}

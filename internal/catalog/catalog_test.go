package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArticle(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestScan_NoCatalogs(t *testing.T) {
	inv, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, inv.Catalogs)
	assert.Empty(t, inv.Articles)
}

func TestScan_InventoriesArticles(t *testing.T) {
	root := t.TempDir()
	catalog := filepath.Join(root, "Sources", "MyKit", "MyKit.docc")
	writeArticle(t, catalog, "GettingStarted.md", "# Getting Started\n\nSee [setup](doc:Setup).\n")
	writeArticle(t, catalog, "untitled-notes.md", "Just prose, no heading.\n")

	inv, err := Scan(root)
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join("Sources", "MyKit", "MyKit.docc")}, inv.Catalogs)
	require.Len(t, inv.Articles, 2)

	byName := map[string]Article{}
	for _, a := range inv.Articles {
		byName[filepath.Base(a.Path)] = a
	}

	assert.Equal(t, "Getting Started", byName["GettingStarted.md"].Title)
	require.Len(t, byName["GettingStarted.md"].Links, 1)
	assert.Equal(t, "doc:Setup", byName["GettingStarted.md"].Links[0].Destination)

	// No heading: the title is derived from the filename.
	assert.Equal(t, "Untitled Notes", byName["untitled-notes.md"].Title)
}

func TestScan_MultipleCatalogsSorted(t *testing.T) {
	root := t.TempDir()
	writeArticle(t, filepath.Join(root, "B.docc"), "b.md", "# B\n")
	writeArticle(t, filepath.Join(root, "A.docc"), "a.md", "# A\n")

	inv, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.docc", "B.docc"}, inv.Catalogs)
}

func TestLint_FlagsEmptyDestinations(t *testing.T) {
	root := t.TempDir()
	catalog := filepath.Join(root, "Docs.docc")
	writeArticle(t, catalog, "Broken.md", "# Broken\n\nAn [empty link]().\n")
	writeArticle(t, catalog, "Fine.md", "# Fine\n\nA [real link](doc:Broken).\n")

	inv, err := Scan(root)
	require.NoError(t, err)

	problems := Lint(inv)
	require.Len(t, problems, 1)
	assert.Equal(t, filepath.Join("Docs.docc", "Broken.md"), problems[0].Article)
	assert.Contains(t, problems[0].Detail, "empty destination")
}

func TestExtractLinks_Kinds(t *testing.T) {
	body := []byte("# T\n\n[inline](https://example.com)\n\n![img](logo.png)\n\n<https://auto.example.com>\n")
	links := extractLinks(body)
	require.Len(t, links, 3)

	kinds := map[LinkKind]string{}
	for _, l := range links {
		kinds[l.Kind] = l.Destination
	}
	assert.Equal(t, "https://example.com", kinds[LinkKindInline])
	assert.Equal(t, "logo.png", kinds[LinkKindImage])
	assert.Equal(t, "https://auto.example.com", kinds[LinkKindAuto])
}

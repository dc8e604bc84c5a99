// Package catalog inspects DocC documentation catalogs (*.docc directories)
// before the expensive compiler invocation: it inventories articles, extracts
// titles and links, and flags obviously broken links early.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Article is one markdown article inside a documentation catalog.
type Article struct {
	// Path is relative to the repository root.
	Path  string
	Title string
	Links []Link
}

// Inventory summarizes every catalog found in a checkout.
type Inventory struct {
	// Catalogs holds the *.docc directory paths, sorted.
	Catalogs []string
	Articles []Article
}

// Problem is a pre-build finding worth surfacing to the operator.
type Problem struct {
	Article string
	Detail  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Article, p.Detail)
}

var titleCaser = cases.Title(language.English)

// Scan walks the checkout for *.docc catalogs and inventories their articles.
// A checkout without catalogs yields an empty inventory, not an error: DocC
// can still document source symbols without curated articles.
func Scan(root string) (*Inventory, error) {
	inv := &Inventory{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !strings.HasSuffix(d.Name(), ".docc") {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		inv.Catalogs = append(inv.Catalogs, rel)

		articles, aerr := scanCatalog(root, path)
		if aerr != nil {
			return aerr
		}
		inv.Articles = append(inv.Articles, articles...)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for catalogs: %w", err)
	}

	sort.Strings(inv.Catalogs)
	sort.Slice(inv.Articles, func(i, j int) bool { return inv.Articles[i].Path < inv.Articles[j].Path })
	return inv, nil
}

func scanCatalog(root, catalogDir string) ([]Article, error) {
	var articles []Article
	err := filepath.WalkDir(catalogDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		body, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}

		title := extractTitle(body)
		if title == "" {
			title = fallbackTitle(d.Name())
		}

		articles = append(articles, Article{
			Path:  rel,
			Title: title,
			Links: extractLinks(body),
		})
		return nil
	})
	return articles, err
}

// fallbackTitle derives a display title from a filename like
// "getting-started.md" when the article has no heading.
func fallbackTitle(filename string) string {
	base := strings.TrimSuffix(filename, ".md")
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return titleCaser.String(base)
}

// Lint reports pre-build problems: articles without a title heading and
// links with empty destinations.
func Lint(inv *Inventory) []Problem {
	var problems []Problem
	for _, a := range inv.Articles {
		for _, l := range a.Links {
			if strings.TrimSpace(l.Destination) == "" {
				problems = append(problems, Problem{
					Article: a.Path,
					Detail:  "link with empty destination",
				})
			}
		}
	}
	return problems
}

package site

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// verifyHostingBasePath checks that the transformed site's entry page
// references its assets under the expected base path. A mismatch usually
// means the transform ran with the wrong --hosting-base-path; the site would
// load with broken CSS/JS. Advisory only: the page may legitimately carry no
// rooted asset links.
func verifyHostingBasePath(outputDir, scheme string) {
	entry := filepath.Join(outputDir, "index.html")
	f, err := os.Open(entry)
	if err != nil {
		slog.Debug("No entry page to verify", logfields.Path(entry))
		return
	}
	defer f.Close()

	refs := extractAssetRefs(f)
	if len(refs) == 0 {
		return
	}

	prefix := "/" + scheme + "/"
	for _, ref := range refs {
		if strings.HasPrefix(ref, prefix) {
			return
		}
	}
	slog.Warn("Transformed site does not reference assets under hosting base path",
		logfields.Scheme(scheme),
		slog.Int("asset_refs", len(refs)))
}

// extractAssetRefs collects rooted script/link URLs from an HTML document.
func extractAssetRefs(r io.Reader) []string {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var attr string
			switch n.Data {
			case "script":
				attr = "src"
			case "link":
				attr = "href"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key == attr && strings.HasPrefix(a.Val, "/") {
						refs = append(refs, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

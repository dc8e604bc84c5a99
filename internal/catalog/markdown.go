package catalog

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LinkKind classifies how a link was written.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindAuto   LinkKind = "auto"
	LinkKindImage  LinkKind = "image"
)

// Link is a link-like construct extracted from an article body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// extractTitle returns the text of the first level-1 heading, or "".
func extractTitle(body []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = string(headingText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func headingText(h *gmast.Heading, body []byte) []byte {
	var out []byte
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			out = append(out, t.Segment.Value(body)...)
		}
	}
	return out
}

// extractLinks parses an article body and extracts link-like constructs.
// This is an analysis API; it does not attempt to re-render Markdown.
func extractLinks(body []byte) []Link {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var links []Link
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

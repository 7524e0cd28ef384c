package markdown

import (
	"sort"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkKind classifies where in the document a destination was found.
type LinkKind string

const (
	LinkKindInline    LinkKind = "inline"
	LinkKindImage     LinkKind = "image"
	LinkKindAuto      LinkKind = "auto"
	LinkKindReference LinkKind = "reference"
)

// Link is a single outgoing destination in a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks walks a Markdown body and collects every link-like
// destination: inline links, images, autolinks and reference definitions.
// This is an analysis pass; it never renders.
func ExtractLinks(body []byte) []Link {
	ctx := parser.NewContext()
	root := engine.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
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
			// Reference-style links resolve to Link nodes with a
			// destination already attached.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReference, Destination: string(ref.Destination())})
	}
	return links
}

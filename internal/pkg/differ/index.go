package differ

import (
	"strings"

	"pagediff/internal/pkg/types"
)

// pageEntry is one page's view of a selector.
type pageEntry struct {
	signature string
	leaf      bool
}

// entry aggregates one selector across all pages.
type entry struct {
	selector string
	pages    map[int]*pageEntry
	order    int    // first-occurrence order across the run, for stable output
	kind     string // set once classified as differing or unique
}

// isLeaf reports whether the selector is a leaf on at least one page. A node
// can be a leaf on one page and carry children on another; per-page leafness
// decides what it contributes to an aggregated record.
func (e *entry) isLeaf() bool {
	for _, pe := range e.pages {
		if pe.leaf {
			return true
		}
	}
	return false
}

// selectorIndex maps every CSS selector seen in any page to the per-page
// content signatures recorded under it.
type selectorIndex struct {
	entries map[string]*entry
	ordered []*entry // insertion order: page order, then document order
}

// buildIndex flattens every page's tree depth-first into selector -> content
// pairs. Selectors matching the noise filter are excluded up front, before
// any difference computation; their children are still indexed on their own
// selectors.
func buildIndex(pages []*types.PageDocument, noise *NoiseFilter) *selectorIndex {
	idx := &selectorIndex{entries: make(map[string]*entry)}
	for pageID, page := range pages {
		var walk func(*types.DomNode)
		walk = func(node *types.DomNode) {
			if !noise.Match(node) {
				idx.record(pageID, node)
			}
			for _, child := range node.Children {
				walk(child)
			}
		}
		walk(page.DomTree)
	}
	return idx
}

func (idx *selectorIndex) record(pageID int, node *types.DomNode) {
	e, ok := idx.entries[node.Selector]
	if !ok {
		e = &entry{
			selector: node.Selector,
			pages:    make(map[int]*pageEntry),
			order:    len(idx.ordered),
		}
		idx.entries[node.Selector] = e
		idx.ordered = append(idx.ordered, e)
	}
	e.pages[pageID] = &pageEntry{
		signature: signature(node),
		leaf:      node.IsLeaf(),
	}
}

// differences returns the selectors whose content is not identical across
// all pages that contain them: "differing" when present on two or more pages
// with unequal signatures, "unique" when present on exactly one page.
// Order follows first occurrence, so output is deterministic.
func (idx *selectorIndex) differences() []*entry {
	var result []*entry
	for _, e := range idx.ordered {
		switch {
		case len(e.pages) == 1:
			e.kind = types.KindUnique
		case !allEqual(e):
			e.kind = types.KindDiffering
		default:
			continue
		}
		result = append(result, e)
	}
	return result
}

func allEqual(e *entry) bool {
	var first string
	seen := false
	for _, pe := range e.pages {
		if !seen {
			first = pe.signature
			seen = true
			continue
		}
		if pe.signature != first {
			return false
		}
	}
	return true
}

// signature is the comparable representation of a node's content: an image
// marker for image nodes, otherwise the trimmed concatenated text. Ties are
// broken by exact string equality only.
func signature(node *types.DomNode) string {
	if node.Tag == "img" {
		if src := node.Attr("src"); src != "" {
			return "image:" + src
		}
		return "image:" + node.Attr("data-src")
	}
	return strings.TrimSpace(node.TextContent)
}

package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SelectorValidationError reports a synthesized selector that did not
// resolve to exactly its source node in the original document.
type SelectorValidationError struct {
	Selector  string
	Matches   int
	WrongNode bool
}

func (e *SelectorValidationError) Error() string {
	if e.WrongNode {
		return fmt.Sprintf("selector %q resolved to a different node", e.Selector)
	}
	return fmt.Sprintf("selector %q matched %d elements, want exactly 1", e.Selector, e.Matches)
}

// pathOpts controls one synthesis strategy. The strategies form an ordered
// disambiguation sequence, not recursive backtracking.
type pathOpts struct {
	ownNth    bool // force :nth-of-type on the node's own segment
	allNth    bool // force :nth-of-type on every segment
	ignoreIDs bool // do not root the path at an id'd ancestor
	bareTags  bool // omit class tokens from segments
}

// selectorFor synthesizes and validates a CSS selector for n. Strategies are
// tried in order: the base form, then increasingly explicit positional forms,
// ending with a classless body-rooted path that positions every segment.
func (b *builder) selectorFor(n *html.Node) (string, error) {
	strategies := []pathOpts{
		{},
		{ownNth: true},
		{allNth: true},
		{allNth: true, ignoreIDs: true, bareTags: true},
	}

	var lastErr error
	for i, opts := range strategies {
		selector := b.path(n, opts)
		err := b.validate(selector, n)
		if err == nil {
			if i > 0 {
				b.log.Debug("selector regenerated",
					zap.String("selector", selector),
					zap.Int("strategy", i))
			}
			return selector, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// path builds the ancestor-segment selector for n. The path roots at the
// nearest ancestor with a document-unique id, falling back to body (or html)
// otherwise. Segments are joined with the direct-child combinator.
func (b *builder) path(n *html.Node, opts pathOpts) string {
	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = parentElement(cur) {
		if !opts.ignoreIDs {
			if id := attrVal(cur, "id"); id != "" && b.idCounts[id] == 1 {
				segments = append(segments, cur.Data+"#"+id)
				break
			}
		}
		forceNth := opts.allNth || (opts.ownNth && cur == n)
		segments = append(segments, segment(cur, forceNth, opts.bareTags))
		if cur.Data == "body" || cur.Data == "html" {
			break
		}
	}
	slices.Reverse(segments)
	return strings.Join(segments, " > ")
}

// segment renders one path step: tag, class tokens, and a positional suffix
// when siblings share the same tag+class signature (or when forced).
func segment(n *html.Node, forceNth, bareTag bool) string {
	seg := n.Data
	classes := classList(n)
	if !bareTag && len(classes) > 0 {
		seg += "." + strings.Join(classes, ".")
	}
	if forceNth || hasSameSignatureSibling(n, classes) {
		seg += fmt.Sprintf(":nth-of-type(%d)", nthOfType(n))
	}
	return seg
}

// validate re-queries the original document and requires the selector to
// yield exactly the source node.
func (b *builder) validate(selector string, n *html.Node) error {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	matches := cascadia.QueryAll(b.doc, sel)
	if len(matches) != 1 {
		return &SelectorValidationError{Selector: selector, Matches: len(matches)}
	}
	if matches[0] != n {
		return &SelectorValidationError{Selector: selector, Matches: 1, WrongNode: true}
	}
	return nil
}

// nthOfType returns the node's 1-based position among same-tag element
// siblings, matching DOM nth-of-type semantics.
func nthOfType(n *html.Node) int {
	position := 1
	for sibling := n.PrevSibling; sibling != nil; sibling = sibling.PrevSibling {
		if sibling.Type == html.ElementNode && sibling.Data == n.Data {
			position++
		}
	}
	return position
}

// hasSameSignatureSibling reports whether another sibling shares the node's
// tag and exact class list.
func hasSameSignatureSibling(n *html.Node, classes []string) bool {
	if n.Parent == nil {
		return false
	}
	for sibling := n.Parent.FirstChild; sibling != nil; sibling = sibling.NextSibling {
		if sibling == n || sibling.Type != html.ElementNode || sibling.Data != n.Data {
			continue
		}
		if slices.Equal(classList(sibling), classes) {
			return true
		}
	}
	return false
}

func classList(n *html.Node) []string {
	return strings.Fields(attrVal(n, "class"))
}

func parentElement(n *html.Node) *html.Node {
	if n.Parent != nil && n.Parent.Type == html.ElementNode {
		return n.Parent
	}
	return nil
}

// Package filter converts raw HTML into a pruned, selector-annotated DOM
// tree. A node survives the pruning iff it carries meaningful leaf content
// (own text or an image source) or has at least one surviving descendant.
// Every surviving node gets a CSS selector validated to resolve to exactly
// that node in the original, unfiltered document.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagediff/internal/pkg/types"
)

// ErrParse reports HTML that cannot yield a usable document tree.
var ErrParse = errors.New("unparseable HTML document")

// Meta carries optional page metadata. It is not used in filtering logic.
type Meta struct {
	URL   string
	Title string
}

// Converter turns HTML text into PageDocuments.
type Converter struct {
	log *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for conversion diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) { c.log = log }
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert parses htmlText, prunes nodes without meaningful content, and
// returns the resulting document together with any non-fatal diagnostics
// (nodes dropped because no validating selector could be synthesized).
// The returned tree never contains an unvalidated selector.
func (c *Converter) Convert(htmlText string, meta Meta) (*types.PageDocument, []types.Diagnostic, error) {
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	start := findElement(root, "body")
	if start == nil {
		start = findElement(root, "html")
	}
	if start == nil {
		return nil, nil, fmt.Errorf("%w: no body or html element", ErrParse)
	}

	b := &builder{
		doc:      root,
		idCounts: countIDs(root),
		log:      c.log,
	}
	tree := b.build(start)

	total := 0
	if tree != nil {
		total = assignIDs(tree, 1) - 1
	}

	doc := &types.PageDocument{
		URL:           meta.URL,
		Title:         pageTitle(root, meta),
		TotalElements: total,
		DomTree:       tree,
	}

	c.log.Debug("conversion complete",
		zap.String("url", meta.URL),
		zap.Int("total_elements", total),
		zap.Int("dropped_nodes", len(b.diags)))

	return doc, b.diags, nil
}

// builder walks the parsed tree and assembles the filtered DomNode tree.
type builder struct {
	doc      *html.Node     // document root, selectors validate against it
	idCounts map[string]int // id attribute value -> occurrence count
	diags    []types.Diagnostic
	log      *zap.Logger
}

// build returns the filtered subtree rooted at n, or nil if nothing under n
// survives. Selectors are synthesized only for surviving nodes.
func (b *builder) build(n *html.Node) *types.DomNode {
	if n.Type != html.ElementNode || isSkippedTag(n.Data) {
		return nil
	}

	var children []*types.DomNode
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if filtered := b.build(child); filtered != nil {
			children = append(children, filtered)
		}
	}

	meaningful := isMeaningful(n)
	if !meaningful && len(children) == 0 {
		return nil
	}

	selector, err := b.selectorFor(n)
	if err != nil {
		// The subtree is dropped rather than emitted with an unverified
		// selector. Recorded so the failure is never silently lost.
		b.diags = append(b.diags, types.Diagnostic{
			Tag:      n.Data,
			Selector: b.path(n, pathOpts{}),
			Reason:   err.Error(),
		})
		b.log.Warn("dropping node: selector validation failed",
			zap.String("tag", n.Data),
			zap.Error(err))
		return nil
	}

	return &types.DomNode{
		Tag:         n.Data,
		Selector:    selector,
		Attributes:  attributeMap(n),
		TextContent: subtreeText(n),
		Children:    children,
	}
}

// isMeaningful reports whether the node itself carries leaf content: own
// text (form control values included) or an image source.
func isMeaningful(n *html.Node) bool {
	if isImage(n) {
		return true
	}
	if ownText(n) != "" {
		return true
	}
	return foldedText(n) != ""
}

func isImage(n *html.Node) bool {
	if n.Data != "img" {
		return false
	}
	return attrVal(n, "src") != "" || attrVal(n, "data-src") != ""
}

// assignIDs numbers the tree depth-first in document order, starting at next.
// Returns the next unused sequence number.
func assignIDs(n *types.DomNode, next int) int {
	n.ID = next
	next++
	for _, child := range n.Children {
		next = assignIDs(child, next)
	}
	return next
}

// attributeMap folds the element's attributes into the generic mapping:
// class becomes an ordered token list, everything else a scalar string.
func attributeMap(n *html.Node) types.Attributes {
	if len(n.Attr) == 0 {
		return types.Attributes{}
	}
	attrs := make(types.Attributes, len(n.Attr))
	for _, a := range n.Attr {
		if a.Key == "class" {
			attrs[a.Key] = strings.Fields(a.Val)
			continue
		}
		attrs[a.Key] = a.Val
	}
	return attrs
}

// pageTitle resolves the document title, preferring caller-supplied metadata.
func pageTitle(root *html.Node, meta Meta) string {
	if meta.Title != "" {
		return meta.Title
	}
	doc := goquery.NewDocumentFromNode(root)
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return "Unknown"
}

// findElement returns the first element with the given tag, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// countIDs indexes every id attribute in the document so the selector
// synthesizer can detect duplicate ids.
func countIDs(root *html.Node) map[string]int {
	counts := make(map[string]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attrVal(n, "id"); id != "" {
				counts[id]++
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return counts
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

package filter

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags whose subtrees never contribute content to the filtered tree.
var skippedTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

func isSkippedTag(tag string) bool {
	_, ok := skippedTags[tag]
	return ok
}

// ownText returns the element's direct text, whitespace collapsed.
func ownText(n *html.Node) string {
	var parts []string
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.TextNode {
			continue
		}
		if text := collapseWhitespace(child.Data); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// foldedText surfaces content that form controls keep in attributes rather
// than text nodes: input/textarea values and placeholders, optgroup labels,
// and label associations.
func foldedText(n *html.Node) string {
	var parts []string
	switch n.Data {
	case "input", "select", "textarea":
		if value := attrVal(n, "value"); value != "" {
			parts = append(parts, value)
		}
		if placeholder := attrVal(n, "placeholder"); placeholder != "" {
			parts = append(parts, placeholder)
		}
	case "optgroup":
		if label := attrVal(n, "label"); label != "" {
			parts = append(parts, label)
		}
	case "label":
		if forAttr := attrVal(n, "for"); forAttr != "" {
			parts = append(parts, "[for: "+forAttr+"]")
		}
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

// subtreeText concatenates all text in the subtree in strict document order,
// interleaving an element's direct text with its child elements' text as they
// appear. Script/style subtrees are excluded and whitespace is collapsed.
// Folded attribute content precedes an element's children.
func subtreeText(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if text := collapseWhitespace(node.Data); text != "" {
				parts = append(parts, text)
			}
		case html.ElementNode:
			if isSkippedTag(node.Data) {
				return
			}
			if text := foldedText(node); text != "" {
				parts = append(parts, text)
			}
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				collect(child)
			}
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}

// collapseWhitespace trims and squashes all runs of whitespace to one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package types

// Attribute values are scalar strings, except "class" which is stored as an
// ordered list of class tokens.
type Attributes map[string]any

// Data structure for one node of a filtered DOM tree. Children are owned by
// the parent and appear in document order; structural lookups go through the
// CSS selector rather than parent pointers.
type DomNode struct {
    ID          int        `json:"id"`
    Tag         string     `json:"tag"`
    Selector    string     `json:"css_selector"`
    Attributes  Attributes `json:"attributes"`
    TextContent string     `json:"text_content"`
    Children    []*DomNode `json:"children"`
}

// Reports whether the node has no surviving children in the filtered tree.
func (n *DomNode) IsLeaf() bool {
    return len(n.Children) == 0
}

// Returns the scalar string value of an attribute, or "" if absent or not a
// scalar (e.g. the class list).
func (n *DomNode) Attr(name string) string {
    if v, ok := n.Attributes[name]; ok {
        if s, ok := v.(string); ok {
            return s
        }
    }
    return ""
}

// Returns the class token list. Tolerates the []any shape produced by a JSON
// round trip of the attributes map.
func (n *DomNode) Classes() []string {
    switch v := n.Attributes["class"].(type) {
    case []string:
        return v
    case []any:
        classes := make([]string, 0, len(v))
        for _, c := range v {
            if s, ok := c.(string); ok {
                classes = append(classes, s)
            }
        }
        return classes
    }
    return nil
}

// Data structure to organize and store one page's conversion result.
type PageDocument struct {
    URL           string   `json:"url"`
    Title         string   `json:"title"`
    TotalElements int      `json:"total_elements"`
    DomTree       *DomNode `json:"dom_tree"`
}

// A non-fatal problem recorded during conversion, e.g. a node dropped because
// no validating selector could be synthesized for it.
type Diagnostic struct {
    Tag      string `json:"tag"`
    Selector string `json:"selector"`
    Reason   string `json:"reason"`
}

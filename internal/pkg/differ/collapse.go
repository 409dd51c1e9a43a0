package differ

import (
	"strings"

	"pagediff/internal/pkg/types"
)

// Selector path segments are joined with the direct-child combinator, so
// ancestry between selectors is a segment-prefix relation.
const combinator = " > "

func splitSelector(selector string) []string {
	return strings.Split(selector, combinator)
}

// collapse replaces differing leaf selectors with their highest ancestor
// selector that wraps only differing-or-unique leaves. A leaf with no valid
// covering ancestor is reported at its own selector. Leaves are processed in
// first-occurrence order, which makes equal-depth sibling choices stable.
func collapse(idx *selectorIndex, raw []*entry) []*entry {
	inL := make(map[string]bool)
	var leaves []*entry
	for _, e := range raw {
		if e.isLeaf() {
			inL[e.selector] = true
			leaves = append(leaves, e)
		}
	}

	leafDescendants := idx.leafDescendants()

	covered := make(map[string]bool)
	chosen := make(map[string]bool)
	var result []*entry

	for _, leaf := range leaves {
		if covered[leaf.selector] {
			continue
		}

		target := leaf
		segments := splitSelector(leaf.selector)
		// Shallowest ancestor first, so the first valid one is the highest.
		for d := 1; d < len(segments); d++ {
			ancestor := strings.Join(segments[:d], combinator)
			ancestorEntry, ok := idx.entries[ancestor]
			if !ok {
				continue
			}
			descendants := leafDescendants[ancestor]
			if len(descendants) == 0 {
				continue
			}
			valid := true
			for _, candidate := range descendants {
				if !inL[candidate.selector] {
					valid = false
					break
				}
			}
			if valid {
				target = ancestorEntry
				break
			}
		}

		reported := target
		if target != leaf {
			// Nothing under the chosen ancestor is reported separately.
			for _, descendant := range leafDescendants[target.selector] {
				covered[descendant.selector] = true
			}
			reported = aggregate(target, leafDescendants[target.selector])
		}
		covered[leaf.selector] = true

		if !chosen[reported.selector] {
			chosen[reported.selector] = true
			if reported.kind == "" {
				if len(target.pages) == 1 {
					reported.kind = types.KindUnique
				} else {
					reported.kind = types.KindDiffering
				}
			}
			result = append(result, reported)
		}
	}
	return result
}

// aggregate builds the reported entry for a collapsed ancestor: per page,
// the joined signatures of the covered leaves in document order. Pages where
// the ancestor itself is a leaf contribute its own signature, so no page the
// selector occurs on disappears from the record. Entries contribute only the
// pages where they are leaves; their carrier pages are covered by their own
// children in the list.
func aggregate(ancestor *entry, leaves []*entry) *entry {
	agg := &entry{
		selector: ancestor.selector,
		pages:    make(map[int]*pageEntry),
		order:    ancestor.order,
		kind:     ancestor.kind,
	}
	for pageID, pe := range ancestor.pages {
		if pe.leaf {
			agg.pages[pageID] = &pageEntry{signature: pe.signature, leaf: true}
		}
	}
	for _, leaf := range leaves {
		for pageID, pe := range leaf.pages {
			if !pe.leaf {
				continue
			}
			if existing, ok := agg.pages[pageID]; ok {
				existing.signature += " " + pe.signature
			} else {
				agg.pages[pageID] = &pageEntry{signature: pe.signature}
			}
		}
	}
	return agg
}

// leafDescendants maps every indexed selector to the leaf entries strictly
// below it in the selector hierarchy.
func (idx *selectorIndex) leafDescendants() map[string][]*entry {
	m := make(map[string][]*entry)
	for _, e := range idx.ordered {
		if !e.isLeaf() {
			continue
		}
		segments := splitSelector(e.selector)
		for d := 1; d < len(segments); d++ {
			ancestor := strings.Join(segments[:d], combinator)
			if _, ok := idx.entries[ancestor]; ok {
				m[ancestor] = append(m[ancestor], e)
			}
		}
	}
	return m
}

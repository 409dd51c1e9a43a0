// Package differ compares two or more filtered page documents selector by
// selector and reports where their content diverges, both as a full raw list
// and collapsed to the highest ancestor selectors that wrap only differing
// leaves.
package differ

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pagediff/internal/pkg/types"
)

// ErrEmptyComparison reports fewer than two usable input pages.
var ErrEmptyComparison = errors.New("need at least two pages to compare")

// MissingPageError reports an input page that cannot take part in the
// comparison. It is fatal for the whole run: a silently dropped page would
// corrupt the cross-page counts.
type MissingPageError struct {
	Index  int
	Reason string
}

func (e *MissingPageError) Error() string {
	return fmt.Sprintf("page %d cannot be compared: %s", e.Index, e.Reason)
}

// Differ runs multi-page comparisons. Safe for concurrent use; each Compare
// call builds its own working state.
type Differ struct {
	log   *zap.Logger
	noise *NoiseFilter
}

// Option configures a Differ.
type Option func(*Differ)

// WithLogger sets the logger used for comparison progress and diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(d *Differ) { d.log = log }
}

// WithNoiseFilter excludes selectors matching known-noise patterns from the
// index before differences are computed.
func WithNoiseFilter(f *NoiseFilter) Option {
	return func(d *Differ) { d.noise = f }
}

// New creates a Differ.
func New(opts ...Option) *Differ {
	d := &Differ{log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compare indexes every node of every page by its CSS selector, finds the
// selectors whose content differs across pages (or exists on only one page),
// and collapses the differing leaves to their highest covering ancestors.
func (d *Differ) Compare(pages []*types.PageDocument) (*types.ComparisonReport, error) {
	if len(pages) < 2 {
		return nil, ErrEmptyComparison
	}
	for i, page := range pages {
		if page == nil {
			return nil, &MissingPageError{Index: i, Reason: "page document is missing"}
		}
		if page.DomTree == nil {
			return nil, &MissingPageError{Index: i, Reason: "page has no DOM tree"}
		}
	}

	idx := buildIndex(pages, d.noise)
	raw := idx.differences()
	collapsed := collapse(idx, raw)

	d.log.Info("comparison complete",
		zap.Int("pages", len(pages)),
		zap.Int("selectors_indexed", len(idx.entries)),
		zap.Int("raw_differences", len(raw)),
		zap.Int("collapsed_differences", len(collapsed)))

	return assembleReport(pages, raw, collapsed), nil
}

// assembleReport builds the wire-shape report from the raw and collapsed
// difference sets.
func assembleReport(pages []*types.PageDocument, raw, collapsed []*entry) *types.ComparisonReport {
	report := &types.ComparisonReport{
		Summary: types.Summary{
			TotalPagesCompared:            len(pages),
			TotalDifferentElements:        len(raw),
			HighestLevelDifferentElements: len(collapsed),
		},
		Pages:                         make([]types.PageInfo, 0, len(pages)),
		DifferentElements:             records(raw),
		HighestLevelDifferentElements: records(collapsed),
	}
	for i, page := range pages {
		report.Pages = append(report.Pages, types.PageInfo{
			ID:    i,
			URL:   page.URL,
			Title: page.Title,
		})
	}
	return report
}

// records converts index entries to difference records. For collapsed
// ancestors the per-page content is assembled by collapse: the covered
// leaves' joined signatures, plus the ancestor's own signature on pages
// where it is itself a leaf.
func records(entries []*entry) []types.DifferenceRecord {
	recs := make([]types.DifferenceRecord, 0, len(entries))
	for _, e := range entries {
		content := make(map[string]string, len(e.pages))
		for pageID, pe := range e.pages {
			content[types.PageKey(pageID)] = pe.signature
		}
		recs = append(recs, types.DifferenceRecord{
			Selector:      e.selector,
			Kind:          e.kind,
			ContentByPage: content,
		})
	}
	return recs
}

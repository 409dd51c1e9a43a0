package differ

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagediff/internal/pkg/filter"
	"pagediff/internal/pkg/types"
)

// convertPages runs real HTML through the filter so the differ sees the same
// selector scheme production comparisons do.
func convertPages(t *testing.T, htmls ...string) []*types.PageDocument {
	t.Helper()
	converter := filter.New()
	pages := make([]*types.PageDocument, 0, len(htmls))
	for i, content := range htmls {
		doc, diags, err := converter.Convert(content, filter.Meta{URL: fmt.Sprintf("https://example.com/p%d", i)})
		require.NoError(t, err)
		require.Empty(t, diags)
		pages = append(pages, doc)
	}
	return pages
}

func selectors(records []types.DifferenceRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Selector)
	}
	return out
}

func TestCompareIdenticalPages(t *testing.T) {
	content := `<html><head><title>T</title></head><body>
		<div id="x"><p>Hello</p><p class="m">1727.25 mm</p></div>
	</body></html>`

	report, err := New().Compare(convertPages(t, content, content))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalPagesCompared)
	assert.Zero(t, report.Summary.TotalDifferentElements)
	assert.Zero(t, report.Summary.HighestLevelDifferentElements)
	assert.Empty(t, report.DifferentElements)
	assert.Empty(t, report.HighestLevelDifferentElements)
}

// Two pages differing only in one <p>'s text, where the shared parent also
// has a non-differing child: the collapse must stop at the <p> itself.
func TestCompareReportsDifferingLeaf(t *testing.T) {
	page := `<html><head><title>T</title></head><body>
		<div id="x"><p>Hello</p><p class="m">%s</p></div>
	</body></html>`

	report, err := New().Compare(convertPages(t,
		fmt.Sprintf(page, "1727.25 mm"),
		fmt.Sprintf(page, "1700.00 mm")))
	require.NoError(t, err)

	// Carriers whose concatenated text differs are part of the raw list.
	assert.ElementsMatch(t,
		[]string{"body", "div#x", "div#x > p.m"},
		selectors(report.DifferentElements))

	require.Len(t, report.HighestLevelDifferentElements, 1)
	rec := report.HighestLevelDifferentElements[0]
	assert.Equal(t, "div#x > p.m", rec.Selector)
	assert.Equal(t, types.KindDiffering, rec.Kind)
	assert.Equal(t, map[string]string{
		"0": "1727.25 mm",
		"1": "1700.00 mm",
	}, rec.ContentByPage)

	assert.Equal(t, 3, report.Summary.TotalDifferentElements)
	assert.Equal(t, 1, report.Summary.HighestLevelDifferentElements)
}

// When the differing <p> is the parent's only leaf child, the collapse must
// ride up to the parent's id selector.
func TestCompareCollapsesToParent(t *testing.T) {
	page := `<html><head><title>T</title></head><body>
		<div id="x"><p class="m">%s</p></div>
	</body></html>`

	report, err := New().Compare(convertPages(t,
		fmt.Sprintf(page, "1727.25 mm"),
		fmt.Sprintf(page, "1700.00 mm")))
	require.NoError(t, err)

	require.Len(t, report.HighestLevelDifferentElements, 1)
	rec := report.HighestLevelDifferentElements[0]
	assert.Equal(t, "div#x", rec.Selector)
	assert.Equal(t, "1727.25 mm", rec.ContentByPage["0"])
	assert.Equal(t, "1700.00 mm", rec.ContentByPage["1"])
}

// A selector present on exactly one page is itself a difference and must
// never be dropped from the report.
func TestCompareIncludesSinglePageElements(t *testing.T) {
	pageA := `<html><head><title>A</title></head><body>
		<p>Same</p>
		<div id="Div2">Spec: 5kg</div>
	</body></html>`
	pageB := `<html><head><title>B</title></head><body>
		<p>Same</p>
	</body></html>`

	report, err := New().Compare(convertPages(t, pageA, pageB))
	require.NoError(t, err)

	assert.Contains(t, selectors(report.DifferentElements), "div#Div2")

	require.Len(t, report.HighestLevelDifferentElements, 1)
	rec := report.HighestLevelDifferentElements[0]
	assert.Equal(t, "div#Div2", rec.Selector)
	assert.Equal(t, types.KindUnique, rec.Kind)
	assert.Equal(t, "Spec: 5kg", rec.ContentByPage["0"])
	_, onPageB := rec.ContentByPage["1"]
	assert.False(t, onPageB, "absent page must not appear in content_by_page")
}

func TestCompareImageSignatures(t *testing.T) {
	page := `<html><head><title>T</title></head><body>
		<div id="hero"><img src="%s"></div>
	</body></html>`

	report, err := New().Compare(convertPages(t,
		fmt.Sprintf(page, "v1.png"),
		fmt.Sprintf(page, "v2.png")))
	require.NoError(t, err)

	require.Len(t, report.HighestLevelDifferentElements, 1)
	rec := report.HighestLevelDifferentElements[0]
	assert.Equal(t, "div#hero", rec.Selector)
	assert.Equal(t, "image:v1.png", rec.ContentByPage["0"])
	assert.Equal(t, "image:v2.png", rec.ContentByPage["1"])
}

// A node can be a leaf on one page and a parent on another. The collapsed
// record must still carry both pages' content; a missing key in
// content_by_page means the selector does not occur on that page at all.
func TestCompareLeafAndCarrierAcrossPages(t *testing.T) {
	report, err := New().Compare(convertPages(t,
		`<html><head><title>T</title></head><body><div id="x">text</div></body></html>`,
		`<html><head><title>T</title></head><body><div id="x"><p>other</p></div></body></html>`))
	require.NoError(t, err)

	require.Len(t, report.HighestLevelDifferentElements, 1)
	rec := report.HighestLevelDifferentElements[0]
	assert.Equal(t, "div#x", rec.Selector)
	assert.Equal(t, types.KindDiffering, rec.Kind)
	assert.Equal(t, map[string]string{
		"0": "text",
		"1": "other",
	}, rec.ContentByPage)
}

func TestCompareRejectsTooFewPages(t *testing.T) {
	pages := convertPages(t, `<html><body><p>x</p></body></html>`)

	_, err := New().Compare(pages)
	assert.ErrorIs(t, err, ErrEmptyComparison)

	_, err = New().Compare(nil)
	assert.ErrorIs(t, err, ErrEmptyComparison)
}

func TestCompareRejectsMissingPage(t *testing.T) {
	pages := convertPages(t,
		`<html><body><p>x</p></body></html>`,
		`<html><body><p>y</p></body></html>`)
	pages[1] = nil

	_, err := New().Compare(pages)
	var missing *MissingPageError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)

	pages = convertPages(t,
		`<html><body><p>x</p></body></html>`,
		`<html><body><p>y</p></body></html>`)
	pages[0].DomTree = nil

	_, err = New().Compare(pages)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, missing.Index)
}

func TestSelectorList(t *testing.T) {
	page := `<html><head><title>T</title></head><body>
		<div id="x"><p class="m">%s</p></div>
	</body></html>`

	report, err := New().Compare(convertPages(t,
		fmt.Sprintf(page, "a"),
		fmt.Sprintf(page, "b")))
	require.NoError(t, err)

	assert.Equal(t, []string{"div#x"}, report.SelectorList())
}

func TestComparePageInfo(t *testing.T) {
	report, err := New().Compare(convertPages(t,
		`<html><head><title>First</title></head><body><p>a</p></body></html>`,
		`<html><head><title>Second</title></head><body><p>b</p></body></html>`))
	require.NoError(t, err)

	require.Len(t, report.Pages, 2)
	assert.Equal(t, 0, report.Pages[0].ID)
	assert.Equal(t, "First", report.Pages[0].Title)
	assert.Equal(t, "https://example.com/p0", report.Pages[0].URL)
	assert.Equal(t, 1, report.Pages[1].ID)
	assert.Equal(t, "Second", report.Pages[1].Title)
}

func TestMissingPageErrorMessage(t *testing.T) {
	err := &MissingPageError{Index: 2, Reason: "file not found"}
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "file not found")
	assert.False(t, errors.Is(err, ErrEmptyComparison))
}

package types

import "strconv"

// Difference kinds.
const (
    KindDiffering = "differing" // present on >=2 pages with unequal content
    KindUnique    = "unique"    // present on exactly one page
)

// Identifies one compared page in a report.
type PageInfo struct {
    ID    int    `json:"id"`
    URL   string `json:"url"`
    Title string `json:"title"`
}

// Aggregate counts for one comparison run.
type Summary struct {
    TotalPagesCompared            int `json:"total_pages_compared"`
    TotalDifferentElements        int `json:"total_different_elements"`
    HighestLevelDifferentElements int `json:"highest_level_different_elements"`
}

// One reported divergence. ContentByPage is keyed by the decimal page id;
// a page missing from the map did not contain the selector at all.
type DifferenceRecord struct {
    Selector      string            `json:"selector"`
    Kind          string            `json:"kind"`
    ContentByPage map[string]string `json:"content_by_page"`
}

// The full result of comparing N pages.
type ComparisonReport struct {
    Summary                       Summary            `json:"summary"`
    Pages                         []PageInfo         `json:"pages"`
    DifferentElements             []DifferenceRecord `json:"different_elements"`
    HighestLevelDifferentElements []DifferenceRecord `json:"highest_level_different_elements"`
}

// Returns just the collapsed selectors, for use as a targeting list by
// downstream consumers.
func (r *ComparisonReport) SelectorList() []string {
    selectors := make([]string, 0, len(r.HighestLevelDifferentElements))
    for _, rec := range r.HighestLevelDifferentElements {
        selectors = append(selectors, rec.Selector)
    }
    return selectors
}

// PageKey converts a page index to the string key used in ContentByPage.
func PageKey(id int) string {
    return strconv.Itoa(id)
}

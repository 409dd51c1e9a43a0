// Package cache stores converted page documents as JSON files so repeated
// comparisons of the same pages skip re-conversion. File names derive from a
// short hash of the page URL, so a URL always maps to the same cache file.
package cache

import (
    "encoding/json"
    "fmt"
    "hash/fnv"
    "os"
    "path/filepath"

    "pagediff/internal/pkg/types"
)

// FileName returns the cache file name for a page URL.
func FileName(url string) string {
    h := fnv.New32a()
    h.Write([]byte(url))
    return fmt.Sprintf("page_%08x.json", h.Sum32())
}

// Store writes the document to dir, creating dir if needed. Returns the
// written file path.
func Store(dir string, doc *types.PageDocument) (string, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return "", fmt.Errorf("creating cache dir: %w", err)
    }
    data, err := json.MarshalIndent(doc, "", "  ")
    if err != nil {
        return "", fmt.Errorf("encoding page document: %w", err)
    }
    path := filepath.Join(dir, FileName(doc.URL))
    if err := os.WriteFile(path, data, 0o644); err != nil {
        return "", fmt.Errorf("writing cache file: %w", err)
    }
    return path, nil
}

// Load reads the cached document for url. The second return value reports
// whether a cache entry existed.
func Load(dir, url string) (*types.PageDocument, bool, error) {
    path := filepath.Join(dir, FileName(url))
    data, err := os.ReadFile(path)
    if os.IsNotExist(err) {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, fmt.Errorf("reading cache file: %w", err)
    }
    var doc types.PageDocument
    if err := json.Unmarshal(data, &doc); err != nil {
        return nil, false, fmt.Errorf("decoding cache file %s: %w", path, err)
    }
    return &doc, true, nil
}

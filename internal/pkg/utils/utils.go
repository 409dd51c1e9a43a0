package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalizes a page URL so equivalent spellings map to the same cache entry.
// Prepends the https scheme when missing and strips the trailing slash.
func NormalizeURL(pageURL string) (string, error) {
    if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
        pageURL = "https://" + pageURL
    }
    parsedURL, err := url.Parse(pageURL)
    if err != nil {
        return "", fmt.Errorf("invalid URL %v: %v", pageURL, err)
    }
    parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")
    return parsedURL.String(), nil
}
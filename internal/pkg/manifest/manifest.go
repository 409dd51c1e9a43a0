// Package manifest reads lists of comparison inputs from plain text files,
// one input per line.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads the inputs listed in the file at path. Blank lines and lines
// starting with # are skipped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input list: %w", err)
	}
	defer f.Close()

	var inputs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input list %s: %w", path, err)
	}
	return inputs, nil
}

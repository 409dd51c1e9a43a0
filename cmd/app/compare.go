package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagediff/internal/pkg/cache"
	"pagediff/internal/pkg/differ"
	"pagediff/internal/pkg/filter"
	"pagediff/internal/pkg/manifest"
	"pagediff/internal/pkg/pool"
	"pagediff/internal/pkg/types"
)

func newCompareCmd() *cobra.Command {
	var (
		output        string
		noiseConfig   string
		cacheDir      string
		fromFile      string
		pretty        bool
		showSelectors bool
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "compare <page> <page> [page...]",
		Short: "Compare converted pages and report differing elements",
		Long: `Compare two or more pages selector by selector. Inputs ending in .json are
loaded as converted page documents; any other input is read as an HTML file
and converted first. Additional inputs can be listed in a file, one per line.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			inputs := args
			if fromFile != "" {
				listed, err := manifest.Load(fromFile)
				if err != nil {
					return err
				}
				inputs = append(inputs, listed...)
			}
			if len(inputs) < 2 {
				return fmt.Errorf("need at least two pages to compare, got %d", len(inputs))
			}

			pages, err := loadPages(cmd.Context(), inputs, cacheDir, workers, log)
			if err != nil {
				return err
			}

			opts := []differ.Option{differ.WithLogger(log)}
			if noiseConfig != "" {
				cfg, err := differ.LoadNoiseConfig(noiseConfig)
				if err != nil {
					return err
				}
				opts = append(opts, differ.WithNoiseFilter(differ.NewNoiseFilter(cfg)))
			}

			report, err := differ.New(opts...).Compare(pages)
			if err != nil {
				return err
			}

			if showSelectors {
				return writeJSON(output, report.SelectorList(), pretty)
			}
			return writeJSON(output, report, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file path (default: stdout)")
	cmd.Flags().StringVar(&noiseConfig, "noise-config", "", "YAML file with noise patterns to exclude before comparing")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for cached page documents")
	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "file listing additional inputs, one per line")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON output")
	cmd.Flags().BoolVar(&showSelectors, "show-selectors", false, "emit only the collapsed selector list")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent conversions of HTML inputs")
	return cmd
}

// loadPages loads every input on a bounded worker pool, keeping results in
// input order. Any failed input aborts the whole comparison.
func loadPages(ctx context.Context, inputs []string, cacheDir string, workers int, log *zap.Logger) ([]*types.PageDocument, error) {
	pages := make([]*types.PageDocument, len(inputs))
	errs := pool.New(workers).Run(ctx, len(inputs), func(_ context.Context, i int) error {
		doc, err := loadPage(inputs[i], cacheDir, log)
		pages[i] = doc
		return err
	})

	for i, err := range errs {
		if err != nil {
			return nil, &differ.MissingPageError{Index: i, Reason: err.Error()}
		}
	}
	return pages, nil
}

// loadPage reads one comparison input: a converted JSON document, or an HTML
// file converted on the fly (with an optional document cache keyed by path).
func loadPage(path, cacheDir string, log *zap.Logger) (*types.PageDocument, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var doc types.PageDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if doc.DomTree == nil {
			return nil, fmt.Errorf("%s has no dom_tree", path)
		}
		return &doc, nil
	}

	if cacheDir != "" {
		doc, ok, err := cache.Load(cacheDir, path)
		if err != nil {
			log.Warn("cache read failed, converting from source", zap.Error(err))
		} else if ok {
			log.Debug("reusing cached document", zap.String("input", path))
			return doc, nil
		}
	}

	htmlBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, diags, err := filter.New(filter.WithLogger(log)).Convert(string(htmlBytes), filter.Meta{URL: path})
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		log.Warn("nodes dropped during conversion",
			zap.String("input", path),
			zap.Int("dropped", len(diags)))
	}

	if cacheDir != "" {
		if _, err := cache.Store(cacheDir, doc); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}
	return doc, nil
}

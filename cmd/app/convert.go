package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagediff/internal/pkg/filter"
	"pagediff/internal/pkg/utils"
)

func newConvertCmd() *cobra.Command {
	var (
		output    string
		pageURL   string
		pageTitle string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input.html>",
		Short: "Convert an HTML file to its filtered JSON DOM tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			htmlBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			meta := filter.Meta{Title: pageTitle}
			if pageURL != "" {
				normalized, err := utils.NormalizeURL(pageURL)
				if err != nil {
					return err
				}
				meta.URL = normalized
			}

			converter := filter.New(filter.WithLogger(log))
			doc, diags, err := converter.Convert(string(htmlBytes), meta)
			if err != nil {
				return err
			}
			for _, diag := range diags {
				log.Warn("node dropped during conversion",
					zap.String("tag", diag.Tag),
					zap.String("reason", diag.Reason))
			}
			log.Info("conversion finished",
				zap.String("input", args[0]),
				zap.Int("total_elements", doc.TotalElements))

			return writeJSON(output, doc, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file path (default: stdout)")
	cmd.Flags().StringVar(&pageURL, "url", "", "source URL recorded in the document metadata")
	cmd.Flags().StringVar(&pageTitle, "title", "", "title override recorded in the document metadata")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON output")
	return cmd
}

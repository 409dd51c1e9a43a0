package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagediff/internal/pkg/logging"
)

var flagVerbose bool

func main() {
	root := &cobra.Command{
		Use:           "pagediff",
		Short:         "Filter HTML pages into JSON DOM trees and diff them across pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newConvertCmd(), newCompareCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	log, err := logging.New(logging.Config{Level: level, Development: true})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// writeJSON marshals payload to the output file, or stdout when path is "".
func writeJSON(path string, payload any, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

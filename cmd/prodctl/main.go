// Command prodctl runs product generation against event-set files without
// the Kafka service.
//
// Usage:
//
//	prodctl sample --hazard FF.A --ugc COC005 > request.json
//	prodctl validate request.json
//	prodctl generate --issue --db hazards.db request.json
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prodctl",
		Short:         "Generate hazard products from event-set files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.AddCommand(newGenerateCmd(), newValidateCmd(), newSampleCmd())
	return root
}

// readEventSet decodes the event set at path, or stdin when path is "-".
func readEventSet(cmd *cobra.Command, path string) (domain.EventSet, error) {
	var set domain.EventSet
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return set, fmt.Errorf("open event set: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return set, fmt.Errorf("decode event set %s: %w", path, err)
	}
	return set, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

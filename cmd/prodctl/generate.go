package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-product-generator/internal/adapter/metadatafile"
	"github.com/couchcryptid/hazard-product-generator/internal/adapter/riverforecast"
	"github.com/couchcryptid/hazard-product-generator/internal/adapter/sqlite"
	"github.com/couchcryptid/hazard-product-generator/internal/config"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [file|-]",
		Short: "Generate products for an event set and print them as JSON",
		Long: `Reads an event set and prints the generated product dictionaries.

With --issue the VTEC records and event history are written to --db.
The default database is in memory, so nothing outlives the command.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	cmd.Flags().Bool("issue", false, "issue the products instead of previewing them")
	cmd.Flags().String("site", "", "TOML site file (default: built-in site)")
	cmd.Flags().String("db", ":memory:", "SQLite database for events and VTEC records")
	cmd.Flags().String("metadata-dir", "", "directory of hazard metadata YAML files")
	cmd.Flags().String("river-url", "", "river forecast service base URL")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	issue, _ := cmd.Flags().GetBool("issue")
	sitePath, _ := cmd.Flags().GetString("site")
	dbPath, _ := cmd.Flags().GetString("db")
	metadataDir, _ := cmd.Flags().GetString("metadata-dir")
	riverURL, _ := cmd.Flags().GetString("river-url")
	level, _ := cmd.Flags().GetString("log-level")

	set, err := readEventSet(cmd, args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("issue") {
		set.Attributes.IssueFlag = issue
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
	metrics := observability.NewMetricsForTesting()

	site, err := config.LoadSite(sitePath)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	collab := generator.Collaborators{Events: store, Records: store}
	if metadataDir != "" {
		md, err := metadatafile.Open(metadataDir, 64, metrics)
		if err != nil {
			return err
		}
		collab.Metadata = md
	}
	if riverURL != "" {
		collab.Rivers = riverforecast.NewClient(riverURL, 10*time.Second, metrics, logger)
	}

	gen, err := generator.New(site, collab, logger, metrics)
	if err != nil {
		return err
	}
	out, err := gen.Generate(cmd.Context(), set)
	if err != nil {
		return err
	}
	return writeIndented(cmd.OutOrStdout(), out)
}

// Package cli implements the zonelink command-line interface.
//
// This package provides commands for computing area-weighted correspondence
// tables between two zone systems, validating zone geometry, rendering
// correspondence graphs, serving the pipeline over HTTP, and managing the
// result cache. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Compute the weight table for a source/target zone pair
//   - validate: Repair and check one zone collection, reporting skipped zones
//   - render: Draw a computed table as a bipartite source->target graph
//   - serve: Expose the pipeline as an HTTP service
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/transportlab/zonelink/pkg/buildinfo"
)

// Execute runs the zonelink CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "zonelink",
		Short: "zonelink computes area-weighted zone correspondence tables",
		Long: `zonelink builds correspondence tables between two incompatible zone
systems: for each source zone it finds the intersecting target zones and
derives normalized weights from the overlap areas, so data collected against
one set of boundaries can be reapportioned onto another.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}

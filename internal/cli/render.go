package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transportlab/zonelink/pkg/geoio"
	"github.com/transportlab/zonelink/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path
	format    string  // "svg" or "dot"
	minWeight float64 // hide entries below this weight
	detailed  bool    // label edges with their numeric weight
}

// newRenderCmd creates the render command that draws a computed weight table
// as a bipartite source->target graph.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <table.json>",
		Short: "Render a weight table as a correspondence graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <table>.svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg or dot")
	cmd.Flags().Float64Var(&opts.minWeight, "min-weight", 0, "hide correspondences below this weight")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label edges with their weight")

	return cmd
}

// validateRenderFormat checks that the format is either "svg" or "dot".
func validateRenderFormat(f string) error {
	if f != "svg" && f != "dot" {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", f)
	}
	return nil
}

func runRender(ctx context.Context, tablePath string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	f, err := os.Open(tablePath)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	table, err := geoio.ReadTableJSON(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", tablePath, err)
	}
	logger.Debug("loaded table", "entries", len(table))

	dot := render.ToDOT(table, render.Options{
		MinWeight: opts.minWeight,
		Detailed:  opts.detailed,
	})

	output := opts.output
	if output == "" {
		base := strings.TrimSuffix(tablePath, filepath.Ext(tablePath))
		output = base + "." + opts.format
	}

	var data []byte
	if opts.format == "dot" {
		data = []byte(dot)
	} else {
		prog := newProgress(logger)
		data, err = render.RenderSVG(dot)
		if err != nil {
			return err
		}
		prog.done("Rendered graph")
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printSuccess("Rendered %d correspondences", len(table))
	printFile(output)
	return nil
}

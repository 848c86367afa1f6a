package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transportlab/zonelink/pkg/geoio"
	"github.com/transportlab/zonelink/pkg/geometry"
)

// newValidateCmd creates the validate command that repairs a single zone
// collection and reports which zones would be skipped by a build.
func newValidateCmd() *cobra.Command {
	var idProperty string

	cmd := &cobra.Command{
		Use:   "validate <zones.geojson>",
		Short: "Check and repair a zone collection, reporting unusable zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], idProperty)
		},
	}

	cmd.Flags().StringVar(&idProperty, "id-property", geoio.DefaultIDProperty, "feature property holding the zone ID")

	return cmd
}

func runValidate(ctx context.Context, path string, idProperty string) error {
	logger := loggerFromContext(ctx)

	zones, err := geoio.ImportZones(path, geoio.ReadOptions{IDProperty: idProperty})
	if err != nil {
		return err
	}
	logger.Debug("loaded zones", "count", zones.Len())

	records, diags := geometry.ValidateCollection(zones, geometry.DefaultAreaEpsilon)

	printSuccess("%d of %d zones valid", len(records), zones.Len())
	var total float64
	for _, rec := range records {
		total += rec.Area
	}
	printDetail("total area %.6g", total)

	if len(diags) > 0 {
		printWarning("%d zones would be skipped", len(diags))
		for _, d := range diags {
			printDetail("%s: %s", d.ZoneID, d.Reason)
		}
		return fmt.Errorf("%d invalid zones", len(diags))
	}
	return nil
}

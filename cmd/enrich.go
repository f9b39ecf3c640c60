package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/pkg/geo"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
)

func newEnrichCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Geocode restaurants that are missing coordinates",
		Long: `Geocode restaurants that are missing coordinates.

Looks up restaurants without latitude/longitude against the places API and
stores the top match's coordinates and place id. Restaurants that already
have coordinates are never overwritten.

Requires TT_PLACES_API_KEY (or places.api_key in the config file).

Examples:
  tastetrail enrich
  tastetrail enrich --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.Places.APIKey == "" {
				return fmt.Errorf("places api key is required (TT_PLACES_API_KEY)")
			}

			client := geo.NewHTTPPlacesClient(rt.cfg.Places.APIKey, rt.cfg.Places.BaseURL, rt.cfg.Places.RequestTimeout)
			enricher := geo.NewEnricher(client, restaurants.NewRepository(rt.pool), rt.log)

			report, err := enricher.EnrichBatch(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned:  %d\n", report.Scanned)
			fmt.Fprintf(out, "Enriched: %d\n", report.Enriched)
			fmt.Fprintf(out, "Failed:   %d\n", report.Failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum restaurants to enrich (default 25)")
	return cmd
}

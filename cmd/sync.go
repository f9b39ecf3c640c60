package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/pkg/influencers"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

// Sync command flags.
var (
	syncChannelID string
	syncName      string
	syncHandle    string
	syncLimit     int
)

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync an influencer's channel uploads into the video queue",
		Long: `Sync an influencer's recent channel uploads into the video queue.

Fetches upload metadata from the video platform, filters out videos that are
too short or denylisted by title, and upserts the rest as unprocessed videos.
The influencer record is created or updated from --name and --handle.

Requires TT_YOUTUBE_API_KEY (or youtube.api_key in the config file).

Examples:
  tastetrail sync --channel UCyEd6QBSgat5kkC6svyjudA --name "Mark Wiens"
  tastetrail sync --channel UCabc123 --name "Best Ever Food" --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.YouTube.APIKey == "" {
				return fmt.Errorf("youtube api key is required (TT_YOUTUBE_API_KEY)")
			}

			inf := &influencers.Influencer{
				ChannelID: syncChannelID,
				Name:      syncName,
				Handle:    syncHandle,
			}
			if err := influencers.NewRepository(rt.pool).Upsert(cmd.Context(), inf); err != nil {
				return fmt.Errorf("upserting influencer: %w", err)
			}

			clientOpts := []videos.YouTubeClientOption{}
			if rt.cfg.YouTube.BaseURL != "" {
				clientOpts = append(clientOpts, videos.WithYouTubeBaseURL(rt.cfg.YouTube.BaseURL))
			}
			provider := videos.NewYouTubeClient(rt.cfg.YouTube.APIKey, rt.cfg.YouTube.RequestTimeout, clientOpts...)

			syncer := videos.NewSyncer(provider, videos.NewRepository(rt.pool), rt.log)
			report, err := syncer.SyncChannel(cmd.Context(), syncChannelID, inf.ID, syncLimit)
			if err != nil {
				return fmt.Errorf("syncing channel %s: %w", syncChannelID, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Channel:  %s\n", report.ChannelID)
			fmt.Fprintf(out, "Fetched:  %d\n", report.Fetched)
			fmt.Fprintf(out, "Suitable: %d\n", report.Suitable)
			fmt.Fprintf(out, "Upserted: %d\n", report.Upserted)
			if len(report.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped:  %d\n", len(report.Skipped))
				for _, id := range report.Skipped {
					fmt.Fprintf(out, "  - %s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&syncChannelID, "channel", "", "channel id to sync (required)")
	cmd.Flags().StringVar(&syncName, "name", "", "influencer display name (required)")
	cmd.Flags().StringVar(&syncHandle, "handle", "", "influencer handle, e.g. @markwiens")
	cmd.Flags().IntVar(&syncLimit, "limit", 25, "maximum uploads to fetch")
	_ = cmd.MarkFlagRequired("channel")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

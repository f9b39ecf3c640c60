package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/pkg/pipeline"
)

// Process command flags.
var (
	processBatch bool
	processLimit int
)

func newProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [video-id]",
		Short: "Run the extraction pipeline for one video or a batch",
		Long: `Run the extraction pipeline: transcript acquisition, LLM extraction,
timestamp reconciliation, restaurant resolution, and recommendation
persistence.

With a video id argument, processes that single video. With --batch,
processes the oldest unprocessed suitable videos up to --limit. A failed
video is marked with its error and skipped by future batches until an
operator resets it.

Examples:
  tastetrail process 4f6b0c0a-8a8e-4a3e-9d2e-1f2a3b4c5d6e
  tastetrail process --batch
  tastetrail process --batch --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			p := rt.buildPipeline(nil)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid video id %q: %w", args[0], err)
				}
				result, err := p.ProcessVideo(cmd.Context(), id)
				if err != nil {
					return err
				}
				printResult(out, result)
				return nil
			}

			if !processBatch {
				return fmt.Errorf("either a video id or --batch is required")
			}

			report, err := p.ProcessBatch(cmd.Context(), processLimit)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Total:     %d\n", report.Total)
			fmt.Fprintf(out, "Processed: %d\n", report.Processed)
			fmt.Fprintf(out, "Failed:    %d\n", report.Failed)
			for _, r := range report.Results {
				printResult(out, r)
			}
			for _, f := range report.Failures {
				fmt.Fprintf(out, "  %s FAILED: %s\n", f.VideoID, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&processBatch, "batch", false, "process a batch of unprocessed videos")
	cmd.Flags().IntVar(&processLimit, "limit", 0, "batch size (default from config)")

	return cmd
}

func printResult(out io.Writer, r *pipeline.Result) {
	fmt.Fprintf(out, "  %s source=%s candidates=%d created=%d skipped=%d errors=%d\n",
		r.VideoID, r.TranscriptSource, r.Candidates, r.EdgesCreated, r.EdgesSkipped, r.CandidateErrors)
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [graph-id]",
	Short: "Rebuild concept documents from the graph API",
	Long: `Rebuilds the index documents of one graph when a graph ID is given.
Otherwise every graph is rebuilt. Existing documents are overwritten,
never removed.

While serve is running the job is queued on it instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	var graphID domain.GraphID
	if len(args) > 0 {
		graphID = domain.GraphID(args[0])
	}

	if err := lockWriter(); err != nil {
		if errors.Is(err, errWriterBusy) {
			return forwardReindex(cmd, graphID)
		}
		return err
	}
	if err := requireSync(); err != nil {
		return err
	}
	ctx := cmd.Context()

	if graphID != "" {
		cmd.Printf("Reindexing graph: %s...\n", graphID)

		if err := changeDispatcher.ReindexGraph(ctx, graphID); err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}

		cmd.Printf("Graph %s reindexed.\n", graphID)
	} else {
		cmd.Println("Reindexing all graphs...")

		if err := changeDispatcher.FullReindex(ctx); err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}

		cmd.Println("All graphs reindexed.")
	}

	printLastRun(cmd)
	return nil
}

func forwardReindex(cmd *cobra.Command, graphID domain.GraphID) error {
	remote, err := newRemote()
	if err != nil {
		return err
	}
	accepted, err := remote.Reindex(cmd.Context(), graphID)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	printQueued(cmd, accepted)
	return nil
}

// printLastRun prints the counters of the run that just finished.
func printLastRun(cmd *cobra.Command) {
	last := syncEngine.Status().Last
	if last == nil {
		return
	}
	cmd.Printf("%d documents upserted, %d deleted", last.Upserts, last.Deletes)
	if last.IndexErrors > 0 {
		cmd.Printf(", %d bulk failures", last.IndexErrors)
	}
	cmd.Printf(" in %s\n", formatDuration(last.Duration()))
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent sync runs",
	Long: `Lists the most recent sync runs from the run history. Output is a table
when writing to a terminal and JSON otherwise; --json forces JSON.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntP("limit", "n", 10, "number of runs to show (0 = all)")
	statusCmd.Flags().Bool("json", false, "print JSON even on a terminal")
	rootCmd.AddCommand(statusCmd)
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type statusOutput struct {
	domain.SyncStatus
	Runs []domain.SyncRun `json:"runs"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}
	forceJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}
	if limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	if err := requireSync(); err != nil {
		return err
	}

	runs, err := syncEngine.History(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []domain.SyncRun{}
	}
	out := statusOutput{SyncStatus: syncEngine.Status(), Runs: runs}

	w := cmd.OutOrStdout()
	if forceJSON || !isTerminal(w) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printRunTable(w, out)
}

func printRunTable(w io.Writer, out statusOutput) error {
	if out.Running && out.Current != nil {
		fmt.Fprintf(w, "Running: %s", out.Current.Kind)
		if out.Current.GraphID != "" {
			fmt.Fprintf(w, " (%s)", out.Current.GraphID)
		}
		fmt.Fprintf(w, " since %s\n\n", out.Current.StartedAt.Local().Format(time.DateTime))
	}

	if len(out.Runs) == 0 {
		fmt.Fprintln(w, "No sync runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tKIND\tGRAPH\tUPSERTS\tDELETES\tDURATION\tERROR")
	for _, run := range out.Runs {
		graph := string(run.GraphID)
		if graph == "" {
			graph = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Kind,
			graph,
			run.Upserts,
			run.Deletes,
			formatDuration(run.Duration()),
			run.Error,
		)
	}
	return tw.Flush()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

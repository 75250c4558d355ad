package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

var applyCmd = &cobra.Command{
	Use:   "apply <event-file|->",
	Short: "Apply a change notification",
	Long: `Reads a change notification from a file, or from stdin when the argument
is "-", and applies it to the index exactly as the service would. While
serve is running the event is queued on it instead.

Example event:
  {"type":"Saved","body":{"nodes":[{"id":"c1","type":{"id":"Concept","graph":{"id":"g1"}}}]}}`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	data, err := readEvent(cmd, args[0])
	if err != nil {
		return err
	}

	event, err := domain.ParseChangeEvent(data)
	if err != nil {
		return err
	}

	if err := lockWriter(); err != nil {
		if errors.Is(err, errWriterBusy) {
			return forwardEvent(cmd, event)
		}
		return err
	}
	if err := requireSync(); err != nil {
		return err
	}

	if err := changeDispatcher.Dispatch(cmd.Context(), event); err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	cmd.Printf("Applied %s event with %d nodes.\n", event.Type, len(event.Body.Nodes))
	return nil
}

func forwardEvent(cmd *cobra.Command, event domain.ChangeEvent) error {
	remote, err := newRemote()
	if err != nil {
		return err
	}
	accepted, err := remote.Notify(cmd.Context(), event)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}
	printQueued(cmd, accepted)
	return nil
}

func readEvent(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return data, nil
}

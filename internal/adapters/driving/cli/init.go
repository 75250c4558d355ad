package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the concept index and fill it",
	Long: `Creates the concept index with its settings and mapping when it does not
exist and reindexes every graph into it. An existing index is left alone
unless --delete is given, in which case every document is removed and all
graphs are reindexed. Refuses to run while serve is running.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("delete", false, "delete every document before initialising")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	deleteExisting, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return fmt.Errorf("getting delete flag: %w", err)
	}
	if err := lockWriter(); err != nil {
		return refuseWhileServing(err, "init")
	}
	if err := requireSync(); err != nil {
		return err
	}

	if deleteExisting {
		cmd.Println("Deleting existing documents and initialising index...")
	} else {
		cmd.Println("Initialising index...")
	}

	if err := changeDispatcher.InitIndex(cmd.Context(), deleteExisting); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	cmd.Println("Index initialised.")
	printLastRun(cmd)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupRetain int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all but the most recently modified sessions",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupRetain, "retain", 0,
		"How many sessions to keep (0 = configured default)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	deleted, err := a.manager.CleanupOldSessions(cmd.Context(), cleanupRetain)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d sessions\n", deleted)
	return nil
}

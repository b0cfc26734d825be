package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an exported project document as a new session",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading export file: %w", err)
	}

	p, err := a.manager.ImportProject(cmd.Context(), data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %q as session %s\n", p.Name, p.ID)
	return nil
}

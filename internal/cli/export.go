package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fasttrack/fasttrack/internal/project"
	"github.com/spf13/cobra"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a saved session to a portable project document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".",
		"Directory to write the export file to")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.manager.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, filename, err := project.Export(p)
	if err != nil {
		return err
	}

	path := filepath.Join(exportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Printf("exported %s to %s\n", args[0], path)
	return nil
}

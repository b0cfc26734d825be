package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.manager.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no saved sessions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tNAME\tCREATED\tLAST MODIFIED")
	for _, rec := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.SessionID, rec.Name,
			rec.Timestamp.Local().Format("2006-01-02 15:04"),
			rec.LastModified.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

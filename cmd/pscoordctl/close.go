package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <path>",
	Short: "Close a file as if a client had just closed it in the editor",
	Long: `close drives Coordinator.CloseClientFile for path: it arms a
file-system watcher on the closed script (unless it is mixed-content),
decrements open-ref counts on its containing Configured/External projects,
and rebalances inferred projects for anything left orphaned. Closing an
unknown path is a no-op, matching the coordinator's own contract.`,
	Args: cobra.ExactArgs(1),
	Run:  runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	c.CloseClientFile(args[0])
	c.Flush()

	fmt.Printf("closed %s\n", args[0])
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pscoord/internal/coordinator"
)

var (
	applyOpens  []string
	applyCloses []string
)

var applyChangesCmd = &cobra.Command{
	Use:   "apply-changes",
	Short: "Apply a batch of opens and closes in the coordinator's fixed order",
	Long: `apply-changes drives Coordinator.ApplyChangesInOpenFiles with the given
--open and --close paths, applied in the batch order the coordinator
guarantees: opens, then edits, then closes. This debug CLI has no concept of
an in-progress edit buffer, so it always sends an empty edit list; no
pscoordctl command sends edits.`,
	Run: runApplyChanges,
}

func init() {
	applyChangesCmd.Flags().StringSliceVar(&applyOpens, "open", nil, "path to open (repeatable)")
	applyChangesCmd.Flags().StringSliceVar(&applyCloses, "close", nil, "path to close (repeatable)")
	rootCmd.AddCommand(applyChangesCmd)
}

func runApplyChanges(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	opens := make([]coordinator.OpenFileArg, 0, len(applyOpens))
	for _, p := range applyOpens {
		var contents *string
		if data, err := os.ReadFile(p); err == nil {
			s := string(data)
			contents = &s
		}
		opens = append(opens, coordinator.OpenFileArg{Path: p, Contents: contents})
	}

	c.ApplyChangesInOpenFiles(opens, nil, applyCloses)

	fmt.Printf("applied %d open(s), %d close(s)\n", len(opens), len(applyCloses))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pscoord/internal/coordinator"
)

var externalProjectCmd = &cobra.Command{
	Use:   "external-project",
	Short: "Manage externally declared projects",
}

var (
	externalRoots         []string
	externalCompileOnSave bool
)

var externalAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Declare or update an External project with --roots",
	Long: `add drives Coordinator.OpenExternalProject: the named External project's
root list is replaced with --roots, safelist rules are applied to it if one
is loaded, and any open file that only the old root list covered is
rebalanced into an Inferred project.`,
	Args: cobra.ExactArgs(1),
	Run:  runExternalAdd,
}

var externalRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Close an External project",
	Long: `remove drives Coordinator.CloseExternalProject: every root is detached,
adopted config files are released, and orphaned open files are rebalanced
into Inferred projects.`,
	Args: cobra.ExactArgs(1),
	Run:  runExternalRemove,
}

func init() {
	externalAddCmd.Flags().StringSliceVar(&externalRoots, "roots", nil, "root file paths (repeatable, comma-separated)")
	externalAddCmd.Flags().BoolVar(&externalCompileOnSave, "compile-on-save", false, "set the compileOnSave flag")
	externalProjectCmd.AddCommand(externalAddCmd)
	externalProjectCmd.AddCommand(externalRemoveCmd)
	rootCmd.AddCommand(externalProjectCmd)
}

func runExternalAdd(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	name := args[0]
	files := make([]coordinator.ExternalFile, 0, len(externalRoots))
	for _, r := range externalRoots {
		files = append(files, coordinator.ExternalFile{Path: r})
	}

	c.OpenExternalProject(coordinator.ExternalProjectSpec{
		Name:          name,
		RootFiles:     files,
		CompileOnSave: externalCompileOnSave,
	})

	fmt.Printf("external project %q now has %d root(s)\n", name, len(files))
}

func runExternalRemove(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	c.CloseExternalProject(args[0])
	fmt.Printf("closed external project %q\n", args[0])
}

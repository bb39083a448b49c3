package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pscoord/internal/coordinator"
)

var (
	openProjectRoot string
	openFormat      string
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a file as if a client had just opened it in the editor",
	Long: `open drives Coordinator.OpenClientFile for path: it creates or reuses
the script, runs upward config search if no External project already claims
it, and rebalances inferred projects so the file ends up in exactly one
project set.`,
	Args: cobra.ExactArgs(1),
	Run:  runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openProjectRoot, "project-root", "", "bound the upward config search at this directory")
	openCmd.Flags().StringVar(&openFormat, "format", "human", "output format (human, json)")
	rootCmd.AddCommand(openCmd)
}

type openResult struct {
	Path           string `json:"path"`
	ConfigFileName string `json:"configFileName,omitempty"`
	HasProject     bool   `json:"hasProject"`
}

func runOpen(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	path := args[0]
	var contents *string
	if data, err := os.ReadFile(path); err == nil {
		s := string(data)
		contents = &s
	}

	configFileName, ok := c.OpenClientFile(coordinator.OpenFileArg{
		Path:            path,
		Contents:        contents,
		ProjectRootPath: openProjectRoot,
	})
	c.Flush()

	out, err := FormatResponse(openResult{Path: path, ConfigFileName: configFileName, HasProject: ok}, OutputFormat(openFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

package main

import (
	"github.com/spf13/cobra"
)

const toolVersion = "0.1.0"

var (
	// repoRootFlag is the CLI --root flag value
	repoRootFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:     "pscoordctl",
	Short:   "pscoordctl drives a project-set coordinator from a terminal",
	Long: `pscoordctl is a debug CLI for the project-set coordinator: it lets a
developer open and close files, push external project declarations, load a
safelist, and inspect the resulting project set without a real editor client
attached. It is not the session wire protocol a real client speaks; it
drives the same coordinator package directly.`,
	Version: toolVersion,
}

func init() {
	rootCmd.SetVersionTemplate("pscoordctl version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "root", "", "repository root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "human", "log format: human, json")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var safelistCmd = &cobra.Command{
	Use:   "safelist",
	Short: "Manage the safelist applied to External project declarations",
}

var safelistLoadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Load a safelist file and install it",
	Args:  cobra.ExactArgs(1),
	Run:   runSafelistLoad,
}

var safelistResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the installed safelist",
	Args:  cobra.NoArgs,
	Run:   runSafelistReset,
}

func init() {
	safelistCmd.AddCommand(safelistLoadCmd)
	safelistCmd.AddCommand(safelistResetCmd)
	rootCmd.AddCommand(safelistCmd)
}

func runSafelistLoad(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	if err := c.LoadSafeList(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading safelist: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("loaded safelist %s\n", args[0])
}

func runSafelistReset(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	c.ResetSafeList()
	fmt.Println("safelist reset")
}

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Dump the current project set",
	Long: `status lists every project currently known to the coordinator: its kind,
key, root count, dirty flag and whether its language service is enabled.`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "output format (human, json)")
	rootCmd.AddCommand(statusCmd)
}

type projectStatus struct {
	Kind                   string `json:"kind"`
	Name                   string `json:"name"`
	RootCount              int    `json:"rootCount"`
	Dirty                  bool   `json:"dirty"`
	LanguageServiceEnabled bool   `json:"languageServiceEnabled"`
	OpenRefCount           int    `json:"openRefCount,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) {
	log := newLogger()
	c := mustGetCoordinator(log)

	projects := c.AllProjects()
	statuses := make([]projectStatus, 0, len(projects))
	for _, p := range projects {
		statuses = append(statuses, projectStatus{
			Kind:                   p.Key.Kind.String(),
			Name:                   p.Key.Name,
			RootCount:              len(p.Roots),
			Dirty:                  p.Dirty,
			LanguageServiceEnabled: p.LanguageServiceEnabled,
			OpenRefCount:           p.OpenRefCount,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Kind != statuses[j].Kind {
			return statuses[i].Kind < statuses[j].Kind
		}
		return statuses[i].Name < statuses[j].Name
	})

	out, err := FormatResponse(statuses, OutputFormat(statusFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

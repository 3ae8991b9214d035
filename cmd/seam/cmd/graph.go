package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seamui/seam/internal/diagram"
	"github.com/seamui/seam/internal/modgraph"
)

var (
	graphASCII   bool
	graphNoColor bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the module dependency graph",
	Long: `Graph analyzes the application without building and renders the module
dependency graph as a terminal diagram: per-entry dependency trees with
each module's directive classification, plus cycle diagnostics.

Example:
  seam graph --config seam.yaml --ascii`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphASCII, "ascii", false,
		"Use plain ASCII borders instead of box drawing")
	graphCmd.Flags().BoolVar(&graphNoColor, "no-color", false,
		"Disable colored output")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	builder := modgraph.NewBuilder(cfg.App.Root)
	g, err := builder.Build(cfg.App.ServerEntry, cfg.App.ClientEntry)
	if err != nil {
		return fmt.Errorf("graph analysis failed: %w", err)
	}

	cmd.Print(diagram.Render(g, &diagram.Options{
		UseColor: !graphNoColor,
		ASCII:    graphASCII,
	}))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/seamui/seam/internal/directive"
	"github.com/seamui/seam/internal/modgraph"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and application sources",
	Long: `Validate checks the configuration file and analyzes the application
sources without emitting any output.

Checks performed:
  - Configuration syntax and required fields
  - Entry modules exist and resolve
  - Directive placement (conflicting directives are rejected)
  - All static imports resolve
  - Dynamic import specifiers are literal
  - Import cycle detection

Example:
  seam validate --config seam.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("=== Configuration ===\n")
	cmd.Printf("Config file: %s\n", cfgFile)
	cmd.Printf("App root:    %s\n", cfg.App.Root)
	cmd.Printf("Entries:     %s, %s\n\n", cfg.App.ServerEntry, cfg.App.ClientEntry)

	builder := modgraph.NewBuilder(cfg.App.Root)
	g, err := builder.Build(cfg.App.ServerEntry, cfg.App.ClientEntry)
	if err != nil {
		cmd.Printf("%s analysis failed: %v\n", color.Red.Sprint("✗"), err)
		return fmt.Errorf("validation failed")
	}

	cmd.Printf("=== Module Analysis ===\n")
	cmd.Printf("Modules: %d (client: %d, server: %d, shared: %d)\n",
		g.ModuleCount(),
		len(g.ByKind(directive.KindClient)),
		len(g.ByKind(directive.KindServer)),
		len(g.ByKind(directive.KindShared)))
	cmd.Printf("Edges:   %d\n\n", g.EdgeCount())

	if cycles := g.DetectCycles(); cycles != nil {
		cmd.Printf("%s %s\n", color.Yellow.Sprint("!"), cycles.Describe())
		cmd.Println()
	}

	cmd.Printf("%s Validation complete\n", color.Green.Sprint("✓"))
	return nil
}

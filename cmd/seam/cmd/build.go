package cmd

import (
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/seamui/seam/internal/build"
	"github.com/seamui/seam/internal/logger"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the four-stage build",
	Long: `Build analyzes the application's module graph, emits one addressable
chunk per module, and compiles the server and client bundles with
cross-boundary references stubbed out.

The stages run in order and the build fails on the first stage error:
  1. analyze        classify every module by directive
  2. shared-chunks  emit chunks and record the manifests
  3. server-build   server bundle, client components stubbed
  4. client-build   client bundle, server actions proxied

Example:
  seam build --config seam.yaml`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	orchestrator := build.NewOrchestrator(cfg, log)
	result, err := orchestrator.Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("\n=== Build Complete ===\n")
	for _, stage := range result.Stages {
		cmd.Printf("%s %-13s %4d modules  %s\n",
			color.Green.Sprint("✓"), stage.Stage, stage.Modules, stage.Duration.Round(time.Millisecond))
	}
	cmd.Printf("\nModules: %d  Client components: %d  Server actions: %d\n",
		result.Graph.ModuleCount(), result.ClientComponents, result.ServerActions)
	cmd.Printf("Output: %s (%s)\n", cfg.Build.OutDir, result.Duration.Round(time.Millisecond))
	return nil
}

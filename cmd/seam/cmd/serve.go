package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seamui/seam/internal/action"
	"github.com/seamui/seam/internal/build"
	"github.com/seamui/seam/internal/config"
	"github.com/seamui/seam/internal/logger"
	"github.com/seamui/seam/internal/manifest"
	"github.com/seamui/seam/internal/payload"
	"github.com/seamui/seam/internal/render"
	"github.com/seamui/seam/internal/server"
	"github.com/seamui/seam/internal/watch"
)

var skipBuild bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build and serve the application",
	Long: `Serve runs the rendering server over the build output: document
rendering, the component-stream endpoint, server-action dispatch, and
chunk serving.

In dev mode (--dev) the source tree is watched; changes trigger a
rebuild and a live-reload broadcast to connected browsers.

Example:
  seam serve --config seam.yaml --dev`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipBuild, "skip-build", false,
		"Serve the existing build output without rebuilding first")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator := build.NewOrchestrator(cfg, log)
	if !skipBuild {
		if _, err := orchestrator.Run(ctx); err != nil {
			return err
		}
	}

	set, err := manifest.Load(cfg.Build.OutDir)
	if err != nil {
		return fmt.Errorf("no build output in %s (run `seam build` first): %w", cfg.Build.OutDir, err)
	}
	return serveBuilt(ctx, cfg, orchestrator, set, log)
}

// serveBuilt wires the runtime over the current build output and blocks
// until shutdown.
func serveBuilt(ctx context.Context, cfg *config.Config, orchestrator *build.Orchestrator, set *manifest.Set, log *logger.Logger) error {
	routes := render.NewRegistry()
	routes.Register("/", shellPage)
	renderer := render.NewRenderer(set, routes, render.NewSSRRegistry(), log)
	dispatcher := action.NewDispatcher(set, action.NewRegistry(), log)

	var cache server.ShellCache
	if cfg.Server.Cache.Enabled {
		redisCache := server.NewRedisShellCache(cfg.Server.Cache.RedisAddr,
			time.Duration(cfg.Server.Cache.TTLSeconds)*time.Second)
		defer redisCache.Close()
		cache = redisCache
	}

	srv := server.New(cfg, renderer, dispatcher, cache, log)

	if cfg.Server.Dev {
		watcher, err := watch.New(cfg.App.Root, func(paths []string) {
			log.Infow("Rebuilding", "changed", len(paths))
			result, err := orchestrator.Run(ctx)
			if err != nil {
				log.Errorw("Rebuild failed", "error", err)
				return
			}
			renderer.SetManifests(result.Manifests)
			dispatcher.SetManifests(result.Manifests)
			if hub := srv.Hub(); hub != nil {
				hub.Broadcast()
			}
		}, log)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	return srv.ListenAndServe(ctx)
}

// shellPage is the default document for applications without registered Go
// page components: an empty mount point the client entry hydrates.
func shellPage(ctx context.Context, props render.Props) (*payload.Node, error) {
	return payload.Element("div", map[string]any{"id": "app"}), nil
}

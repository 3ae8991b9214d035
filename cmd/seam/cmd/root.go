package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seamui/seam/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	outDir    string
	devMode   bool
	port      int
)

var rootCmd = &cobra.Command{
	Use:   "seam",
	Short: "Directive-driven build orchestrator and streaming renderer",
	Long: `seam compiles a directive-annotated application into environment-split
bundles and serves it with streaming hybrid rendering.

Features:
  - "use client" / "use server" boundary analysis via tree-sitter
  - Four-stage build: analyze, shared chunks, server bundle, client bundle
  - Cross-boundary reference stubs and per-condition module resolution
  - Streaming component payload with out-of-order suspense resolution
  - Two-phase document rendering with progressive delivery`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "seam.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Build and server overrides
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "",
		"Override build output directory")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false,
		"Enable dev mode (file watching and live reload)")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0,
		"Override server port")
}

// loadConfig reads the config file, applies CLI overrides, and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if outDir != "" {
		cfg.Build.OutDir = outDir
	}
	if devMode {
		cfg.Server.Dev = true
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

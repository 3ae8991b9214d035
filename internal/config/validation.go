package config

import (
	"fmt"
	"strings"
)

// ValidationError aggregates all configuration problems found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the configuration for structural problems.
// All problems are collected so the user sees everything at once.
func (c *Config) Validate() error {
	var problems []string

	if c.App.Root == "" {
		problems = append(problems, "app.root is required")
	}
	if c.App.ServerEntry == "" {
		problems = append(problems, "app.server_entry is required")
	}
	if c.App.ClientEntry == "" {
		problems = append(problems, "app.client_entry is required")
	}
	if c.Build.OutDir == "" {
		problems = append(problems, "build.out_dir is required")
	}
	if c.Build.Parallelism < 1 {
		problems = append(problems, fmt.Sprintf("build.parallelism must be >= 1, got %d", c.Build.Parallelism))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be in 1-65535, got %d", c.Server.Port))
	}
	if c.Server.Cache.Enabled && c.Server.Cache.RedisAddr == "" {
		problems = append(problems, "server.cache.redis_addr is required when the shell cache is enabled")
	}
	if c.Server.Cache.TTLSeconds < 0 {
		problems = append(problems, fmt.Sprintf("server.cache.ttl_seconds must be >= 0, got %d", c.Server.Cache.TTLSeconds))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be json or text, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

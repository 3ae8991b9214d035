// Package config provides configuration structures and loading for seam.
package config

// Config represents the complete application configuration.
type Config struct {
	App     AppConfig     `yaml:"app" mapstructure:"app"`
	Build   BuildConfig   `yaml:"build" mapstructure:"build"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// AppConfig describes the application source tree handed to the build.
type AppConfig struct {
	Root        string `yaml:"root" mapstructure:"root"`                 // Application source root directory
	ServerEntry string `yaml:"server_entry" mapstructure:"server_entry"` // Server entry module, relative to root
	ClientEntry string `yaml:"client_entry" mapstructure:"client_entry"` // Client entry module, relative to root
}

// BuildConfig represents build orchestration settings.
type BuildConfig struct {
	OutDir      string `yaml:"out_dir" mapstructure:"out_dir"`         // Build output directory
	Parallelism int    `yaml:"parallelism" mapstructure:"parallelism"` // Max concurrent module transforms per stage
}

// ServerConfig represents the rendering server settings.
type ServerConfig struct {
	Host  string      `yaml:"host" mapstructure:"host"`
	Port  int         `yaml:"port" mapstructure:"port"`
	Dev   bool        `yaml:"dev" mapstructure:"dev"` // Dev mode: file watcher + live reload
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`
}

// CacheConfig represents the optional static-shell cache.
// Only routes whose render touches no dynamic boundary are cacheable.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	RedisAddr  string `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Root:        "app",
			ServerEntry: "server.js",
			ClientEntry: "client.js",
		},
		Build: BuildConfig{
			OutDir:      "dist",
			Parallelism: 4,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
			Cache: CacheConfig{
				TTLSeconds: 60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

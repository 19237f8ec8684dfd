// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/origin-proxy/config.toml",
	"configs/config.toml",
}

// defaultStripHeaders are the edge-injected request headers removed before
// forwarding when [headers].strip is not set. Host is always stripped and
// rewritten regardless of this list.
var defaultStripHeaders = []string{
	"cf-ray",
	"cf-connecting-ip",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config       string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host         string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port         int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	OriginHost   string `kong:"help='Origin host to forward to (overrides config).',env='ORIGIN_HOST'"`
	OriginScheme string `kong:"help='Origin scheme: http|https (overrides config).',env='ORIGIN_SCHEME'"`
	LogLevel     string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Origin  OriginConfig  `toml:"origin"`
	Headers HeadersConfig `toml:"headers"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8080); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// OriginConfig identifies the fixed backend origin. Host and Scheme are set
// once at startup and never change while the process runs.
type OriginConfig struct {
	Host            string `toml:"host"`
	Scheme          string `toml:"scheme"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	IdleConnections int    `toml:"idle_connections"`
}

// HeadersConfig holds the request-header exclusion set. Names are matched
// case-insensitively; entries are normalized to lowercase at load time.
type HeadersConfig struct {
	Strip []string `toml:"strip"`
}

// LogConfig holds logging settings. When File is non-empty, logs are written
// there with size-based rotation instead of stdout.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/origin-proxy/config.toml then configs/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.OriginHost != "" {
		c.Origin.Host = cli.OriginHost
	}
	if cli.OriginScheme != "" {
		c.Origin.Scheme = cli.OriginScheme
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// Origin host: required, a bare host[:port] with no scheme or path.
	host := c.Origin.Host
	if host == "" {
		return fmt.Errorf("origin.host is required")
	}
	if strings.Contains(host, "://") {
		return fmt.Errorf("origin.host must be a bare host, not a URL; got %q (set origin.scheme separately)", host)
	}
	if strings.ContainsAny(host, "/?# ") {
		return fmt.Errorf("origin.host must not contain a path, query or spaces; got %q", host)
	}

	switch strings.ToLower(c.Origin.Scheme) {
	case "http", "https", "":
		// valid
	default:
		return fmt.Errorf("origin.scheme must be http or https; got %q", c.Origin.Scheme)
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Origin.TimeoutSeconds < 0 {
		return fmt.Errorf("origin.timeout_seconds must be non-negative; got %d", c.Origin.TimeoutSeconds)
	}
	if c.Origin.IdleConnections < 0 {
		return fmt.Errorf("origin.idle_connections must be non-negative; got %d", c.Origin.IdleConnections)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("log.max_size_mb must be non-negative; got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative; got %d", c.Log.MaxBackups)
	}

	// Header strip entries.
	for _, h := range c.Headers.Strip {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("headers.strip must not contain empty entries")
		}
		if strings.ContainsAny(h, " :") {
			return fmt.Errorf("headers.strip entries must be bare header names; got %q", h)
		}
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range []string{"/healthz", "/proxy/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key. The same applies
// to headers.strip: an empty list means "use the default edge set".
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Origin.Scheme == "" {
		c.Origin.Scheme = "https"
	}
	c.Origin.Scheme = strings.ToLower(c.Origin.Scheme)
	if c.Origin.TimeoutSeconds == 0 {
		c.Origin.TimeoutSeconds = 120
	}
	if c.Origin.IdleConnections == 0 {
		c.Origin.IdleConnections = 100
	}
	if len(c.Headers.Strip) == 0 {
		c.Headers.Strip = append([]string(nil), defaultStripHeaders...)
	}
	for i, h := range c.Headers.Strip {
		c.Headers.Strip[i] = strings.ToLower(h)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BaseURL returns the origin as scheme://host.
func (c *OriginConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s", c.Scheme, c.Host)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}

// Package mcp parses MCP command flags and launches the HTTP server.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/harito-life/services-mcp/internal/platform/cmd"
	"github.com/harito-life/services-mcp/internal/services/mcp/catalog"
	"github.com/harito-life/services-mcp/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Port       int     `env:"PORT"                  envDefault:"3000"`
	Host       string  `env:"HARITO_MCP_HOST"       envDefault:"0.0.0.0"`
	APIBaseURL string  `env:"HARITO_API_BASE_URL"`
	RateLimit  float64 `env:"HARITO_MCP_RATE_LIMIT" envDefault:"0"`
	RateBurst  int     `env:"HARITO_MCP_RATE_BURST" envDefault:"10"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = catalog.DefaultBaseURL
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port to listen on")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP host to bind")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Harito API base URL")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Per-IP requests per second (0 disables)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "Per-IP burst size")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d is out of range", cfg.Port)
	}
	return cfg, nil
}

// Run starts the MCP HTTP server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			APIBaseURL: cfg.APIBaseURL,
			RateLimit:  cfg.RateLimit,
			RateBurst:  cfg.RateBurst,
		})
	})
}

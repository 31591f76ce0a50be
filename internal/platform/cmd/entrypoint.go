// Package cmd holds the startup plumbing shared by service commands: env then
// flag parsing, and running the service loop inside a telemetry scope.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/harito-life/services-mcp/internal/platform/config"
	"github.com/harito-life/services-mcp/internal/platform/otel"
	"github.com/harito-life/services-mcp/internal/platform/timeouts"
)

// ServiceMCP names the MCP server in telemetry and logs.
const ServiceMCP = "harito-services-mcp"

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures observability, executes run with ctx and
// flushes telemetry within timeouts.TelemetryShutdown once run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	log.Printf("%s starting", service)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.TelemetryShutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

// Package main starts the Harito services MCP server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/harito-life/services-mcp/internal/cmd/mcp"
	"github.com/harito-life/services-mcp/internal/platform/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		config.Exitf("load .env: %v", err)
	}
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[MCP] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}

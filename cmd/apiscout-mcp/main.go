package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/apiscout-mcp/pkg/mcpsrv"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - APISCOUT_ENDPOINTS_FILE: endpoints file (default: endpoints.yaml)
	// - APISCOUT_WATCH_ENDPOINTS: reload the endpoints file on change
	// - LOG_LEVEL, LOG_FILE: logging (default: info, stderr only)
	// - TOKEN_STORE: memory or redis (REDIS_ADDR, TOKEN_KEY_PREFIX)
	// - etc. (see internal/config for all options)
	server, err := mcpsrv.NewServer()
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting apiscout MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

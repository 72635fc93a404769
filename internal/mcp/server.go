package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-scout/internal/tool"
)

const (
	serverName    = "scout-mcp"
	serverVersion = "1.0.0"
)

// Server manages the MCP server lifecycle. It owns the search service and
// closes it (and the engine subprocess behind it) on shutdown.
type Server struct {
	service *tool.Service
	log     *slog.Logger
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server exposing the function_definition tool.
// The service is passed in so callers control how the engine is launched.
func NewServer(service *tool.Service, log *slog.Logger) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("search service is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	AddFunctionDefinitionTool(mcpServer, service)

	return &Server{
		service: service,
		log:     log,
		mcp:     mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Start MCP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		s.log.Info("received shutdown signal, stopping gracefully")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the engine connection held by the search service.
func (s *Server) Close() error {
	if s.service != nil {
		return s.service.Close()
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-scout/internal/config"
	"github.com/mvp-joe/project-scout/internal/diag"
	"github.com/mvp-joe/project-scout/internal/engine"
	"github.com/mvp-joe/project-scout/internal/mcp"
	"github.com/mvp-joe/project-scout/internal/tool"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for structured code search",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants find code by structure instead of text.

The MCP server:
- Launches the ast-grep engine as a subprocess on first use (docker by default)
- Provides the function_definition tool for locating where functions are defined
- Communicates via stdio (standard MCP transport)

The search root defaults to the working directory (override with
search.root in .scout/config.yml); all searches and results are relative
to it.

Example:
  scout mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration from .scout/config.yml
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log := diag.New(diag.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	searchRoot, err := resolveSearchRoot(cfg)
	if err != nil {
		return err
	}

	spec, err := engine.BuildLaunchSpec(cfg.LaunchOptions(), searchRoot)
	if err != nil {
		return fmt.Errorf("failed to build engine launch spec: %w", err)
	}

	// Show startup information on stderr; stdout belongs to the MCP transport
	fmt.Fprintf(os.Stderr, "Scout MCP Server\n")
	fmt.Fprintf(os.Stderr, "Search Root: %s\n", searchRoot)
	fmt.Fprintf(os.Stderr, "Engine: %s\n", engineDescription(cfg))
	fmt.Fprintf(os.Stderr, "\n")

	// The engine subprocess is spawned lazily on the first tool call
	conn := engine.NewConnection(spec, log)

	service, err := tool.NewService(conn, searchRoot, cfg.Search, log)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create search service: %w", err)
	}

	// Create and start MCP server
	server, err := mcp.NewServer(service, log)
	if err != nil {
		service.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// engineDescription renders the configured engine launch mode for startup
// output.
func engineDescription(cfg *config.Config) string {
	if cfg.Engine.Command != "" {
		return fmt.Sprintf("custom command %q", cfg.Engine.Command)
	}
	image := cfg.Engine.Image
	if image == "" {
		image = engine.DefaultImage
	}
	return fmt.Sprintf("docker image %q", image)
}

// resolveSearchRoot returns the configured search root as an absolute path,
// defaulting to the current working directory.
func resolveSearchRoot(cfg *config.Config) (string, error) {
	root := cfg.Search.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search root %q: %w", root, err)
	}
	return abs, nil
}

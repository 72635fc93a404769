package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-scout/internal/config"
	"github.com/mvp-joe/project-scout/internal/diag"
	"github.com/mvp-joe/project-scout/internal/engine"
	"github.com/mvp-joe/project-scout/internal/tool"
)

var (
	findLanguageFlag string
	findFileFlags    []string
	findTimeoutFlag  time.Duration
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <function-name>",
	Short: "Find function definitions from the command line",
	Long: `Find runs a single structured search and prints the matches as JSON.
It uses the same engine and translation as the MCP server, so it is the
quickest way to verify what an assistant would see.

The search root defaults to the working directory (override with search.root
in .scout/config.yml). Matches report file paths relative to the root, with
byte offsets and the matched source text.

Examples:
  # Find a Python function definition anywhere under the current directory
  scout find add_samples

  # Find a Go function definition
  scout find RegisterRoutes --language go

  # Restrict the search to specific files or directories
  scout find load_samples --file src/data_utils.py --file lib/
`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVarP(&findLanguageFlag, "language", "l", "", "language to search (defaults to the configured default)")
	findCmd.Flags().StringArrayVarP(&findFileFlags, "file", "f", nil, "file or directory to search, relative to the search root (repeatable)")
	findCmd.Flags().DurationVarP(&findTimeoutFlag, "timeout", "t", 2*time.Minute, "overall timeout including engine startup")
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), findTimeoutFlag)
	defer cancel()

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

	conn := engine.NewConnection(spec, log)

	service, err := tool.NewService(conn, searchRoot, cfg.Search, log)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create search service: %w", err)
	}
	defer service.Close()

	response, err := service.FindFunctionDefinition(ctx, &tool.FunctionDefinitionRequest{
		FunctionName: args[0],
		Language:     findLanguageFlag,
		TargetFiles:  findFileFlags,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	fmt.Println(string(out))

	if len(response.Matches) == 0 {
		fmt.Fprintf(os.Stderr, "no definitions of %q found\n", args[0])
	}

	return nil
}

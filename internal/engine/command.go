package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultImage is the published ast-grep MCP server image used when no
	// custom engine command is configured.
	DefaultImage = "mcp/ast-grep"

	// workspaceMount is where the search root is mounted inside the engine
	// container. The engine operates only within it.
	workspaceMount = "/workspace"

	// pathEnvVar tells the engine server where the searchable tree lives.
	pathEnvVar = "AST_GREP_PATH"
)

// LaunchSpec describes how to start the engine subprocess. It is consumed by
// the connection's stdio transport.
type LaunchSpec struct {
	Command string
	Args    []string
	Env     []string // KEY=VALUE pairs appended to the inherited environment
}

// LaunchOptions selects between the docker-image default and a custom engine
// command (for example a locally installed server binary).
type LaunchOptions struct {
	Command string   // custom engine command; empty selects docker mode
	Args    []string // extra args for a custom command
	Image   string   // docker image for docker mode; empty means DefaultImage
	Env     []string // extra KEY=VALUE pairs for the subprocess
}

// BuildLaunchSpec constructs the subprocess invocation for the engine, scoped
// to searchRoot. In docker mode the root is bind-mounted at /workspace and the
// container works from there; in custom mode the root is handed to the engine
// via AST_GREP_PATH.
func BuildLaunchSpec(opts LaunchOptions, searchRoot string) (LaunchSpec, error) {
	absRoot, err := filepath.Abs(searchRoot)
	if err != nil {
		return LaunchSpec{}, fmt.Errorf("resolve search root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return LaunchSpec{}, fmt.Errorf("search root not usable: %w", err)
	}
	if !info.IsDir() {
		return LaunchSpec{}, fmt.Errorf("search root is not a directory: %s", absRoot)
	}

	if opts.Command != "" {
		env := append([]string{pathEnvVar + "=" + absRoot}, opts.Env...)
		return LaunchSpec{
			Command: opts.Command,
			Args:    append([]string(nil), opts.Args...),
			Env:     env,
		}, nil
	}

	image := opts.Image
	if image == "" {
		image = DefaultImage
	}

	return LaunchSpec{
		Command: "docker",
		Args: []string{
			"run", "-i", "--rm",
			"-v", absRoot + ":" + workspaceMount,
			"-w", workspaceMount,
			image,
		},
		Env: append([]string{pathEnvVar + "=" + workspaceMount}, opts.Env...),
	}, nil
}

package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/singleflight"
)

const (
	clientName    = "scout"
	clientVersion = "1.0.0"
)

// State is the connection lifecycle position. Transitions:
// Disconnected -> Connecting -> Ready -> Disconnected (failure or close).
// A Ready connection never re-enters Connecting without passing through
// Disconnected first.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// engineClient is the subset of the MCP client the connection uses.
// *client.Client satisfies it.
// Declared as an interface to allow mocking in tests.
type engineClient interface {
	Start(ctx context.Context) error
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// newEngineClient builds the stdio MCP client for a launch spec.
// Declared as a variable to allow mocking in tests.
var newEngineClient = func(spec LaunchSpec) engineClient {
	return client.NewClient(transport.NewStdio(spec.Command, spec.Env, spec.Args...))
}

// Connection manages the lifecycle of one engine subprocess: spawn, MCP
// handshake, capability discovery, teardown. One subprocess per Connection;
// independent Connections share nothing and run fully in parallel.
type Connection struct {
	spec LaunchSpec
	log  *slog.Logger

	mu       sync.Mutex
	state    State
	client   engineClient
	toolName string
	gen      uint64 // bumped by Close so a racing connect cannot resurrect

	connectGroup singleflight.Group
	inflight     atomic.Bool // one execute at a time on the engine channel
}

// NewConnection creates a connection for the given launch spec. The logger is
// a diagnostic side channel only; nil discards.
func NewConnection(spec LaunchSpec, log *slog.Logger) *Connection {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Connection{
		spec:  spec,
		log:   log,
		state: StateDisconnected,
	}
}

// State reports the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect spawns the engine subprocess, performs the MCP handshake, and
// discovers the engine's callable tools. Calling Connect while Ready is a
// no-op; concurrent calls share a single in-flight attempt, so a second
// subprocess is never spawned while one is starting. There is no automatic
// reconnection: after a failure the state is Disconnected and callers must
// Connect again explicitly.
func (c *Connection) Connect(ctx context.Context) error {
	_, err, _ := c.connectGroup.Do("connect", func() (interface{}, error) {
		return nil, c.doConnect(ctx)
	})
	return err
}

func (c *Connection) doConnect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateReady {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	gen := c.gen
	c.mu.Unlock()

	c.log.Debug("spawning engine", "command", c.spec.Command, "args", c.spec.Args)

	cli := newEngineClient(c.spec)

	fail := func(stage string, cause error) error {
		_ = cli.Close()
		c.mu.Lock()
		if c.gen == gen {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		err := &ConnectError{Stage: stage, Cause: cause}
		c.log.Error("engine connect failed", "stage", stage, "error", cause)
		return err
	}

	if err := cli.Start(ctx); err != nil {
		return fail("spawn", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		return fail("initialize", err)
	}

	tools, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fail("discover", err)
	}
	if len(tools.Tools) == 0 {
		return fail("discover", ErrNoTools)
	}

	c.mu.Lock()
	if c.gen != gen {
		// Closed while connecting; tear down the fresh client instead of
		// resurrecting a closed connection.
		c.mu.Unlock()
		_ = cli.Close()
		return &ConnectError{Stage: "spawn", Cause: errors.New("connection closed during connect")}
	}
	c.client = cli
	// The engine exposes a single tool surface; the first discovered tool is
	// the invocation target.
	c.toolName = tools.Tools[0].Name
	c.state = StateReady
	c.mu.Unlock()

	c.log.Info("engine connected", "tool", tools.Tools[0].Name, "tools", len(tools.Tools))
	return nil
}

// Close terminates the engine subprocess and releases all resources. Safe to
// call from any state: a Disconnected connection is a no-op, a Connecting
// attempt observes the close and lands Disconnected, and an in-flight execute
// is cancelled (its caller sees ErrCancelled).
func (c *Connection) Close() error {
	c.mu.Lock()
	cli := c.client
	c.client = nil
	c.toolName = ""
	c.state = StateDisconnected
	c.gen++
	c.mu.Unlock()

	if cli == nil {
		return nil
	}
	if err := cli.Close(); err != nil {
		c.log.Warn("engine close", "error", err)
		return err
	}
	c.log.Debug("engine closed")
	return nil
}

// markDisconnected flips the connection to Disconnected after the subprocess
// was observed dead mid-execution. The dead client is discarded; Close on it
// reaps whatever the transport left behind.
func (c *Connection) markDisconnected() {
	c.mu.Lock()
	cli := c.client
	c.client = nil
	c.toolName = ""
	c.state = StateDisconnected
	c.gen++
	c.mu.Unlock()

	if cli != nil {
		_ = cli.Close()
	}
}

package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/model"
)

// builtinTools are the capabilities this application always offers the
// model, independent of user configuration or external tool servers.
var builtinTools = []model.Tool{
	{
		ID:          "search_transcript",
		Name:        "search_transcript",
		Description: "Search the recording's transcript for a phrase and return matching segments with timestamps.",
		Source:      model.ToolSourceBuiltin,
		Default:     true,
	},
	{
		ID:          "summarize_range",
		Name:        "summarize_range",
		Description: "Summarize the transcript between two timestamps.",
		Source:      model.ToolSourceBuiltin,
		Default:     true,
	},
	{
		ID:          "list_action_items",
		Name:        "list_action_items",
		Description: "Extract action items mentioned in the meeting.",
		Source:      model.ToolSourceBuiltin,
		Default:     false,
	},
}

// Registry resolves the full set of callable tools: built-ins, tools the
// user defined in the engine, and tools discovered from configured
// external MCP servers.
type Registry struct {
	engine  engine.Engine
	servers []string
}

func NewRegistry(eng engine.Engine, servers []string) *Registry {
	return &Registry{engine: eng, servers: servers}
}

// Resolve assembles all known tools. A failing tool source is logged and
// skipped; partial availability must not take the chat surface down.
func (r *Registry) Resolve(ctx context.Context) ([]model.Tool, error) {
	tools := make([]model.Tool, 0, len(builtinTools))
	tools = append(tools, builtinTools...)

	userTools, err := r.engine.ListUserTools(ctx)
	if err != nil {
		slog.Warn("Could not list user-defined tools", "error", err)
	} else {
		tools = append(tools, userTools...)
	}

	for _, server := range r.servers {
		discovered, err := r.discover(ctx, server)
		if err != nil {
			slog.Warn("Tool discovery failed", "server", server, "error", err)
			continue
		}
		tools = append(tools, discovered...)
	}
	return tools, nil
}

// Defaults filters the resolved set down to the tools that seed a fresh
// session's selection.
func (r *Registry) Defaults(ctx context.Context) ([]model.Tool, error) {
	all, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	defaults := make([]model.Tool, 0, len(all))
	for _, t := range all {
		if t.Default {
			defaults = append(defaults, t)
		}
	}
	return defaults, nil
}

// discover connects to one MCP server and lists its tools.
func (r *Registry) discover(ctx context.Context, server string) ([]model.Tool, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "scribe-core", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: server}, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to tool server: %w", err)
	}
	defer session.Close()

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("could not list tools: %w", err)
	}

	tools := make([]model.Tool, 0, len(result.Tools))
	for _, t := range result.Tools {
		tools = append(tools, model.Tool{
			ID:          server + "/" + t.Name,
			Name:        t.Name,
			Description: t.Description,
			Source:      model.ToolSourceMCP,
			Server:      server,
		})
	}
	return tools, nil
}

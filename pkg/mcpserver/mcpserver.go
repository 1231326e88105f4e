// Package mcpserver provides the MCP endpoint served behind the project
// gate. Tool handlers read the authenticated identity from the request
// context, so every tool call is already project-scoped when it runs.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpgate/mcpgate/pkg/auth"
	"github.com/mcpgate/mcpgate/pkg/storage"
)

// Config identifies the server to MCP clients.
type Config struct {
	Name    string
	Version string
}

// NewHandler returns an HTTP handler serving the MCP streamable HTTP
// transport. It must be mounted behind auth.Middleware.RequireProjectAuth
// so that the identity and tenant scope are present in the context.
func NewHandler(cfg Config) http.Handler {
	server := newServer(cfg)
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)
}

// newServer builds the MCP server with the gateway's tools.
func newServer(cfg Config) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: cfg.Name, Version: cfg.Version},
		nil,
	)

	// Add "whoami" tool: reports the authenticated caller.
	mcp.AddTool(server, &mcp.Tool{
		Name:        "whoami",
		Description: "Returns the authenticated subject and project for this session",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		identity := auth.IdentityFromContext(ctx)
		if identity == nil {
			return nil, struct{}{}, fmt.Errorf("no authenticated identity in context")
		}
		text := fmt.Sprintf("subject=%s project=%s", identity.Subject, identity.ProjectID)
		if tenant := storage.GetTenant(ctx); tenant != "" {
			text += fmt.Sprintf(" tenant=%s", tenant)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, struct{}{}, nil
	})

	// Add "echo" tool.
	type EchoInput struct {
		Message string `json:"message" jsonschema_description:"The message to echo back"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Echoes the provided message back",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input EchoInput) (*mcp.CallToolResult, struct{}, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Echo: %s", input.Message)},
			},
		}, struct{}{}, nil
	})

	return server
}

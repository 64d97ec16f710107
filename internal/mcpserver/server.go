// Package mcpserver exposes the tool gateway and brain search over the
// Model Context Protocol so external agents can call into the system.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server fronting the internal tool gateway.
type Server struct {
	gateway      *tools.Gateway
	index        *brain.Index
	defaultOrgID string
	mcp          *server.MCPServer
}

// NewServer creates an MCP server with the given dependencies.
func NewServer(gateway *tools.Gateway, index *brain.Index, defaultOrgID string) *Server {
	s := &Server{
		gateway:      gateway,
		index:        index,
		defaultOrgID: defaultOrgID,
	}

	s.mcp = server.NewMCPServer(
		"liferx",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listToolsTool, s.handleListTools)
	s.mcp.AddTool(dispatchToolTool, s.handleDispatchTool)
	s.mcp.AddTool(searchBrainTool, s.handleSearchBrain)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewStoryforgeMCPServer creates a new MCP server with all storyforge tools
// and resources registered. The projectPath is the root directory of the
// project being orchestrated; it is fixed at construction so every handler
// operates on an explicit project rather than process-global state.
func NewStoryforgeMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"storyforge",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}

package mcptool

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
)

// NewServer creates an MCP server with the lookup tools registered.
func NewServer(version string, lookup *service.LookupService) *server.MCPServer {
	s := server.NewMCPServer(
		"parking-attendant",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	lookupTool := NewLookupTool(lookup)
	s.AddTool(lookupTool.Definition(), lookupTool.Handle)

	return s
}

// ServeStdio runs s over stdin and stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

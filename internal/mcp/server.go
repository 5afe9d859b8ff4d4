// ABOUTME: MCP server setup for the measurement store.
// ABOUTME: Wraps the MCP server with repository, catalog and user settings.
package mcp

import (
	"context"
	"log/slog"

	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/stats"
	"github.com/harperreed/measure/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Settings is the user configuration the server reads.
type Settings interface {
	stats.Profile
	GetDisplayField() string
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	catalog   *models.Catalog
	profile   Settings
	log       *slog.Logger
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, catalog *models.Catalog, profile Settings, log *slog.Logger) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "measure",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		catalog:   catalog,
		profile:   profile,
		log:       log,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the measure store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/measure/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "measure": {
        "command": "measure",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_measurement      Record a measurement (weight by default)
  list_measurements    List recent measurements
  delete_measurement   Delete a measurement by ID or prefix
  get_statistics       Loss, daily average, BMI and goal estimate
  list_types           Known measure types and whether they are tracked
  get_chart            SVG chart and sparkline for a type

AVAILABLE RESOURCES:

  measure://recent     Recent measurements
  measure://summary    Latest value per tracked type and statistics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, catalog, cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

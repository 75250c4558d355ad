package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an assistant can trigger
reindexing and inspect sync runs.

Tools: reindex_graph, full_reindex, sync_status.
Resources: termsync://status, termsync://graphs/{graphId}/runs.

By default the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead. Refuses to start while serve
is running.

Examples:
  # Stdio mode (default)
  termsync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  termsync mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if err := lockWriter(); err != nil {
		return refuseWhileServing(err, "mcp serve")
	}
	if err := requireSync(); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Dispatcher: changeDispatcher,
		Engine:     syncEngine,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can search suppliers,
request recommendations and ingest profiles.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP on the loopback interface instead, for the MCP Inspector.

ingest_profile accepts inline content. File paths are only read when
--ingest-root is set, and only from inside that directory.

Examples:
  # Stdio mode (default)
  tradematch mcp serve

  # HTTP mode
  tradematch mcp serve --port 8080

  # Allow profiles to be ingested from a drop folder
  tradematch mcp serve --ingest-root ~/profiles

Desktop client configuration:
  {
    "mcpServers": {
      "tradematch": {
        "command": "/path/to/tradematch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port on 127.0.0.1 (0 = use stdio)")
	mcpServeCmd.Flags().String("ingest-root", "", "directory ingest_profile may read files from (empty = content only)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if searchService == nil {
		return unavailable("search")
	}

	ports := &mcp.Ports{
		Search:    searchService,
		Ingest:    ingestService,
		Directory: directoryService,
	}

	var opts []mcp.Option
	if ingestRoot, _ := cmd.Flags().GetString("ingest-root"); ingestRoot != "" {
		info, err := os.Stat(ingestRoot)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("ingest root %s is not a directory", ingestRoot)
		}
		opts = append(opts, mcp.WithIngestRoot(ingestRoot))
	}

	server, err := mcp.NewServer(ports, opts...)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := loopbackAddr(port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// loopbackAddr is the HTTP listen address. The server never binds beyond localhost.
func loopbackAddr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

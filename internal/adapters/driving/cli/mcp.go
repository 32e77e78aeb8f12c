package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the knowledge base to MCP clients",
	Long: `Serve the hospital knowledge base over the Model Context Protocol.

Tools:      ask, search
Resources:  ` + mcp.StatsURI + `, ` + mcp.CollectionsURI + `,
            ` + mcp.DocumentsURI + `, ` + mcp.DocumentsURI + `/{documentId}

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch:

  {"mcpServers": {"merkuze": {"command": "merkuze", "args": ["mcp", "serve"]}}}

With --port it serves streamable HTTP instead, for the MCP Inspector or
remote clients. It binds to --host, loopback by default.`,
	Example: `  merkuze mcp serve
  merkuze mcp serve --port 8765
  merkuze mcp serve --port 8765 --host 0.0.0.0`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:     chatService,
		Index:    indexService,
		Document: documentService,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	if startEmbedder != nil {
		startEmbedder()
	}

	ctx := commandContext(cmd)
	if port <= 0 {
		return server.Run(ctx)
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/figsync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the sync tools over the Model Context Protocol",
	Long: `Exposes sync_assets, job_status, list_assets and asset_url as MCP
tools, plus file pages and job markers as resources.

Speaks JSON-RPC over stdio unless --port is given, in which case the
streamable HTTP transport listens on that port.

Examples:
  figsync mcp
  figsync mcp --port 8090`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Sync: svc.Sync, Assets: svc.Assets}, version)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	if port > 0 {
		return server.RunHTTP(cmd.Context(), net.JoinHostPort("", strconv.Itoa(port)))
	}
	return server.Run(cmd.Context())
}

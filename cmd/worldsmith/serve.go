package main

import (
	"context"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
	"worldsmith/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		templates, err := config.TemplatesFor(e.cfg)
		if err != nil {
			return err
		}
		e.logger.Info("starting mcp server", "version", version)
		server := mcp.NewServer(e.st, templates, version, e.opts...)
		return server.Run(ctx, &sdk.StdioTransport{})
	})
}

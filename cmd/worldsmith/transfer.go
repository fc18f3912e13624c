package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current world to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				now := time.Now()
				data, err := transfer.Export(ws, now).Marshal()
				if err != nil {
					return err
				}
				if output == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}

				path := output
				if path == "" {
					path = transfer.Filename(ws.WorldID, now)
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, transfer.Filename(ws.WorldID, now))
				}
				if err := os.WriteFile(path, data, 0o600); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				printf(cmd, "Exported to %s.\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory, - for stdout")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the current world's collections with those in an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				result, err := transfer.Import(ctx, ws, data)
				if result != nil {
					kinds := make([]string, 0, len(result.Replaced))
					for kind := range result.Replaced {
						kinds = append(kinds, string(kind))
					}
					sort.Strings(kinds)
					for _, kind := range kinds {
						printf(cmd, "  %s: %d\n", kind, result.Replaced[world.Kind(kind)])
					}
				}
				if err != nil {
					return err
				}
				printf(cmd, "Import complete.\n")
				return nil
			})
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worldsmith/internal/ingest"
	"worldsmith/internal/world"
)

func ingestCmd() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import markdown notes with frontmatter into the current world",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, paths)
		},
	}
	cmd.Flags().StringSliceVar(&paths, "path", nil, "Paths to scan (defaults to ingest.paths)")
	return cmd
}

func runIngest(cmd *cobra.Command, paths []string) error {
	return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
		exclude := make([]string, 0, len(e.cfg.Ingest.Exclude))
		for _, p := range e.cfg.Ingest.Exclude {
			exclude = append(exclude, e.cfg.Resolve(p))
		}
		if len(paths) == 0 {
			for _, p := range e.cfg.Ingest.Paths {
				paths = append(paths, e.cfg.Resolve(p))
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no ingest paths configured, pass --path")
		}

		result, err := ingest.Run(ctx, ws, paths, exclude)
		if err != nil {
			return err
		}

		printf(cmd, "Ingestion complete.\n")
		printf(cmd, "  Created:       %d\n", result.Created)
		printf(cmd, "  Updated:       %d\n", result.Updated)
		printf(cmd, "  Unchanged:     %d\n", result.Unchanged)
		printf(cmd, "  Files skipped: %d\n", result.FilesSkipped)

		if len(result.Errors) > 0 {
			printf(cmd, "\nErrors (%d):\n", len(result.Errors))
			for _, item := range result.Errors {
				printf(cmd, "  - %v\n", item)
			}
			return fmt.Errorf("ingestion completed with errors")
		}
		return nil
	})
}

package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/search"
	"worldsmith/internal/world"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search every collection of the current world",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				results := search.Search(ws, query)
				if len(results) == 0 {
					printf(cmd, "No results for %q.\n", query)
					return nil
				}
				for _, r := range results {
					printf(cmd, "[%s] %s (%s)\n", r.Kind, r.Title, r.ID)
					if r.Snippet != "" {
						printf(cmd, "    %s\n", r.Snippet)
					}
				}
				return nil
			})
		},
	}
}

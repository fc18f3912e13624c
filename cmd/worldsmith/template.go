package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect world templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the templates available to world create --template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				set, err := config.TemplatesFor(e.cfg)
				if err != nil {
					return err
				}
				for _, tmpl := range set.Records() {
					printf(cmd, "%s\n", tmpl.Name)
					if details := tmpl.Details(); details != "" {
						printf(cmd, "  %s\n", strings.ReplaceAll(details, "\n", "\n  "))
					}
				}
				return nil
			})
		},
	})
	return cmd
}

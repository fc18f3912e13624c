package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func loreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lore",
		Short: "Manage lore entries",
	}
	cmd.AddCommand(loreAddCmd())
	cmd.AddCommand(loreListCmd())
	cmd.AddCommand(loreRemoveCmd())
	return cmd
}

func loreAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <section> <text>",
		Short: "Add a lore entry, e.g. worldDescription-geography or magic-<typeId>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				l := &world.LoreEntry{Section: args[0], Text: args[1]}
				if err := ws.Lore.Add(ctx, l); err != nil {
					return err
				}
				printf(cmd, "Added lore entry %s.\n", l.ID)
				return nil
			})
		},
	}
}

func loreListCmd() *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lore entries grouped by section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				count := 0
				current := ""
				for _, l := range sortedLore(ws.Lore.All()) {
					if section != "" && l.Section != section && !strings.HasPrefix(l.Section, section+"-") {
						continue
					}
					if l.Section != current {
						current = l.Section
						printf(cmd, "%s:\n", current)
					}
					count++
					heading, _, _ := strings.Cut(l.Text, "\n")
					printf(cmd, "  %s  %s\n", l.ID, heading)
				}
				if count == 0 {
					printf(cmd, "No lore entries found.\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "Section, including nested sections")
	return cmd
}

func loreRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a lore entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				found, err := ws.Lore.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("lore entry %q not found", args[0])
				}
				printf(cmd, "Removed lore entry %s.\n", args[0])
				return nil
			})
		},
	}
}

// sortedLore groups entries by section in first-seen order, keeping stored
// order within a section.
func sortedLore(entries []*world.LoreEntry) []*world.LoreEntry {
	var sections []string
	bySection := make(map[string][]*world.LoreEntry)
	for _, l := range entries {
		if _, ok := bySection[l.Section]; !ok {
			sections = append(sections, l.Section)
		}
		bySection[l.Section] = append(bySection[l.Section], l)
	}
	out := make([]*world.LoreEntry, 0, len(entries))
	for _, s := range sections {
		out = append(out, bySection[s]...)
	}
	return out
}

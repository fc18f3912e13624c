package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
	"worldsmith/internal/world"
)

func worldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "Create, select and manage worlds",
	}
	cmd.AddCommand(worldCreateCmd())
	cmd.AddCommand(worldListCmd())
	cmd.AddCommand(worldShowCmd())
	cmd.AddCommand(worldUpdateCmd())
	cmd.AddCommand(worldDeleteCmd())
	cmd.AddCommand(worldSelectCmd())
	cmd.AddCommand(worldCurrentCmd())
	cmd.AddCommand(worldPurgeCmd())
	cmd.AddCommand(worldAdoptCmd())
	return cmd
}

func worldCreateCmd() *cobra.Command {
	var description string
	var template string
	var selectIt bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a world, optionally seeded from a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runWorldCreate(cmd, name, description, template, selectIt)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "World description")
	cmd.Flags().StringVar(&template, "template", "", "Template name to seed the description from")
	cmd.Flags().BoolVar(&selectIt, "select", false, "Select the new world")
	return cmd
}

func runWorldCreate(cmd *cobra.Command, name, description, template string, selectIt bool) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		var (
			w   *world.World
			err error
		)
		if template != "" {
			if description != "" {
				return fmt.Errorf("--description and --template are mutually exclusive")
			}
			set, err := config.TemplatesFor(e.cfg)
			if err != nil {
				return err
			}
			tmpl, ok := set.ByName(template)
			if !ok {
				return fmt.Errorf("unknown template %q", template)
			}
			w, err = e.reg.CreateFromTemplate(ctx, name, tmpl.Record())
			if err != nil {
				return err
			}
			ws, err := world.OpenWorkspace(ctx, e.st, w.ID, e.opts...)
			if err != nil {
				return err
			}
			if err := ws.Templates.Add(ctx, tmpl.Record()); err != nil {
				return fmt.Errorf("recording template: %w", err)
			}
		} else {
			w, err = e.reg.CreateWorld(ctx, name, description)
			if err != nil {
				return err
			}
		}

		if selectIt {
			if err := e.reg.SelectWorld(ctx, w.ID); err != nil {
				return err
			}
		}
		printf(cmd, "Created world %s (%s).\n", w.Name, w.ID)
		return nil
	})
}

func worldListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				worlds := e.reg.Worlds()
				if len(worlds) == 0 {
					printf(cmd, "No worlds found.\n")
					return nil
				}
				selected, err := e.reg.Selected(ctx)
				if err != nil {
					return err
				}
				for _, w := range worlds {
					marker := " "
					if w.ID == selected {
						marker = "*"
					}
					printf(cmd, "%s %s  %s\n", marker, w.ID, w.Name)
				}
				return nil
			})
		},
	}
}

func worldShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [world]",
		Short: "Display a world and the size of each collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				w, err := worldArg(ctx, e, args)
				if err != nil {
					return err
				}
				ws, err := world.OpenWorkspace(ctx, e.st, w.ID, e.opts...)
				if err != nil {
					return err
				}

				printf(cmd, "ID: %s\n", w.ID)
				printf(cmd, "Name: %s\n", w.Name)
				if w.Template != "" {
					printf(cmd, "Template: %s\n", w.Template)
				}
				if w.Description != "" {
					printf(cmd, "Description:\n%s\n", w.Description)
				}
				printf(cmd, "Created: %s\n", w.CreatedAt.Format("2006-01-02 15:04"))
				printf(cmd, "Characters: %d  Notes: %d  Timelines: %d  Relationships: %d\n",
					ws.Characters.Len(), ws.Notes.Len(), ws.Timelines.Len(), ws.Relationships.Len())
				printf(cmd, "Lore: %d  Magic types: %d  Skills: %d  Maps: %d\n",
					ws.Lore.Len(), ws.MagicTypes.Len(), ws.Skills.Len(), ws.Maps.Len())
				return nil
			})
		},
	}
}

func worldUpdateCmd() *cobra.Command {
	var name string
	var description string
	cmd := &cobra.Command{
		Use:   "update <world>",
		Short: "Rename a world or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if cmd.Flags().Changed("name") {
				patch["name"] = name
			}
			if cmd.Flags().Changed("description") {
				patch["description"] = description
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update, pass --name or --description")
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				w, err := e.resolveWorld(args[0])
				if err != nil {
					return err
				}
				if _, err := e.reg.UpdateWorld(ctx, w.ID, patch); err != nil {
					return err
				}
				printf(cmd, "Updated world %s.\n", w.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func worldDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <world>",
		Short: "Delete a world and every collection it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				w, err := e.resolveWorld(args[0])
				if err != nil {
					return err
				}
				if _, err := e.reg.DeleteWorld(ctx, w.ID); err != nil {
					return err
				}
				printf(cmd, "Deleted world %s (%s).\n", w.Name, w.ID)
				return nil
			})
		},
	}
}

func worldSelectCmd() *cobra.Command {
	var clearSelection bool
	cmd := &cobra.Command{
		Use:   "select <world>",
		Short: "Choose the world commands operate on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearSelection && len(args) == 0 {
				return fmt.Errorf("a world is required, or pass --clear")
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if clearSelection {
					if err := e.reg.SelectWorld(ctx, ""); err != nil {
						return err
					}
					printf(cmd, "Selection cleared.\n")
					return nil
				}
				w, err := e.resolveWorld(args[0])
				if err != nil {
					return err
				}
				if err := e.reg.SelectWorld(ctx, w.ID); err != nil {
					return err
				}
				printf(cmd, "Selected %s (%s).\n", w.Name, w.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearSelection, "clear", false, "Clear the selection")
	return cmd
}

func worldCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the selected world",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				w, err := e.currentWorld(ctx)
				if errors.Is(err, errNoWorld) {
					printf(cmd, "No world selected.\n")
					return nil
				}
				if err != nil {
					return err
				}
				printf(cmd, "%s  %s\n", w.ID, w.Name)
				return nil
			})
		},
	}
}

func worldPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete partitions left behind by unregistered worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				purged, err := e.reg.Purge(ctx)
				for _, key := range purged {
					printf(cmd, "  - %s\n", key)
				}
				printf(cmd, "Purged %d partitions.\n", len(purged))
				return err
			})
		},
	}
}

func worldAdoptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adopt-legacy [world]",
		Short: "Move data saved before worlds existed into a world",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				w, err := worldArg(ctx, e, args)
				if err != nil {
					return err
				}
				adoptions, err := e.reg.AdoptLegacy(ctx, w.ID)
				if err == nil && len(adoptions) == 0 {
					printf(cmd, "No legacy data found.\n")
				}
				for _, a := range adoptions {
					switch {
					case a.Occupied:
						printf(cmd, "  %s: skipped, world already has data\n", a.Kind)
					default:
						printf(cmd, "  %s: adopted %d, dropped %d invalid\n", a.Kind, a.Adopted, a.Invalid)
					}
				}
				return err
			})
		},
	}
}

// worldArg resolves an optional positional world, defaulting to --world or
// the selection.
func worldArg(ctx context.Context, e *env, args []string) (*world.World, error) {
	if len(args) > 0 {
		return e.resolveWorld(args[0])
	}
	return e.currentWorld(ctx)
}

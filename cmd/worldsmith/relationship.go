package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func relationshipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Manage relationships between characters",
	}
	cmd.AddCommand(relationshipAddCmd())
	cmd.AddCommand(relationshipListCmd())
	cmd.AddCommand(relationshipRemoveCmd())
	return cmd
}

func relationshipAddCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <from> <type> <to>",
		Short: "Relate two characters (friend, enemy, family, ally, rival)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				from, err := findCharacter(ws, args[0])
				if err != nil {
					return err
				}
				to, err := findCharacter(ws, args[2])
				if err != nil {
					return err
				}
				kind, ok := world.RelationshipType(args[1]).Normalize()
				if !ok {
					return fmt.Errorf("unknown relationship type %q", args[1])
				}
				r := &world.Relationship{
					Character1ID: from.ID,
					Character2ID: to.ID,
					Type:         kind,
					Description:  description,
				}
				if err := ws.Relationships.Add(ctx, r); err != nil {
					return err
				}
				printf(cmd, "Added %s (%s).\n", world.DescribeRelationship(ws.Characters.All(), r), r.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func relationshipListCmd() *cobra.Command {
	var character string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				rels := ws.Relationships.All()
				if character != "" {
					c, err := findCharacter(ws, character)
					if err != nil {
						return err
					}
					rels = world.RelationshipsOf(rels, c.ID)
				}
				if len(rels) == 0 {
					printf(cmd, "No relationships found.\n")
					return nil
				}
				chars := ws.Characters.All()
				for _, r := range rels {
					line := fmt.Sprintf("%s  %s", r.ID, world.DescribeRelationship(chars, r))
					if strings.TrimSpace(r.Description) != "" {
						line += ": " + r.Description
					}
					printf(cmd, "%s\n", line)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&character, "character", "", "Only relationships touching this character")
	return cmd
}

func relationshipRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				found, err := ws.Relationships.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("relationship %q not found", args[0])
				}
				printf(cmd, "Removed relationship %s.\n", args[0])
				return nil
			})
		},
	}
}

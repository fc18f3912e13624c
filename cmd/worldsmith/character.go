package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

type characterFlags struct {
	race        string
	age         int
	role        string
	description string
	biography   string
	portrait    string
	tags        string
}

func (f *characterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.race, "race", "", "Race")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age")
	cmd.Flags().StringVar(&f.role, "role", "", "Role in the story")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	cmd.Flags().StringVar(&f.biography, "biography", "", "Biography")
	cmd.Flags().StringVar(&f.portrait, "portrait", "", "Portrait image file")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags")
}

// patch returns a merge patch of the flags the user set.
func (f *characterFlags) patch(cmd *cobra.Command) (map[string]any, error) {
	patch := map[string]any{}
	changed := cmd.Flags().Changed
	if changed("race") {
		patch["race"] = f.race
	}
	if changed("age") {
		patch["age"] = f.age
	}
	if changed("role") {
		patch["role"] = f.role
	}
	if changed("description") {
		patch["description"] = f.description
	}
	if changed("biography") {
		patch["biography"] = f.biography
	}
	if changed("tags") {
		patch["tags"] = splitList(f.tags)
	}
	if changed("portrait") {
		if f.portrait == "" {
			patch["portrait"] = nil
		} else {
			url, err := imageDataURL(f.portrait)
			if err != nil {
				return nil, err
			}
			patch["portrait"] = url
		}
	}
	return patch, nil
}

func characterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Manage characters",
	}
	cmd.AddCommand(characterAddCmd())
	cmd.AddCommand(characterListCmd())
	cmd.AddCommand(characterShowCmd())
	cmd.AddCommand(characterUpdateCmd())
	cmd.AddCommand(characterRemoveCmd())
	return cmd
}

func characterAddCmd() *cobra.Command {
	var flags characterFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &world.Character{
				Name:        args[0],
				Race:        flags.race,
				Age:         flags.age,
				Role:        flags.role,
				Description: flags.description,
				Biography:   flags.biography,
				Tags:        splitList(flags.tags),
			}
			if flags.portrait != "" {
				url, err := imageDataURL(flags.portrait)
				if err != nil {
					return err
				}
				c.Portrait = url
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				if err := ws.Characters.Add(ctx, c); err != nil {
					return err
				}
				printf(cmd, "Added character %s (%s).\n", c.Name, c.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func characterListCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				count := 0
				for _, c := range ws.Characters.All() {
					if tag != "" && !containsFold(c.Tags, tag) {
						continue
					}
					count++
					line := fmt.Sprintf("%s  %s", c.ID, c.Name)
					if details := joinNonEmpty(", ", c.Race, c.Role); details != "" {
						line += " (" + details + ")"
					}
					printf(cmd, "%s\n", line)
				}
				if count == 0 {
					printf(cmd, "No characters found.\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func characterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <character>",
		Short: "Display a character and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				c, err := findCharacter(ws, args[0])
				if err != nil {
					return err
				}

				printf(cmd, "ID: %s\n", c.ID)
				printf(cmd, "Name: %s\n", c.Name)
				if c.Race != "" {
					printf(cmd, "Race: %s\n", c.Race)
				}
				if c.Age > 0 {
					printf(cmd, "Age: %d\n", c.Age)
				}
				if c.Role != "" {
					printf(cmd, "Role: %s\n", c.Role)
				}
				if len(c.Tags) > 0 {
					printf(cmd, "Tags: %s\n", strings.Join(c.Tags, ", "))
				}
				if c.Portrait != "" {
					printf(cmd, "Portrait: %d bytes\n", len(c.Portrait))
				}
				if c.Description != "" {
					printf(cmd, "Description: %s\n", c.Description)
				}
				if c.Biography != "" {
					printf(cmd, "Biography:\n%s\n", c.Biography)
				}

				rels := world.RelationshipsOf(ws.Relationships.All(), c.ID)
				if len(rels) > 0 {
					printf(cmd, "Relationships:\n")
					chars := ws.Characters.All()
					for _, r := range rels {
						printf(cmd, "  %s\n", world.DescribeRelationship(chars, r))
					}
				}
				return nil
			})
		},
	}
}

func characterUpdateCmd() *cobra.Command {
	var flags characterFlags
	var name string
	cmd := &cobra.Command{
		Use:   "update <character>",
		Short: "Change fields of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				patch["name"] = name
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update")
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				c, err := findCharacter(ws, args[0])
				if err != nil {
					return err
				}
				if _, err := ws.Characters.Update(ctx, c.ID, patch); err != nil {
					return err
				}
				printf(cmd, "Updated character %s.\n", c.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "New name")
	return cmd
}

func characterRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <character>",
		Short: "Remove a character; relationships to it are kept and shown as unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				c, err := findCharacter(ws, args[0])
				if err != nil {
					return err
				}
				if _, err := ws.Characters.Remove(ctx, c.ID); err != nil {
					return err
				}
				printf(cmd, "Removed character %s.\n", c.Name)
				return nil
			})
		},
	}
}

// findCharacter resolves a character by id, then by case-insensitive name.
func findCharacter(ws *world.Workspace, ref string) (*world.Character, error) {
	if c, ok := ws.Characters.Get(ref); ok {
		return c, nil
	}
	for _, c := range ws.Characters.All() {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("character %q not found", ref)
}

// imageDataURL reads an image file and encodes it as a data URL.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}
	cmd.AddCommand(noteAddCmd())
	cmd.AddCommand(noteListCmd())
	cmd.AddCommand(notePinCmd())
	cmd.AddCommand(noteRemoveCmd())
	return cmd
}

func noteAddCmd() *cobra.Command {
	var n world.Note
	var tags string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n.Title = args[0]
			n.Tags = splitList(tags)
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				if err := ws.Notes.Add(ctx, &n); err != nil {
					return err
				}
				printf(cmd, "Added note %s (%s).\n", n.Title, n.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&n.Text, "text", "", "Note text")
	cmd.Flags().StringVar(&n.Category, "category", "general", "Category")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")
	cmd.Flags().StringVar(&n.RelatedEvent, "event", "", "Related timeline event id")
	cmd.Flags().BoolVar(&n.IsPinned, "pinned", false, "Pin the note")
	return cmd
}

func noteListCmd() *cobra.Command {
	var category string
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				notes := ws.Notes.All()
				if category != "" {
					notes = world.NotesByCategory(notes, category)
				}
				count := 0
				for _, n := range world.SortNotes(notes) {
					if tag != "" && !containsFold(n.Tags, tag) {
						continue
					}
					count++
					pin := " "
					if n.IsPinned {
						pin = "*"
					}
					printf(cmd, "%s %s  %s [%s]\n", pin, n.ID, n.Title, n.Category)
				}
				if count == 0 {
					printf(cmd, "No notes found.\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category to filter")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func notePinCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "pin <note>",
		Short: "Pin or unpin a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				n, err := findNote(ws, args[0])
				if err != nil {
					return err
				}
				if _, err := ws.Notes.Modify(ctx, n.ID, func(n *world.Note) error {
					n.IsPinned = !off
					return nil
				}); err != nil {
					return err
				}
				state := "Pinned"
				if off {
					state = "Unpinned"
				}
				printf(cmd, "%s note %s.\n", state, n.Title)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Unpin instead")
	return cmd
}

func noteRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <note>",
		Short: "Remove a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				n, err := findNote(ws, args[0])
				if err != nil {
					return err
				}
				if _, err := ws.Notes.Remove(ctx, n.ID); err != nil {
					return err
				}
				printf(cmd, "Removed note %s.\n", n.Title)
				return nil
			})
		},
	}
}

func findNote(ws *world.Workspace, ref string) (*world.Note, error) {
	if n, ok := ws.Notes.Get(ref); ok {
		return n, nil
	}
	for _, n := range ws.Notes.All() {
		if strings.EqualFold(n.Title, strings.TrimSpace(ref)) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("note %q not found", ref)
}

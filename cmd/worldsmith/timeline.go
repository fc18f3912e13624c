package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func timelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Manage timelines and their events",
	}
	cmd.AddCommand(timelineCreateCmd())
	cmd.AddCommand(timelineListCmd())
	cmd.AddCommand(timelineAddEventCmd())
	cmd.AddCommand(timelineRemoveCmd())
	return cmd
}

func timelineCreateCmd() *cobra.Command {
	var numeric bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				t := &world.Timeline{Name: args[0], NumericDates: numeric, Events: []world.TimelineEvent{}}
				if err := ws.Timelines.Add(ctx, t); err != nil {
					return err
				}
				printf(cmd, "Created timeline %s (%s).\n", t.Name, t.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&numeric, "numeric-dates", false, "Require event dates to be integer years")
	return cmd
}

func timelineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List timelines with their events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				timelines := ws.Timelines.All()
				if len(timelines) == 0 {
					printf(cmd, "No timelines found.\n")
					return nil
				}
				for _, t := range timelines {
					printf(cmd, "%s  %s (%d events)\n", t.ID, t.Name, len(t.Events))
					for _, ev := range t.Events {
						line := fmt.Sprintf("    %s  [%s] %s", ev.ID, ev.Date, ev.Title)
						if ev.Location != "" {
							line += " @ " + ev.Location
						}
						printf(cmd, "%s\n", line)
					}
				}
				return nil
			})
		},
	}
}

func timelineAddEventCmd() *cobra.Command {
	var ev world.TimelineEvent
	cmd := &cobra.Command{
		Use:   "add-event <timeline> <date> <title>",
		Short: "Add an event to a timeline",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev.Date = args[1]
			ev.Title = args[2]
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				t, err := findTimeline(ws, args[0])
				if err != nil {
					return err
				}
				added, err := ws.AddEvent(ctx, t.ID, ev)
				if err != nil {
					return err
				}
				printf(cmd, "Added event %s to %s (%s).\n", added.Title, t.Name, added.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ev.Description, "description", "", "Description")
	cmd.Flags().StringVar(&ev.Location, "location", "", "Location")
	cmd.Flags().StringVar(&ev.RelatedCharacters, "characters", "", "Characters involved")
	cmd.Flags().StringVar(&ev.Type, "type", "", "Event type")
	return cmd
}

func timelineRemoveCmd() *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "remove <timeline>",
		Short: "Remove a timeline, or one of its events with --event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				t, err := findTimeline(ws, args[0])
				if err != nil {
					return err
				}
				if eventID != "" {
					found, err := ws.RemoveEvent(ctx, t.ID, eventID)
					if err != nil {
						return err
					}
					if !found {
						return fmt.Errorf("event %q not found in %s", eventID, t.Name)
					}
					printf(cmd, "Removed event %s.\n", eventID)
					return nil
				}
				if _, err := ws.Timelines.Remove(ctx, t.ID); err != nil {
					return err
				}
				printf(cmd, "Removed timeline %s.\n", t.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event id to remove")
	return cmd
}

func findTimeline(ws *world.Workspace, ref string) (*world.Timeline, error) {
	if t, ok := ws.Timelines.Get(ref); ok {
		return t, nil
	}
	for _, t := range ws.Timelines.All() {
		if strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("timeline %q not found", ref)
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func mapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Manage maps, markers and drawings",
	}
	cmd.AddCommand(mapAddCmd())
	cmd.AddCommand(mapListCmd())
	cmd.AddCommand(mapMarkCmd())
	cmd.AddCommand(mapDrawCmd())
	return cmd
}

func mapAddCmd() *cobra.Command {
	var m world.MapDefinition
	var image string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Name = args[0]
			if image != "" {
				url, err := imageDataURL(image)
				if err != nil {
					return err
				}
				m.Image = url
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				if err := ws.Maps.Add(ctx, &m); err != nil {
					return err
				}
				printf(cmd, "Added map %s (%s).\n", m.Name, m.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "Map image file")
	cmd.Flags().IntVar(&m.Width, "width", 0, "Width in pixels")
	cmd.Flags().IntVar(&m.Height, "height", 0, "Height in pixels")
	return cmd
}

func mapListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List maps with their markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				maps := ws.Maps.All()
				if len(maps) == 0 {
					printf(cmd, "No maps found.\n")
					return nil
				}
				drawings := make(map[string]int)
				for _, d := range ws.Drawings.All() {
					drawings[d.MapID]++
				}
				for _, m := range maps {
					printf(cmd, "%s  %s (%d drawings)\n", m.ID, m.Name, drawings[m.ID])
					for _, mk := range ws.Markers.All() {
						if mk.MapID != m.ID {
							continue
						}
						printf(cmd, "    %s  (%.1f%%, %.1f%%) %s\n", mk.ID, mk.X, mk.Y, joinNonEmpty(" ", mk.Label, bracket(mk.Type)))
					}
				}
				return nil
			})
		},
	}
}

func mapMarkCmd() *cobra.Command {
	var label string
	var kind string
	cmd := &cobra.Command{
		Use:   "mark <map> <x%> <y%>",
		Short: "Place a marker at a position given in percent of the map size",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x %q: %w", args[1], err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid y %q: %w", args[2], err)
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				m, err := findMap(ws, args[0])
				if err != nil {
					return err
				}
				mk := &world.Marker{MapID: m.ID, X: x, Y: y, Label: label, Type: kind}
				if err := ws.Markers.Add(ctx, mk); err != nil {
					return err
				}
				printf(cmd, "Added marker %s to %s.\n", mk.ID, m.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Label")
	cmd.Flags().StringVar(&kind, "type", "", "Marker type, e.g. city or ruin")
	return cmd
}

func mapDrawCmd() *cobra.Command {
	var stroke world.Stroke
	cmd := &cobra.Command{
		Use:   "draw <map> <x,y> <x,y> [x,y...]",
		Short: "Add a freehand line through the given points",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := make([]world.Point, 0, len(args)-1)
			for _, arg := range args[1:] {
				p, err := parsePoint(arg)
				if err != nil {
					return err
				}
				points = append(points, p)
			}
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				m, err := findMap(ws, args[0])
				if err != nil {
					return err
				}
				d := &world.Drawing{MapID: m.ID, Points: points, Stroke: stroke}
				if err := ws.Drawings.Add(ctx, d); err != nil {
					return err
				}
				printf(cmd, "Added drawing %s to %s.\n", d.ID, m.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&stroke.Color, "color", "#000000", "Stroke color")
	cmd.Flags().Float64Var(&stroke.Width, "stroke-width", 2, "Stroke width")
	return cmd
}

func findMap(ws *world.Workspace, ref string) (*world.MapDefinition, error) {
	if m, ok := ws.Maps.Get(ref); ok {
		return m, nil
	}
	for _, m := range ws.Maps.All() {
		if strings.EqualFold(m.Name, strings.TrimSpace(ref)) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("map %q not found", ref)
}

func parsePoint(value string) (world.Point, error) {
	xs, ys, ok := strings.Cut(value, ",")
	if !ok {
		return world.Point{}, fmt.Errorf("invalid point %q, expected x,y", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return world.Point{}, fmt.Errorf("invalid point %q: %w", value, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return world.Point{}, fmt.Errorf("invalid point %q: %w", value, err)
	}
	return world.Point{X: x, Y: y}, nil
}

func bracket(s string) string {
	if s == "" {
		return ""
	}
	return "[" + s + "]"
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func magicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "magic",
		Short: "Manage magic types and skill trees",
	}
	cmd.AddCommand(magicAddTypeCmd())
	cmd.AddCommand(magicAddSkillCmd())
	cmd.AddCommand(magicTreeCmd())
	return cmd
}

func magicAddTypeCmd() *cobra.Command {
	var icon string
	cmd := &cobra.Command{
		Use:   "add-type <name>",
		Short: "Add a magic type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				m := &world.MagicType{Name: args[0], Icon: icon}
				if err := ws.MagicTypes.Add(ctx, m); err != nil {
					return err
				}
				printf(cmd, "Added magic type %s (%s).\n", m.Name, m.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&icon, "icon", "", "Icon")
	return cmd
}

func magicAddSkillCmd() *cobra.Command {
	var s world.Skill
	var parent string
	cmd := &cobra.Command{
		Use:   "add-skill <magic-type> <name>",
		Short: "Add a skill to a magic type's tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				m, err := findMagicType(ws, args[0])
				if err != nil {
					return err
				}
				s.MagicTypeID = m.ID
				s.Name = args[1]
				if parent != "" {
					p, err := findSkill(ws, m.ID, parent)
					if err != nil {
						return err
					}
					s.ParentID = p.ID
				}
				if err := ws.Skills.Add(ctx, &s); err != nil {
					return err
				}
				printf(cmd, "Added skill %s (%s).\n", s.Name, s.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent skill id or name")
	cmd.Flags().StringVar(&s.Icon, "icon", "", "Icon")
	cmd.Flags().BoolVar(&s.IsUltimate, "ultimate", false, "Mark as an ultimate skill")
	return cmd
}

func magicTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [magic-type]",
		Short: "Print skill trees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
				types := ws.MagicTypes.All()
				if len(args) > 0 {
					m, err := findMagicType(ws, args[0])
					if err != nil {
						return err
					}
					types = []*world.MagicType{m}
				}
				if len(types) == 0 {
					printf(cmd, "No magic types found.\n")
					return nil
				}

				tree := world.NewSkillTree(ws.Skills.All())
				for _, m := range types {
					printf(cmd, "%s (%s)\n", m.Name, m.ID)
					tree.Walk(tree.Roots(m.ID), func(s *world.Skill, depth int) {
						suffix := ""
						if s.IsUltimate {
							suffix = " [ultimate]"
						}
						printf(cmd, "%s- %s%s\n", strings.Repeat("  ", depth+1), s.Name, suffix)
					})
				}
				return nil
			})
		},
	}
}

func findMagicType(ws *world.Workspace, ref string) (*world.MagicType, error) {
	if m, ok := ws.MagicTypes.Get(ref); ok {
		return m, nil
	}
	for _, m := range ws.MagicTypes.All() {
		if strings.EqualFold(m.Name, strings.TrimSpace(ref)) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("magic type %q not found", ref)
}

func findSkill(ws *world.Workspace, magicTypeID, ref string) (*world.Skill, error) {
	if s, ok := ws.Skills.Get(ref); ok {
		return s, nil
	}
	for _, s := range ws.Skills.All() {
		if s.MagicTypeID == magicTypeID && strings.EqualFold(s.Name, strings.TrimSpace(ref)) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("skill %q not found", ref)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
)

const templatesFileName = "templates.yaml"

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new worldsmith project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(cmd, dir, projectName, dsn)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://worldsmith.db", "Storage DSN (sqlite://, postgres://, file://)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to scaffold into")
	return cmd
}

func runInit(cmd *cobra.Command, dir, projectName, dsn string) error {
	configFile := filepath.Join(dir, config.DefaultPath)
	templatesFile := filepath.Join(dir, templatesFileName)
	for _, path := range []string{configFile, templatesFile} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	templates, err := config.DefaultTemplates().Marshal()
	if err != nil {
		return err
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nstorage:\n  dsn: %q\n\nlogging:\n  level: info\n  format: text\n\ntemplates: %s\n\ningest:\n  paths:\n    - ./notes/\n  exclude:\n    - ./notes/drafts/\n", projectName, dsn, templatesFileName)
	if err := os.WriteFile(configFile, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := os.WriteFile(templatesFile, templates, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", templatesFile, err)
	}

	printf(cmd, "Created %s and %s.\n", configFile, templatesFile)
	return nil
}

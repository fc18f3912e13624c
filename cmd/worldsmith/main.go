package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "worldsmith",
		Short:         "World-building data store for characters, lore, timelines and maps",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Project config file (default "+defaultConfigName+")")
	root.PersistentFlags().StringVar(&worldFlag, "world", "", "World id or name (defaults to the selected world)")

	root.AddCommand(initCmd())
	root.AddCommand(worldCmd())
	root.AddCommand(characterCmd())
	root.AddCommand(noteCmd())
	root.AddCommand(relationshipCmd())
	root.AddCommand(timelineCmd())
	root.AddCommand(loreCmd())
	root.AddCommand(magicCmd())
	root.AddCommand(mapCmd())
	root.AddCommand(templateCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

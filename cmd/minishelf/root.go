package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "minishelf",
	Short:         "minishelf - A personal tabletop miniature inventory",
	Long:          "minishelf tracks painted and unpainted miniatures across game systems,\nwith keyword search, JSON export, and pull-based synchronization from a shared URL.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newKeywordsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSyncCmd())
}

package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:               "bazaar",
	Short:             "Bazaar serves the supplier and vendor sign-in screens of the marketplace.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: prepareCommand,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, authCheckCmd)
}

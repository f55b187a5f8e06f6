package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/greenflash/greenflash/cmd/manage/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "manage",
		Short: "Maintenance tasks for greenflash",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.MediaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

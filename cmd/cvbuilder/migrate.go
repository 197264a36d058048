package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := context.Background()

		database, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		applied, err := database.Migrate(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintln(out, "Database is up to date")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(out, "%s %s\n", successStyle.Render("Applied"), v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

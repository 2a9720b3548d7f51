package main

import (
	"github.com/spf13/cobra"

	"github.com/hshy1839/seongji-erp-server/internal/database"
	"github.com/hshy1839/seongji-erp-server/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

func migrator(cmd *cobra.Command, fn func(m *database.Migrator) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := db.Connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(database.NewMigrator(pool, log))
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrator(cmd, func(m *database.Migrator) error { return m.RunMigrations(cmd.Context()) })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrator(cmd, func(m *database.Migrator) error { return m.Down(cmd.Context()) })
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

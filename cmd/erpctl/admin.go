package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hshy1839/seongji-erp-server/internal/app"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/storage"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Repair stock rows whose current quantity drifted from opening + inbound - used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			repaired, err := a.Stocks.AuditCurrentQty(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("repaired %d stock rows\n", repaired)
			return nil
		})
	},
}

var userFlags struct {
	name     string
	password string
	role     string
}

var userCreateCmd = &cobra.Command{
	Use:   "user-create <username>",
	Short: "Create an operator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			u, err := a.Users.CreateUser(cmd.Context(), &models.CreateUserRequest{
				Username: args[0],
				Name:     userFlags.name,
				Password: userFlags.password,
				Role:     userFlags.role,
			})
			if err != nil {
				return err
			}
			return printJSON(u)
		})
	},
}

var archiveDay string

var archiveListCmd = &cobra.Command{
	Use:   "archive-ls <resource>",
	Short: "List archived uploads of a resource for one upload day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if a.Archive == nil {
				return fmt.Errorf("upload archive is not enabled")
			}
			day := archiveDay
			if day == "" {
				day = timeutil.UploadDay(timeutil.Now(), a.Cfg.Ingest.TZOffsetMinutes).Key
			}
			objects, err := a.Archive.List(cmd.Context(), args[0], day)
			if err != nil {
				return err
			}
			if objects == nil {
				objects = []storage.Object{}
			}
			return printJSON(objects)
		})
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userFlags.name, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userFlags.password, "password", "", "initial password (min 8 characters)")
	userCreateCmd.Flags().StringVar(&userFlags.role, "role", models.RoleStaff, "admin or staff")
	userCreateCmd.MarkFlagRequired("password")

	archiveListCmd.Flags().StringVar(&archiveDay, "day", "", "upload day YYYY-MM-DD (default today)")

	rootCmd.AddCommand(auditCmd, userCreateCmd, archiveListCmd)
}

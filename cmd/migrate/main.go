package main

import (
	"context"
	"fmt"
	"os"

	"order_system/internal/config" // Custom import path (Config)
	"order_system/internal/db"     // Custom import path (Database)
	"order_system/internal/store"  // Account creation

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Main entry point for migration
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Create or update the database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			logrus.Info("Database migrated successfully")
			return nil
		},
	}
	root.AddCommand(newCreateAdminCmd())
	return root
}

// connect loads the configuration, opens the database and migrates it
func connect() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Errorf("invalid configuration: %v", err)
		return nil, err
	}
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Errorf("failed to connect to DB: %v", err)
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Errorf("migration failed: %v", err)
		return nil, err
	}
	return conn, nil
}

func newCreateAdminCmd() *cobra.Command {
	var in store.AccountInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Migrate, then create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			in.IsAdmin = true
			account, err := store.NewAccountStore(conn).Create(context.Background(), in)
			if err != nil {
				logrus.Errorf("failed to create admin: %v", err)
				return err
			}
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"username":   account.Username,
			}).Info("Admin account created")
			fmt.Fprintln(cmd.OutOrStdout(), account.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

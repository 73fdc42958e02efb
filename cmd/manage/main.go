package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"airport-service/internal/configs"
	"airport-service/internal/repository/postgres"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "manage",
		Short:        "Administrative tasks for the airport service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return cfg.SetupLogging()
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createSuperuserCmd())
	rootCmd.AddCommand(purgeCacheCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (configs.Config, error) {
	return configs.LoadConfig(envFile)
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(cfg configs.Config, db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := postgres.ConnectURL(cfg.PgDSN())
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer func() {
		if derr := db.Close(); derr != nil {
			logrus.Errorf("db close: %v", derr)
		}
	}()
	return fn(cfg, db)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(_ configs.Config, db *gorm.DB) error {
				if err := postgres.Migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				logrus.Print("schema is up to date")
				return nil
			})
		},
	}
}

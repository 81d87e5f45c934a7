// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"mentorcircles/internal/config"
	"mentorcircles/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, inspect and roll back the database schema",
	Long: `migrate manages the circles database schema.

Examples:
  migrate up          # apply pending SQL migrations
  migrate auto        # run GORM AutoMigrate regardless of DB_SCHEMA_MODE
  migrate status      # show schema mode and pending migrations
  migrate down 3      # roll back migration 3`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending SQL migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
			if err := database.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("sql migrations failed: %w", err)
			}
			log.Println("sql migrations applied")
			return nil
		})
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run GORM AutoMigrate for every persistent model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
			cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(ctx, db, cfg); err != nil {
				return fmt.Errorf("auto schema apply failed: %w", err)
			}
			log.Println("automigrations applied")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema policy and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
			status, err := database.GetSchemaStatus(ctx, db, cfg)
			if err != nil {
				return fmt.Errorf("schema status failed: %w", err)
			}
			log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
				status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
				len(status.AppliedVersions), len(status.PendingMigrations))
			for _, m := range status.PendingMigrations {
				log.Printf("pending: %06d_%s", m.Version, m.Name)
			}
			for _, table := range status.MissingTables {
				log.Printf("missing table: %s", table)
			}
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Roll back a single applied migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withDB(func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
			if err := database.RollbackMigration(ctx, db, version); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			log.Printf("rolled back migration %d", version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(upCmd, autoCmd, statusCmd, downCmd)
}

// withDB loads config and connects without touching the schema.
func withDB(fn func(ctx context.Context, cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return fn(context.Background(), cfg, db)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

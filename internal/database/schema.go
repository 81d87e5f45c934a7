package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mentorcircles/internal/config"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// Schema modes (DB_SCHEMA_MODE).
const (
	SchemaModeHybrid = "hybrid" // SQL migrations everywhere, plus AutoMigrate outside prod-like envs
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do for a config.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
	// MissingTables lists capacity tables absent right now.
	MissingTables []string
}

// schemaPlan is the resolved DB_SCHEMA_MODE for one environment.
type schemaPlan struct {
	mode string
	sql  bool
	auto bool
}

// capacityTables hold seat counts, the waitlist and pending governance
// changes. The engine cannot admit or promote without all three.
func capacityTables() []interface{} {
	return []interface{}{&models.Circle{}, &models.Application{}, &models.CircleChangeRequest{}}
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}
	prodLike := isProdLikeEnv(cfg.Env)

	switch plan.mode {
	case SchemaModeSQL:
		plan.sql = true
	case SchemaModeAuto:
		if prodLike {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q; use sql migrations", cfg.Env)
		}
		plan.auto = true
	case SchemaModeHybrid:
		plan.sql, plan.auto = true, !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.mode)
	}
	return plan, nil
}

func missingCapacityTables(db *gorm.DB) ([]string, error) {
	var missing []string
	for _, model := range capacityTables() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		if !db.Migrator().HasTable(stmt.Table) {
			missing = append(missing, stmt.Table)
		}
	}
	return missing, nil
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE
// and fails if the circle, application or change-request table is still absent.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}
	db = db.WithContext(ctx)

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.auto {
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", plan.mode), slog.String("env", cfg.Env),
			slog.Int("models", len(PersistentModels())))
		if err := db.AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	missing, err := missingCapacityTables(db)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete after %s apply: missing %s", plan.mode, strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports the schema plan, missing capacity tables and, for
// SQL modes, which migrations are pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
	}
	if status.MissingTables, err = missingCapacityTables(db); err != nil {
		return nil, err
	}
	if !plan.sql {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	done := make(map[int]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}
	for _, m := range GetMigrations() {
		if !done[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}

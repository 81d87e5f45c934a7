package database

import (
	"context"
	"testing"
	"testing/fstest"

	"mentorcircles/internal/config"
	"mentorcircles/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testMigrationFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/000002_add_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"migrations/000002_add_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
		"migrations/000001_add_tags.up.sql":    {Data: []byte("CREATE TABLE tags (id TEXT PRIMARY KEY);")},
		"migrations/000001_add_tags.down.sql":  {Data: []byte("DROP TABLE tags;")},
		"migrations/README.md":                 {Data: []byte("ignored")},
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestLoadMigrations(t *testing.T) {
	ms, err := LoadMigrations(testMigrationFS())
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "add_tags", ms[0].Name)
	assert.Equal(t, "000002_add_notes", ms[1].String())
}

func TestLoadMigrations_Errors(t *testing.T) {
	missingDown := fstest.MapFS{
		"migrations/000001_x.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := LoadMigrations(missingDown)
	assert.Error(t, err)

	badVersion := fstest.MapFS{
		"migrations/abc_x.up.sql":   {Data: []byte("SELECT 1;")},
		"migrations/abc_x.down.sql": {Data: []byte("SELECT 1;")},
	}
	_, err = LoadMigrations(badVersion)
	assert.Error(t, err)
}

func TestEmbeddedMigrationsAreRegistered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, "create_circles", ms[0].Name)
	assert.NotNil(t, GetMigrationByVersion(ms[0].Version))
	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestRunAndRollbackMigrations(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	ms, err := LoadMigrations(testMigrationFS())
	require.NoError(t, err)

	require.NoError(t, runMigrations(ctx, db, ms))
	assert.True(t, db.Migrator().HasTable("tags"))
	assert.True(t, db.Migrator().HasTable("notes"))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	// idempotent
	require.NoError(t, runMigrations(ctx, db, ms))

	require.NoError(t, rollbackMigration(ctx, db, ms, 2))
	assert.False(t, db.Migrator().HasTable("notes"))

	assert.Error(t, rollbackMigration(ctx, db, ms, 2), "already rolled back")
	assert.Error(t, rollbackMigration(ctx, db, ms, 42), "unknown version")
}

func TestRunMigrations_UnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 77, Name: "from_the_future"}).Error)

	err := runMigrations(ctx, db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000077")
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mode    string
		wantSQL bool
		wantAut bool
		wantErr bool
	}{
		{"hybrid dev", "development", "", true, true, false},
		{"hybrid prod", "production", "hybrid", true, false, false},
		{"sql", "development", "sql", true, false, false},
		{"auto dev", "test", "auto", false, true, false},
		{"auto prod refused", "production", "auto", false, false, true},
		{"unknown", "development", "yolo", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planSchema(&config.Config{Env: tt.env, DBSchemaMode: tt.mode})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.sql)
			assert.Equal(t, tt.wantAut, plan.auto)
		})
	}
}

func TestApplySchema_AutoMode(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}

	require.NoError(t, ApplySchema(ctx, db, cfg))
	assert.True(t, db.Migrator().HasTable("circles"))

	status, err := GetSchemaStatus(ctx, db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.MissingTables)
}

func TestGetSchemaStatus_ReportsMissingCapacityTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&models.Circle{}))

	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto})
	require.NoError(t, err)
	assert.Equal(t, []string{"applications", "circle_change_requests"}, status.MissingTables)
}

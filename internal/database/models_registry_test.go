package database

import (
	"testing"

	"mentorcircles/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesChangeRequests(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*models.CircleChangeRequest); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include CircleChangeRequest")
}

func TestPersistentModels_AutoMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	missing, err := missingCapacityTables(db)
	require.NoError(t, err)
	assert.Len(t, missing, 3)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))
	missing, err = missingCapacityTables(db)
	require.NoError(t, err)
	assert.Empty(t, missing)
	for _, table := range []string{"users", "follows", "circles", "applications", "circle_change_requests", "circle_sessions", "resources", "discussion_posts"} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mentorcircles/internal/database"
	"mentorcircles/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with every persistent
// model migrated. A single connection keeps the memory database alive and
// serializes access the way one locked row would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts a user with the given id and role.
func CreateUser(t testing.TB, db *gorm.DB, id string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:              id,
		Email:           id + "@example.com",
		Name:            "User " + id,
		Role:            role,
		ReputationScore: models.DefaultReputationScore,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CircleFixture describes a circle to insert. Zero values get defaults.
type CircleFixture struct {
	CreatorID     string
	MentorID      string
	Status        models.CircleStatus
	MaxCapacity   int
	DurationWeeks int
}

// CreateCircle inserts a circle. An empty MentorID leaves the circle unassigned.
func CreateCircle(t testing.TB, db *gorm.DB, f CircleFixture) *models.Circle {
	t.Helper()
	circle := &models.Circle{
		CreatorID:     f.CreatorID,
		Title:         "Go in Production",
		Description:   "Weekly deep dives",
		Status:        f.Status,
		MaxCapacity:   f.MaxCapacity,
		DurationWeeks: f.DurationWeeks,
	}
	if f.MentorID != "" {
		mentorID := f.MentorID
		circle.MentorID = &mentorID
	}
	if circle.Status == "" {
		circle.Status = models.CircleStatusOpen
	}
	if circle.MaxCapacity == 0 {
		circle.MaxCapacity = 10
	}
	if circle.DurationWeeks == 0 {
		circle.DurationWeeks = 8
	}
	require.NoError(t, db.Create(circle).Error)
	return circle
}

// CreateApplication inserts an application with an explicit creation time so
// FIFO ordering is deterministic.
func CreateApplication(t testing.TB, db *gorm.DB, circleID, menteeID string, status models.ApplicationStatus, createdAt time.Time) *models.Application {
	t.Helper()
	app := &models.Application{
		CircleID:        circleID,
		MenteeID:        menteeID,
		IntentStatement: "I want to learn",
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

// FillCircle inserts n applications of the given status, one second apart.
func FillCircle(t testing.TB, db *gorm.DB, circleID string, n int, status models.ApplicationStatus) []*models.Application {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	apps := make([]*models.Application, 0, n)
	for i := 0; i < n; i++ {
		apps = append(apps, CreateApplication(t, db, circleID, fmt.Sprintf("%s-mentee-%d", status, i), status, base.Add(time.Duration(i)*time.Second)))
	}
	return apps
}

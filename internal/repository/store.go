package repository

import (
	"context"
	"errors"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories groups the repositories touched by the circle workflows so a
// workflow can run them against a plain handle or inside one transaction.
type Repositories struct {
	Circles        CircleRepository
	Applications   ApplicationRepository
	ChangeRequests ChangeRequestRepository
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Circles:        NewCircleRepository(db),
		Applications:   NewApplicationRepository(db),
		ChangeRequests: NewChangeRequestRepository(db),
	}
}

// Store hands out workflow repositories.
type Store struct {
	db    *gorm.DB
	repos Repositories
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, repos: newRepositories(db)}
}

// Repos returns repositories whose statements each commit on their own.
func (s *Store) Repos() Repositories {
	return s.repos
}

// Serialized runs fn in a single transaction holding the circle row lock.
// On PostgreSQL the circle is read with SELECT ... FOR UPDATE so concurrent
// workflows on the same circle queue behind each other. Returns NOT_FOUND
// if the circle does not exist.
func (s *Store) Serialized(ctx context.Context, circleID string, fn func(Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Circle{}).Select("id").Where("id = ?", circleID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var locked models.Circle
		if err := q.First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Circle", circleID)
			}
			return models.NewInternalError(err)
		}
		return fn(newRepositories(tx))
	})
}

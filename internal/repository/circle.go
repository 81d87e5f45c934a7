// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// CircleRepository defines persistence operations for circles.
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle) error
	GetByID(ctx context.Context, id string) (*models.Circle, error)
	UpdateStatus(ctx context.Context, id string, status models.CircleStatus) error
	UpdateLimits(ctx context.Context, id string, maxCapacity, durationWeeks int) error
	AssignMentor(ctx context.Context, id, mentorID string) error
	Delete(ctx context.Context, id string) error
	ListPublic(ctx context.Context) ([]models.Circle, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.Circle, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Circle, error)
	ListPitchesFor(ctx context.Context, mentorID string) ([]models.Circle, error)
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

func (r *circleRepository) Create(ctx context.Context, circle *models.Circle) error {
	if err := r.db.WithContext(ctx).Create(circle).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *circleRepository) GetByID(ctx context.Context, id string) (*models.Circle, error) {
	var circle models.Circle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Circle", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &circle, nil
}

// updateCircle applies fields to one circle, reporting NOT_FOUND when no row matched.
func (r *circleRepository) updateCircle(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Circle{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Circle", id)
	}
	return nil
}

func (r *circleRepository) UpdateStatus(ctx context.Context, id string, status models.CircleStatus) error {
	return r.updateCircle(ctx, id, map[string]interface{}{"status": status})
}

func (r *circleRepository) UpdateLimits(ctx context.Context, id string, maxCapacity, durationWeeks int) error {
	return r.updateCircle(ctx, id, map[string]interface{}{
		"max_capacity":   maxCapacity,
		"duration_weeks": durationWeeks,
	})
}

func (r *circleRepository) AssignMentor(ctx context.Context, id, mentorID string) error {
	return r.updateCircle(ctx, id, map[string]interface{}{
		"mentor_id": mentorID,
		"status":    models.CircleStatusOpen,
	})
}

func (r *circleRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Circle{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *circleRepository) ListPublic(ctx context.Context) ([]models.Circle, error) {
	var circles []models.Circle
	if err := r.db.WithContext(ctx).
		Preload("Mentor").
		Where("status IN ?", []models.CircleStatus{models.CircleStatusOpen, models.CircleStatusActive, models.CircleStatusProposed}).
		Order("created_at DESC").
		Find(&circles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

func (r *circleRepository) ListByMentor(ctx context.Context, mentorID string) ([]models.Circle, error) {
	var circles []models.Circle
	if err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&circles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

func (r *circleRepository) ListByParticipant(ctx context.Context, userID string) ([]models.Circle, error) {
	var circles []models.Circle
	if err := r.db.WithContext(ctx).
		Preload("Mentor").
		Where("creator_id = ? OR mentor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&circles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

// ListPitchesFor returns unassigned PROPOSED circles pitched to mentorID or to no one in particular.
func (r *circleRepository) ListPitchesFor(ctx context.Context, mentorID string) ([]models.Circle, error) {
	var circles []models.Circle
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("status = ? AND mentor_id IS NULL", models.CircleStatusProposed).
		Where("proposed_mentor_id = ? OR proposed_mentor_id IS NULL", mentorID).
		Order("created_at DESC").
		Find(&circles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

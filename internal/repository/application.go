package repository

import (
	"context"
	"errors"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	Resubmit(ctx context.Context, id, intentStatement string, status models.ApplicationStatus) error
	GetByID(ctx context.Context, circleID, id string) (*models.Application, error)
	FindByCircleAndMentee(ctx context.Context, circleID, menteeID string) (*models.Application, error)
	CountFilled(ctx context.Context, circleID string) (int64, error)
	CountFilledByCircle(ctx context.Context, circleIDs []string) (map[string]int64, error)
	ListByCircle(ctx context.Context, circleID string) ([]models.Application, error)
	ListByMentee(ctx context.Context, menteeID string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	PromoteWaitlisted(ctx context.Context, ids []string) (int64, error)
	IsAcceptedMember(ctx context.Context, circleID, userID string) (bool, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Resubmit rewrites a REJECTED application in place, keeping its id.
func (r *applicationRepository) Resubmit(ctx context.Context, id, intentStatement string, status models.ApplicationStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"intent_statement": intentStatement,
			"status":           status,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, circleID, id string) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).
		Where("id = ? AND circle_id = ?", id, circleID).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &app, nil
}

// FindByCircleAndMentee returns the mentee's most recent application, or nil if none exists.
func (r *applicationRepository) FindByCircleAndMentee(ctx context.Context, circleID, menteeID string) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND mentee_id = ?", circleID, menteeID).
		Order("created_at DESC").
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &app, nil
}

func (r *applicationRepository) CountFilled(ctx context.Context, circleID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("circle_id = ? AND status IN ?", circleID, models.FilledStatuses).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *applicationRepository) CountFilledByCircle(ctx context.Context, circleIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(circleIDs))
	if len(circleIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		CircleID string
		Filled   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("circle_id, COUNT(*) AS filled").
		Where("circle_id IN ? AND status IN ?", circleIDs, models.FilledStatuses).
		Group("circle_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.CircleID] = row.Filled
	}
	return out, nil
}

// ListByCircle returns applications oldest first; ties break on id so the order is total.
func (r *applicationRepository) ListByCircle(ctx context.Context, circleID string) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.WithContext(ctx).
		Preload("Mentee").
		Where("circle_id = ?", circleID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) ListByMentee(ctx context.Context, menteeID string) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.WithContext(ctx).
		Preload("Circle").
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// PromoteWaitlisted moves the given applications from WAITLIST to PENDING.
// Rows no longer on the waitlist are left untouched.
func (r *applicationRepository) PromoteWaitlisted(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id IN ? AND status = ?", ids, models.ApplicationStatusWaitlist).
		Update("status", models.ApplicationStatusPending)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *applicationRepository) IsAcceptedMember(ctx context.Context, circleID, userID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("circle_id = ? AND mentee_id = ? AND status = ?", circleID, userID, models.ApplicationStatusAccepted).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

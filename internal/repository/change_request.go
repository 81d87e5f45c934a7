package repository

import (
	"context"
	"errors"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// ChangeRequestRepository defines persistence operations for circle change requests.
type ChangeRequestRepository interface {
	Create(ctx context.Context, req *models.CircleChangeRequest) error
	SaveApprovals(ctx context.Context, req *models.CircleChangeRequest) error
	MarkApplied(ctx context.Context, id string) error
	GetPending(ctx context.Context, circleID, id string) (*models.CircleChangeRequest, error)
	ListPending(ctx context.Context, circleID string) ([]models.CircleChangeRequest, error)
}

type changeRequestRepository struct {
	db *gorm.DB
}

// NewChangeRequestRepository creates a new change request repository
func NewChangeRequestRepository(db *gorm.DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

func (r *changeRequestRepository) Create(ctx context.Context, req *models.CircleChangeRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// SaveApprovals persists both approval flags of a still-pending request.
func (r *changeRequestRepository) SaveApprovals(ctx context.Context, req *models.CircleChangeRequest) error {
	if err := r.db.WithContext(ctx).
		Model(&models.CircleChangeRequest{}).
		Where("id = ? AND status = ?", req.ID, models.ChangeRequestStatusPending).
		Updates(map[string]interface{}{
			"creator_approved": req.CreatorApproved,
			"mentor_approved":  req.MentorApproved,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// MarkApplied moves a pending request to APPLIED. Applied requests are never updated again.
func (r *changeRequestRepository) MarkApplied(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.CircleChangeRequest{}).
		Where("id = ? AND status = ?", id, models.ChangeRequestStatusPending).
		Updates(map[string]interface{}{
			"status":           models.ChangeRequestStatusApplied,
			"creator_approved": true,
			"mentor_approved":  true,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *changeRequestRepository) GetPending(ctx context.Context, circleID, id string) (*models.CircleChangeRequest, error) {
	var req models.CircleChangeRequest
	if err := r.db.WithContext(ctx).
		Where("id = ? AND circle_id = ? AND status = ?", id, circleID, models.ChangeRequestStatusPending).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Change request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *changeRequestRepository) ListPending(ctx context.Context, circleID string) ([]models.CircleChangeRequest, error) {
	var reqs []models.CircleChangeRequest
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND status = ?", circleID, models.ChangeRequestStatusPending).
		Order("created_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

package repository

import (
	"context"
	"errors"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// RoomRepository defines persistence for the sessions, resources and
// discussion posts that make up a circle room.
type RoomRepository interface {
	ListSessions(ctx context.Context, circleID string) ([]models.CircleSession, error)
	CreateSession(ctx context.Context, session *models.CircleSession) error
	GetSession(ctx context.Context, circleID, id string) (*models.CircleSession, error)
	CompleteSession(ctx context.Context, id, notes string) error

	ListResources(ctx context.Context, circleID string) ([]models.Resource, error)
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, circleID, id string) (*models.Resource, error)
	DeleteResource(ctx context.Context, id string) error

	ListTopLevelPosts(ctx context.Context, circleID string) ([]models.DiscussionPost, error)
	CreatePost(ctx context.Context, post *models.DiscussionPost) error
	GetPost(ctx context.Context, circleID, id string) (*models.DiscussionPost, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// firstInCircle loads one row of dest's table scoped to a circle.
func (r *roomRepository) firstInCircle(ctx context.Context, dest interface{}, resource, circleID, id string) error {
	if err := r.db.WithContext(ctx).
		Where("id = ? AND circle_id = ?", id, circleID).
		First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) ListSessions(ctx context.Context, circleID string) ([]models.CircleSession, error) {
	var sessions []models.CircleSession
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("scheduled_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return sessions, nil
}

func (r *roomRepository) CreateSession(ctx context.Context, session *models.CircleSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) GetSession(ctx context.Context, circleID, id string) (*models.CircleSession, error) {
	var session models.CircleSession
	if err := r.firstInCircle(ctx, &session, "Session", circleID, id); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *roomRepository) CompleteSession(ctx context.Context, id, notes string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.CircleSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": models.SessionStatusCompleted,
			"notes":  notes,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) ListResources(ctx context.Context, circleID string) ([]models.Resource, error) {
	var resources []models.Resource
	if err := r.db.WithContext(ctx).
		Preload("AddedBy").
		Where("circle_id = ?", circleID).
		Order("created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return resources, nil
}

func (r *roomRepository) CreateResource(ctx context.Context, resource *models.Resource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) GetResource(ctx context.Context, circleID, id string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.firstInCircle(ctx, &resource, "Resource", circleID, id); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *roomRepository) DeleteResource(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Resource{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) ListTopLevelPosts(ctx context.Context, circleID string) ([]models.DiscussionPost, error) {
	var posts []models.DiscussionPost
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("circle_id = ? AND parent_id IS NULL", circleID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *roomRepository) CreatePost(ctx context.Context, post *models.DiscussionPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) GetPost(ctx context.Context, circleID, id string) (*models.DiscussionPost, error) {
	var post models.DiscussionPost
	if err := r.firstInCircle(ctx, &post, "Post", circleID, id); err != nil {
		return nil, err
	}
	return &post, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"

	"github.com/redis/go-redis/v9"
)

// UserService mirrors external identities into the users table.
type UserService struct {
	users repository.UserRepository
	rdb   *redis.Client
}

// NewUserService returns a new UserService. rdb may be nil.
func NewUserService(users repository.UserRepository, rdb *redis.Client) *UserService {
	return &UserService{users: users, rdb: rdb}
}

// SyncIdentity upserts the caller's user row at most once per UserSeenTTL.
// A failed upsert clears the marker so the next request retries.
func (s *UserService) SyncIdentity(ctx context.Context, id *middleware.Identity) error {
	if id == nil || id.UserID == "" {
		return models.NewUnauthenticatedError()
	}

	key := cache.UserSeenKey(id.UserID)
	if s.rdb != nil {
		first, err := s.rdb.SetNX(ctx, key, 1, cache.UserSeenTTL).Result()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "identity sync marker failed", slog.String("error", err.Error()))
		} else if !first {
			return nil
		}
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = strings.Split(id.Email, "@")[0]
	}
	err := s.users.Upsert(ctx, &models.User{
		ID:              id.UserID,
		Email:           id.Email,
		Name:            name,
		Role:            models.PersistedRole(id.Role),
		ReputationScore: models.DefaultReputationScore,
	})
	if err != nil && s.rdb != nil {
		_ = s.rdb.Del(ctx, key).Err()
	}
	return err
}

// IsTokenRevoked reports whether a token id has been blacklisted. Without
// Redis nothing is revoked.
func (s *UserService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.rdb == nil || tokenID == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, cache.TokenBlacklistKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

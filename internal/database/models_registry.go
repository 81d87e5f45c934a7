package database

import "mentorcircles/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Circle{},
		&models.Application{},
		&models.CircleChangeRequest{},
		&models.CircleSession{},
		&models.Resource{},
		&models.DiscussionPost{},
	}
}

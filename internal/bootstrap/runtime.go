package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/config"
	"mentorcircles/internal/database"
	"mentorcircles/internal/models"
	"mentorcircles/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis, brings the schema up to date and
// optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("schema apply failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedDemoIfEmpty(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// seedDemoIfEmpty generates a small marketplace on a development database
// that has no circles yet.
func seedDemoIfEmpty(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") && !strings.EqualFold(cfg.Env, "test") {
		log.Printf("demo seeding skipped in %s", cfg.Env)
		return nil
	}

	var circles int64
	if err := db.Model(&models.Circle{}).Count(&circles).Error; err != nil {
		return err
	}
	if circles > 0 {
		return nil
	}

	summary, err := seed.NewSeeder(db, seed.Options{}).SeedDemo(seed.DemoOptions{
		Mentors:          4,
		Mentees:          20,
		CirclesPerMentor: 2,
	})
	if err != nil {
		return err
	}
	log.Printf("demo data seeded: %d users, %d circles", summary.Users, summary.Circles)
	return nil
}

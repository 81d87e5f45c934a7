package seed

import (
	"fmt"
	"log"
	"time"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
)

// DemoOptions size the generated marketplace.
type DemoOptions struct {
	Mentors          int
	Mentees          int
	CirclesPerMentor int
}

// Summary counts what a seeding run created.
type Summary struct {
	Users        int
	Circles      int
	Applications int
	Follows      int
	Sessions     int
}

// Seeder populates the database through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll deletes every row of the persistent models, children first.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.DiscussionPost{},
		&models.Resource{},
		&models.CircleSession{},
		&models.CircleChangeRequest{},
		&models.Application{},
		&models.Follow{},
		&models.Circle{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedDemo creates mentors with circles, mentees who follow and apply to
// them, and a little room activity. Applications are admitted in arrival
// order the way live submissions are: seats fill first, then the waitlist.
func (s *Seeder) SeedDemo(opts DemoOptions) (*Summary, error) {
	if opts.Mentors <= 0 || opts.Mentees <= 0 {
		return nil, fmt.Errorf("mentors and mentees must be positive")
	}
	if opts.CirclesPerMentor <= 0 {
		opts.CirclesPerMentor = 1
	}

	f := s.factory
	summary := &Summary{}

	mentors := make([]*models.User, 0, opts.Mentors)
	for i := 0; i < opts.Mentors; i++ {
		u, err := f.CreateUser(models.UserRoleMentor)
		if err != nil {
			return nil, fmt.Errorf("create mentor: %w", err)
		}
		mentors = append(mentors, u)
	}
	mentees := make([]*models.User, 0, opts.Mentees)
	for i := 0; i < opts.Mentees; i++ {
		u, err := f.CreateUser(models.UserRoleMentee)
		if err != nil {
			return nil, fmt.Errorf("create mentee: %w", err)
		}
		mentees = append(mentees, u)
	}
	summary.Users = len(mentors) + len(mentees)
	log.Printf("✓ %d users created", summary.Users)

	for _, mentee := range mentees {
		mentor := mentors[f.faker.Number(0, len(mentors)-1)]
		if f.opts.DryRun {
			summary.Follows++
			continue
		}
		if err := s.db.Create(&models.Follow{FollowerID: mentee.ID, MentorID: mentor.ID}).Error; err != nil {
			return nil, fmt.Errorf("create follow: %w", err)
		}
		summary.Follows++
	}

	for _, mentor := range mentors {
		for i := 0; i < opts.CirclesPerMentor; i++ {
			circle, err := f.CreateCircle(mentor)
			if err != nil {
				return nil, fmt.Errorf("create circle: %w", err)
			}
			summary.Circles++

			applicants := f.faker.Number(0, len(mentees))
			admitted, err := s.enroll(circle, mentees[:applicants])
			if err != nil {
				return nil, err
			}
			summary.Applications += admitted

			sessions, err := s.furnishRoom(circle, mentor)
			if err != nil {
				return nil, err
			}
			summary.Sessions += sessions
		}
	}

	log.Printf("✓ %d circles, %d applications, %d sessions", summary.Circles, summary.Applications, summary.Sessions)
	return summary, nil
}

// enroll files one application per mentee. While seats remain the
// application takes one (some already accepted); after that it is
// waitlisted. A circle that fills up while OPEN becomes ACTIVE.
func (s *Seeder) enroll(circle *models.Circle, mentees []*models.User) (int, error) {
	f := s.factory
	filled := 0
	at := circle.CreatedAt
	for _, mentee := range mentees {
		at = at.Add(time.Duration(f.faker.Number(1, 180)) * time.Minute)

		status := models.ApplicationStatusWaitlist
		if filled < circle.MaxCapacity {
			status = models.ApplicationStatusPending
			if f.faker.Bool() {
				status = models.ApplicationStatusAccepted
			}
			filled++
		}
		if _, err := f.CreateApplication(circle, mentee, status, at); err != nil {
			return 0, fmt.Errorf("create application: %w", err)
		}
	}

	if filled >= circle.MaxCapacity && circle.Status == models.CircleStatusOpen {
		circle.Status = models.CircleStatusActive
		if !f.opts.DryRun {
			if err := s.db.Model(circle).Update("status", circle.Status).Error; err != nil {
				return 0, fmt.Errorf("activate circle: %w", err)
			}
		}
	}
	return len(mentees), nil
}

// furnishRoom adds a few sessions, a resource and a short thread.
func (s *Seeder) furnishRoom(circle *models.Circle, mentor *models.User) (int, error) {
	f := s.factory
	sessions := f.faker.Number(1, 3)
	for week := 0; week < sessions; week++ {
		if _, err := f.CreateSession(circle, week); err != nil {
			return 0, fmt.Errorf("create session: %w", err)
		}
	}
	if _, err := f.CreateResource(circle, mentor); err != nil {
		return 0, fmt.Errorf("create resource: %w", err)
	}
	welcome, err := f.CreatePost(circle, mentor, nil)
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	if _, err := f.CreatePost(circle, mentor, welcome); err != nil {
		return 0, fmt.Errorf("create reply: %w", err)
	}
	return sessions, nil
}

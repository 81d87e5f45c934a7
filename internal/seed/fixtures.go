package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mentorcircles/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixture is a hand-written data set, usually loaded from YAML:
//
//	users:
//	  - id: mentor-1
//	    name: Grace Hopper
//	    role: MENTOR
//	circles:
//	  - title: Compilers
//	    mentor: mentor-1
//	    max_capacity: 2
//	    applications:
//	      - mentee: mentee-1
//	        status: ACCEPTED
type Fixture struct {
	Users   []FixtureUser   `yaml:"users"`
	Follows []FixtureFollow `yaml:"follows"`
	Circles []FixtureCircle `yaml:"circles"`
}

type FixtureUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type FixtureFollow struct {
	Follower string `yaml:"follower"`
	Mentor   string `yaml:"mentor"`
}

type FixtureCircle struct {
	Title         string               `yaml:"title"`
	Description   string               `yaml:"description"`
	Tags          []string             `yaml:"tags"`
	Creator       string               `yaml:"creator"`
	Mentor        string               `yaml:"mentor"`
	Status        string               `yaml:"status"`
	MaxCapacity   int                  `yaml:"max_capacity"`
	DurationWeeks int                  `yaml:"duration_weeks"`
	Applications  []FixtureApplication `yaml:"applications"`
}

type FixtureApplication struct {
	Mentee string `yaml:"mentee"`
	Status string `yaml:"status"`
	Intent string `yaml:"intent"`
}

// LoadFixtureFile reads and parses a YAML fixture.
func LoadFixtureFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes YAML and checks references between its entries.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	users := make(map[string]bool, len(fx.Users))
	for _, u := range fx.Users {
		if strings.TrimSpace(u.ID) == "" {
			return errors.New("fixture user without id")
		}
		if users[u.ID] {
			return fmt.Errorf("duplicate fixture user %q", u.ID)
		}
		switch models.UserRole(u.Role) {
		case "", models.UserRoleMentor, models.UserRoleMentee:
		default:
			return fmt.Errorf("user %q: unknown role %q", u.ID, u.Role)
		}
		users[u.ID] = true
	}

	known := func(id string) bool { return id == "" || users[id] }
	for _, fl := range fx.Follows {
		if !known(fl.Follower) || !known(fl.Mentor) || fl.Follower == "" || fl.Mentor == "" {
			return fmt.Errorf("follow %s -> %s references an unknown user", fl.Follower, fl.Mentor)
		}
	}

	for _, c := range fx.Circles {
		if strings.TrimSpace(c.Title) == "" {
			return errors.New("fixture circle without title")
		}
		if c.Creator == "" && c.Mentor == "" {
			return fmt.Errorf("circle %q needs a creator or mentor", c.Title)
		}
		if !known(c.Creator) || !known(c.Mentor) {
			return fmt.Errorf("circle %q references an unknown user", c.Title)
		}
		switch models.CircleStatus(c.Status) {
		case "", models.CircleStatusDraft, models.CircleStatusProposed, models.CircleStatusOpen,
			models.CircleStatusActive, models.CircleStatusCompleted:
		default:
			return fmt.Errorf("circle %q: unknown status %q", c.Title, c.Status)
		}
		for _, a := range c.Applications {
			if !users[a.Mentee] {
				return fmt.Errorf("circle %q: application from unknown user %q", c.Title, a.Mentee)
			}
			switch models.ApplicationStatus(a.Status) {
			case "", models.ApplicationStatusPending, models.ApplicationStatusWaitlist,
				models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
			default:
				return fmt.Errorf("circle %q: unknown application status %q", c.Title, a.Status)
			}
		}
	}
	return nil
}

// ApplyFixture writes the fixture in one transaction. Users that already
// exist are left untouched.
func (s *Seeder) ApplyFixture(fx *Fixture) (*Summary, error) {
	summary := &Summary{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range fx.Users {
			role := models.UserRole(u.Role)
			if role == "" {
				role = models.UserRoleMentee
			}
			email := u.Email
			if email == "" {
				email = u.ID + "@example.com"
			}
			name := u.Name
			if name == "" {
				name = u.ID
			}
			user := &models.User{ID: u.ID, Email: email, Name: name, Role: role, ReputationScore: models.DefaultReputationScore}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error; err != nil {
				return fmt.Errorf("user %q: %w", u.ID, err)
			}
			summary.Users++
		}

		for _, fl := range fx.Follows {
			follow := &models.Follow{FollowerID: fl.Follower, MentorID: fl.Mentor}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error; err != nil {
				return fmt.Errorf("follow %s -> %s: %w", fl.Follower, fl.Mentor, err)
			}
			summary.Follows++
		}

		for _, c := range fx.Circles {
			circle := fixtureCircle(c)
			if err := tx.Create(circle).Error; err != nil {
				return fmt.Errorf("circle %q: %w", c.Title, err)
			}
			summary.Circles++

			at := time.Now().Add(-time.Duration(len(c.Applications)) * time.Minute)
			for i, a := range c.Applications {
				status := models.ApplicationStatus(a.Status)
				if status == "" {
					status = models.ApplicationStatusPending
				}
				intent := a.Intent
				if intent == "" {
					intent = "Looking forward to learning with this circle."
				}
				created := at.Add(time.Duration(i) * time.Minute)
				app := &models.Application{
					CircleID:        circle.ID,
					MenteeID:        a.Mentee,
					IntentStatement: intent,
					Status:          status,
					CreatedAt:       created,
					UpdatedAt:       created,
				}
				if err := tx.Create(app).Error; err != nil {
					return fmt.Errorf("application %s on %q: %w", a.Mentee, c.Title, err)
				}
				summary.Applications++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func fixtureCircle(c FixtureCircle) *models.Circle {
	creator := c.Creator
	if creator == "" {
		creator = c.Mentor
	}
	status := models.CircleStatus(c.Status)
	if status == "" {
		status = models.CircleStatusOpen
	}
	capacity := c.MaxCapacity
	if capacity <= 0 {
		capacity = 10
	}
	weeks := c.DurationWeeks
	if weeks <= 0 {
		weeks = 8
	}
	circle := &models.Circle{
		CreatorID:     creator,
		Title:         c.Title,
		Description:   c.Description,
		Tags:          c.Tags,
		Status:        status,
		MaxCapacity:   capacity,
		DurationWeeks: weeks,
	}
	if c.Mentor != "" {
		mentor := c.Mentor
		circle.MentorID = &mentor
	}
	return circle
}

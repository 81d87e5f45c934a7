// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"mentorcircles/internal/models"
	"mentorcircles/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configure the factory and seeder.
type Options struct {
	// DryRun builds entities without writing them.
	DryRun bool
	// MaxDays bounds how far back generated timestamps go.
	MaxDays int
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
}

var circleTopics = []string{
	"Go", "Distributed Systems", "Product Management", "Frontend Architecture",
	"Data Engineering", "Career Growth", "System Design", "Machine Learning",
	"Security", "Leadership", "Open Source", "Cloud Infrastructure",
}

var resourceTypes = []string{"article", "video", "book", "course", "repo"}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed)}
}

// pastTime returns a random time within the configured window.
func (f *Factory) pastTime() time.Time {
	minutes := f.faker.Number(60, f.opts.MaxDays*24*60)
	return time.Now().Add(-time.Duration(minutes) * time.Minute)
}

func (f *Factory) persist(kind string, value any, assignID func()) error {
	if f.opts.DryRun {
		assignID()
		log.Printf("[dry-run] create %s", kind)
		return nil
	}
	return f.db.Create(value).Error
}

// BuildUser constructs a user with the given role without persisting it.
func (f *Factory) BuildUser(role models.UserRole, overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	linkedin := fmt.Sprintf("https://www.linkedin.com/in/%s-%s-%d",
		strings.ToLower(first), strings.ToLower(last), f.faker.Number(100, 999))
	user := &models.User{
		ID:              "seed|" + uuid.NewString(),
		Email:           strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, f.faker.Number(100, 999))),
		Name:            first + " " + last,
		Role:            role,
		LinkedinURL:     &linkedin,
		ReputationScore: models.DefaultReputationScore,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(role models.UserRole, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(role, overrides...)
	// ids are assigned by BuildUser
	if err := f.persist("user", user, func() {}); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildCircle constructs a circle mentored and created by mentor.
func (f *Factory) BuildCircle(mentor *models.User, overrides ...func(*models.Circle)) *models.Circle {
	topic := circleTopics[f.faker.Number(0, len(circleTopics)-1)]
	mentorID := mentor.ID

	tags := []string{strings.ToLower(strings.ReplaceAll(topic, " ", "-"))}
	for i := 0; i < f.faker.Number(0, 3); i++ {
		tags = append(tags, strings.ToLower(f.faker.BuzzWord()))
	}
	// at most four tags, so only duplicates are dropped
	tags, _ = validation.NormalizeTags(tags)

	circle := &models.Circle{
		CreatorID:     mentor.ID,
		MentorID:      &mentorID,
		Title:         fmt.Sprintf("%s: %s", topic, f.faker.HipsterSentence(3)),
		Description:   f.faker.Paragraph(1, 3, 12, " "),
		Tags:          tags,
		Status:        models.CircleStatusOpen,
		MaxCapacity:   f.faker.Number(3, 12),
		DurationWeeks: f.faker.Number(4, 12),
		CreatedAt:     f.pastTime(),
	}
	for _, override := range overrides {
		override(circle)
	}
	return circle
}

// CreateCircle constructs and persists a sample circle.
func (f *Factory) CreateCircle(mentor *models.User, overrides ...func(*models.Circle)) (*models.Circle, error) {
	circle := f.BuildCircle(mentor, overrides...)
	if err := f.persist("circle", circle, func() { circle.ID = uuid.NewString() }); err != nil {
		return nil, err
	}
	return circle, nil
}

// CreateApplication persists an application with an intent statement.
func (f *Factory) CreateApplication(circle *models.Circle, mentee *models.User, status models.ApplicationStatus, createdAt time.Time) (*models.Application, error) {
	app := &models.Application{
		CircleID:        circle.ID,
		MenteeID:        mentee.ID,
		IntentStatement: f.faker.Paragraph(1, 2, 10, " "),
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if err := f.persist("application", app, func() { app.ID = uuid.NewString() }); err != nil {
		return nil, err
	}
	return app, nil
}

// CreateSession schedules a session weeksIn weeks after the circle started.
func (f *Factory) CreateSession(circle *models.Circle, weeksIn int) (*models.CircleSession, error) {
	scheduled := circle.CreatedAt.Add(time.Duration(weeksIn) * 7 * 24 * time.Hour)
	status := models.SessionStatusUpcoming
	if scheduled.Before(time.Now()) {
		status = models.SessionStatusCompleted
	}
	link := "https://meet.example.com/" + strings.ToLower(f.faker.Password(true, false, true, false, false, 10))
	session := &models.CircleSession{
		CircleID:     circle.ID,
		Title:        fmt.Sprintf("Week %d: %s", weeksIn+1, f.faker.HackerPhrase()),
		ScheduledAt:  scheduled,
		VideoCallURL: &link,
		Status:       status,
	}
	if err := f.persist("session", session, func() { session.ID = uuid.NewString() }); err != nil {
		return nil, err
	}
	return session, nil
}

// CreateResource shares a random link in the circle room.
func (f *Factory) CreateResource(circle *models.Circle, addedBy *models.User) (*models.Resource, error) {
	resource := &models.Resource{
		CircleID:  circle.ID,
		AddedByID: addedBy.ID,
		Title:     f.faker.BookTitle(),
		URL:       f.faker.URL(),
		Type:      resourceTypes[f.faker.Number(0, len(resourceTypes)-1)],
	}
	if err := f.persist("resource", resource, func() { resource.ID = uuid.NewString() }); err != nil {
		return nil, err
	}
	return resource, nil
}

// CreatePost adds a discussion post, optionally as a reply.
func (f *Factory) CreatePost(circle *models.Circle, author *models.User, parent *models.DiscussionPost) (*models.DiscussionPost, error) {
	post := &models.DiscussionPost{
		CircleID: circle.ID,
		AuthorID: author.ID,
		Content:  f.faker.Sentence(f.faker.Number(6, 20)),
	}
	if parent != nil {
		post.ParentID = &parent.ID
	}
	if err := f.persist("post", post, func() { post.ID = uuid.NewString() }); err != nil {
		return nil, err
	}
	return post, nil
}

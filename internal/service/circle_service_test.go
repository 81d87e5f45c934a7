package service

import (
	"context"
	"testing"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCircleService(f *fixture, aside *cache.Aside) *CircleService {
	return NewCircleService(
		f.store,
		repository.NewUserRepository(f.db),
		repository.NewFollowRepository(f.db),
		aside,
		CircleDefaults{MaxCapacity: 10, DurationWeeks: 8},
		f.invalidator(),
	)
}

func TestCreateCircle(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()

	circle, err := svc.CreateCircle(ctx, "mentor", CreateCircleInput{Title: " Go ", Description: "Weekly", Tags: []string{"go", "Go"}})
	require.NoError(t, err)
	assert.Equal(t, "Go", circle.Title)
	assert.Equal(t, models.CircleStatusOpen, circle.Status)
	assert.Equal(t, 10, circle.MaxCapacity)
	assert.Equal(t, 8, circle.DurationWeeks)
	assert.Equal(t, []string{"go"}, circle.Tags)
	assert.True(t, circle.IsMentor("mentor"))
	assert.False(t, circle.RequiresDualApproval())

	draft, err := svc.CreateCircle(ctx, "mentor", CreateCircleInput{Title: "Draft", Description: "Later", MaxCapacity: intPtr(4), AsDraft: true})
	require.NoError(t, err)
	assert.Equal(t, models.CircleStatusDraft, draft.Status)
	assert.Equal(t, 4, f.circle(t, draft.ID).MaxCapacity)

	_, err = svc.CreateCircle(ctx, "mentor", CreateCircleInput{Title: "", Description: "x"})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.CreateCircle(ctx, "mentor", CreateCircleInput{Title: "x", Description: "x", DurationWeeks: intPtr(0)})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.CreateCircle(ctx, "", CreateCircleInput{Title: "x", Description: "x"})
	requireCode(t, err, models.CodeUnauthenticated)
}

func TestListAndGetCircles(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t)
	svc := newCircleService(f, cache.NewAside(rdb))
	ctx := context.Background()

	open := testutil.CreateCircle(t, f.db, testutil.CircleFixture{CreatorID: "m", MentorID: "m", MaxCapacity: 3})
	testutil.FillCircle(t, f.db, open.ID, 2, models.ApplicationStatusPending)
	testutil.FillCircle(t, f.db, open.ID, 1, models.ApplicationStatusWaitlist)
	testutil.CreateCircle(t, f.db, testutil.CircleFixture{CreatorID: "m", MentorID: "m", Status: models.CircleStatusDraft})
	testutil.CreateCircle(t, f.db, testutil.CircleFixture{CreatorID: "m", MentorID: "m", Status: models.CircleStatusCompleted})

	circles, err := svc.ListCircles(ctx)
	require.NoError(t, err)
	require.Len(t, circles, 1)
	assert.Equal(t, int64(2), circles[0].Filled)
	assert.Equal(t, int64(1), circles[0].SpotsLeft)
	assert.True(t, mr.Exists(cache.CircleListKey))

	testutil.CreateCircle(t, f.db, testutil.CircleFixture{CreatorID: "m", MentorID: "m"})
	cached, err := svc.ListCircles(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "served from cache until invalidated")

	NewCacheInvalidator(rdb).CircleChanged(ctx, open.ID)
	fresh, err := svc.ListCircles(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	detail, err := svc.GetCircle(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, detail.ID)
	assert.Equal(t, int64(2), detail.Filled)

	_, err = svc.GetCircle(ctx, "missing")
	requireCode(t, err, models.CodeNotFound)
	assert.False(t, mr.Exists(cache.CircleKey("missing")))
}

func TestPitchLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	follows := NewFollowService(repository.NewFollowRepository(f.db), repository.NewUserRepository(f.db))
	ctx := context.Background()

	testutil.CreateUser(t, f.db, "mentor", models.UserRoleMentor)
	testutil.CreateUser(t, f.db, "other-mentor", models.UserRoleMentor)
	testutil.CreateUser(t, f.db, "mentee", models.UserRoleMentee)

	in := PitchInput{MentorID: "mentor", Title: "Rust for Gophers", Description: "Ownership", Tags: []string{"rust"}}
	_, err := svc.SubmitPitch(ctx, "mentee", in)
	requireCode(t, err, models.CodeForbidden)

	require.NoError(t, follows.Follow(ctx, "mentee", "mentor"))
	pitch, err := svc.SubmitPitch(ctx, "mentee", in)
	require.NoError(t, err)
	assert.Equal(t, models.CircleStatusProposed, pitch.Status)
	assert.False(t, pitch.HasMentor())
	require.NotNil(t, pitch.ProposedMentorID)
	assert.Equal(t, "mentor", *pitch.ProposedMentorID)

	incoming, err := svc.ListPitchRequests(ctx, "mentor")
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	requireCode(t, svc.AcceptPitch(ctx, pitch.ID, "other-mentor"), models.CodeForbidden)
	require.NoError(t, svc.AcceptPitch(ctx, pitch.ID, "mentor"))

	got := f.circle(t, pitch.ID)
	assert.Equal(t, models.CircleStatusOpen, got.Status)
	assert.True(t, got.IsMentor("mentor"))
	assert.True(t, got.RequiresDualApproval())

	requireCode(t, svc.AcceptPitch(ctx, pitch.ID, "mentor"), models.CodeValidation)
}

func TestOpenPitchNeedsMentorRole(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()

	testutil.CreateUser(t, f.db, "mentor", models.UserRoleMentor)
	testutil.CreateUser(t, f.db, "mentee", models.UserRoleMentee)

	pitch, err := svc.SubmitPitch(ctx, "mentee", PitchInput{Title: "Open pitch", Description: "Anyone"})
	require.NoError(t, err)
	assert.Nil(t, pitch.ProposedMentorID)

	requireCode(t, svc.DeclinePitch(ctx, pitch.ID, "mentee"), models.CodeForbidden)
	requireCode(t, svc.DeclinePitch(ctx, pitch.ID, "ghost"), models.CodeForbidden)

	require.NoError(t, svc.DeclinePitch(ctx, pitch.ID, "mentor"))
	_, err = f.store.Repos().Circles.GetByID(ctx, pitch.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestSubmitPitch_TooManyTags(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)

	_, err := svc.SubmitPitch(context.Background(), "mentee", PitchInput{
		Title:       "t",
		Description: "d",
		Tags:        []string{"a", "b", "c", "d", "e", "f"},
	})
	requireCode(t, err, models.CodeValidation)
}

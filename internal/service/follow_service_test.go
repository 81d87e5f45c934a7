package service

import (
	"context"
	"testing"

	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService(t *testing.T) {
	f := newFixture(t)
	svc := NewFollowService(repository.NewFollowRepository(f.db), repository.NewUserRepository(f.db))
	ctx := context.Background()

	testutil.CreateUser(t, f.db, "ada", models.UserRoleMentor)
	testutil.CreateUser(t, f.db, "grace", models.UserRoleMentor)
	testutil.CreateUser(t, f.db, "linus", models.UserRoleMentee)

	requireCode(t, svc.Follow(ctx, "ada", "ada"), models.CodeValidation)
	requireCode(t, svc.Follow(ctx, "linus", "nobody"), models.CodeNotFound)
	requireCode(t, svc.Follow(ctx, "", "ada"), models.CodeUnauthenticated)

	require.NoError(t, svc.Follow(ctx, "linus", "ada"))
	require.NoError(t, svc.Follow(ctx, "linus", "ada"))

	mentors, err := svc.ListMentorsWithFollowStatus(ctx, "linus")
	require.NoError(t, err)
	require.Len(t, mentors, 2)
	following := map[string]bool{}
	for _, m := range mentors {
		following[m.ID] = m.IsFollowing
	}
	assert.Equal(t, map[string]bool{"ada": true, "grace": false}, following)

	mentors, err = svc.ListMentorsWithFollowStatus(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, mentors, 1, "viewers do not see themselves")
	assert.Equal(t, "grace", mentors[0].ID)

	require.NoError(t, svc.Unfollow(ctx, "linus", "ada"))
	mentors, err = svc.ListMentorsWithFollowStatus(ctx, "linus")
	require.NoError(t, err)
	for _, m := range mentors {
		assert.False(t, m.IsFollowing)
	}

	users, err := svc.SearchUsers(ctx, "GRA")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "grace", users[0].ID)
}

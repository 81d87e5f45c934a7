package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/config"
	"mentorcircles/internal/models"
	"mentorcircles/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *redis.Client
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:                  testSecret,
		FeatureFlags:               flags,
		DefaultCircleCapacity:      10,
		DefaultCircleDurationWeeks: 8,
		CacheTTLSeconds:            60,
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: s.errorHandler})
	s.SetupRoutes(app)

	return &testEnv{server: s, app: app, db: db, redis: rdb, mr: mr}
}

func tokenFor(t *testing.T, userID string, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request as userID ("" for anonymous) and decodes a JSON body into out when given.
func (e *testEnv) do(t *testing.T, method, path, userID string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID, nil))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, "")

	revoked := tokenFor(t, "revoked-user", jwt.MapClaims{"jti": "tok-revoked"})
	require.NoError(t, env.redis.Set(context.Background(), cache.TokenBlacklistKey("tok-revoked"), 1, time.Hour).Err())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"revoked token", "Bearer " + revoked, http.StatusUnauthorized},
		{"valid token", "Bearer " + tokenFor(t, "ada", jwt.MapClaims{"name": "Ada Lovelace"}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me/applications", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := env.app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", "ada").Error)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, models.UserRoleMentee, user.Role)
	assert.Equal(t, models.DefaultReputationScore, user.ReputationScore)
	assert.True(t, env.mr.Exists(cache.UserSeenKey("ada")))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", "revoked-user").Count(&count).Error)
	assert.Zero(t, count)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, "")

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", "", nil, nil))

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["redis"])

	env.mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "unhealthy", ready.Checks["redis"])
}

func TestCircleEndpoints(t *testing.T) {
	env := newTestEnv(t, "")

	var errBody models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/circles", "mentor", fiber.Map{"description": "no title"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title is required", errBody.Error)
	assert.Equal(t, models.CodeValidation, errBody.Code)

	status = env.do(t, http.MethodPost, "/api/circles", "mentor", fiber.Map{
		"title":        "Too Big",
		"description":  "capacity past the column range",
		"max_capacity": 3000000000,
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errBody.Code)

	var created models.Circle
	status = env.do(t, http.MethodPost, "/api/circles", "mentor", fiber.Map{
		"title":       "Distributed Systems",
		"description": "Raft, Paxos and friends",
		"tags":        []string{"go", "Go", "raft"},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.CircleStatusOpen, created.Status)
	assert.Equal(t, 10, created.MaxCapacity)
	assert.Equal(t, 8, created.DurationWeeks)
	assert.Equal(t, []string{"go", "raft"}, created.Tags)

	var listed []models.CircleSummary
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/circles", "", nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.EqualValues(t, 10, listed[0].SpotsLeft)

	var detail models.CircleSummary
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/circles/"+created.ID, "", nil, &detail))
	assert.Equal(t, "Distributed Systems", detail.Title)

	status = env.do(t, http.MethodGet, "/api/circles/missing", "", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, errBody.Code)
}

func TestSubmitApplicationEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	circle := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "mentor", MentorID: "mentor", MaxCapacity: 1})
	path := "/api/circles/" + circle.ID + "/applications"
	intent := fiber.Map{"intent_statement": "I want to ship Go services"}

	var first struct {
		ApplicationID string                   `json:"application_id"`
		Status        models.ApplicationStatus `json:"status"`
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, "mentee-1", intent, &first))
	assert.Equal(t, models.ApplicationStatusPending, first.Status)
	assert.NotEmpty(t, first.ApplicationID)

	var reloaded models.Circle
	require.NoError(t, env.db.First(&reloaded, "id = ?", circle.ID).Error)
	assert.Equal(t, models.CircleStatusActive, reloaded.Status)

	var second struct {
		Status models.ApplicationStatus `json:"status"`
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, "mentee-2", intent, &second))
	assert.Equal(t, models.ApplicationStatusWaitlist, second.Status)

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path, "mentee-1", intent, &errBody))
	assert.Equal(t, models.CodeDuplicateApplication, errBody.Code)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, path, "mentee-3", fiber.Map{"intent_statement": "  "}, &errBody))
	assert.Equal(t, "intent_statement is required", errBody.Error)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, path, "", intent, nil))

	var apps []models.Application
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, "mentor", nil, &apps))
	require.Len(t, apps, 2)
	assert.Equal(t, "mentee-1", apps[0].MenteeID)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, "mentee-2", nil, &errBody))

	var reviewed models.Application
	status := env.do(t, http.MethodPost, path+"/"+first.ApplicationID+"/review", "mentor", fiber.Map{"decision": "ACCEPT"}, &reviewed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.ApplicationStatusAccepted, reviewed.Status)

	status = env.do(t, http.MethodPost, path+"/"+first.ApplicationID+"/review", "mentor", fiber.Map{"decision": "MAYBE"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChangeRequestEndpoints(t *testing.T) {
	for _, flags := range []string{"", "serialized_circle_writes=on"} {
		t.Run("flags="+flags, func(t *testing.T) {
			env := newTestEnv(t, flags)
			circle := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "creator", MentorID: "mentor", MaxCapacity: 2})
			testutil.FillCircle(t, env.db, circle.ID, 2, models.ApplicationStatusPending)
			waiting := testutil.CreateApplication(t, env.db, circle.ID, "late", models.ApplicationStatusWaitlist, time.Now())
			base := "/api/circles/" + circle.ID + "/updates"

			var errBody models.ErrorResponse
			assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base, "creator", fiber.Map{}, &errBody))
			assert.Equal(t, models.CodeNoChangeRequested, errBody.Code)

			assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base, "creator", fiber.Map{"new_max_capacity": 2}, &errBody))
			assert.Equal(t, models.CodeInvalidCapacity, errBody.Code)

			assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base, "creator", fiber.Map{"new_max_capacity": 3000000000}, &errBody))
			assert.Equal(t, models.CodeInvalidCapacity, errBody.Code)
			assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base, "creator", fiber.Map{"extend_by_weeks": 3000000000}, &errBody))
			assert.Equal(t, models.CodeInvalidDuration, errBody.Code)

			assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, base, "late", fiber.Map{"new_max_capacity": 3}, &errBody))

			var proposed struct {
				Status     models.ChangeRequestStatus `json:"status"`
				PendingFor string                     `json:"pending_for"`
				RequestID  string                     `json:"request_id"`
			}
			require.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, base, "creator", fiber.Map{"new_max_capacity": 3}, &proposed))
			assert.Equal(t, models.ChangeRequestStatusPending, proposed.Status)
			assert.Equal(t, "mentor", proposed.PendingFor)

			var pending []struct {
				ID    string               `json:"id"`
				State models.ApprovalState `json:"state"`
			}
			require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, base, "mentor", nil, &pending))
			require.Len(t, pending, 1)
			assert.Equal(t, models.ApprovalAwaitingMentor, pending[0].State)

			var applied struct {
				Status   models.ChangeRequestStatus `json:"status"`
				Promoted int                        `json:"promoted"`
			}
			require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/"+proposed.RequestID+"/approve", "mentor", nil, &applied))
			assert.Equal(t, models.ChangeRequestStatusApplied, applied.Status)
			assert.Equal(t, 1, applied.Promoted)

			var reloaded models.Circle
			require.NoError(t, env.db.First(&reloaded, "id = ?", circle.ID).Error)
			assert.Equal(t, 3, reloaded.MaxCapacity)

			var promoted models.Application
			require.NoError(t, env.db.First(&promoted, "id = ?", waiting.ID).Error)
			assert.Equal(t, models.ApplicationStatusPending, promoted.Status)

			assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, base+"/"+proposed.RequestID+"/approve", "mentor", nil, &errBody))
		})
	}
}

func TestLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	full := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "mentor", MentorID: "mentor", MaxCapacity: 1, Status: models.CircleStatusActive})
	testutil.FillCircle(t, env.db, full.ID, 1, models.ApplicationStatusAccepted)
	done := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "mentor", MentorID: "mentor", Status: models.CircleStatusCompleted})
	open := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "mentor", MentorID: "mentor"})

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/circles/"+full.ID+"/reopen", "mentor", nil, &errBody))
	assert.Equal(t, models.CodeAtCapacity, errBody.Code)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/circles/"+done.ID+"/reopen", "mentor", nil, &errBody))
	assert.Equal(t, models.CodeCannotReopenCompleted, errBody.Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/circles/"+open.ID+"/close", "someone", nil, &errBody))

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/circles/"+open.ID+"/close", "mentor", nil, nil))
	var reloaded models.Circle
	require.NoError(t, env.db.First(&reloaded, "id = ?", open.ID).Error)
	assert.Equal(t, models.CircleStatusActive, reloaded.Status)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/circles/"+open.ID+"/reopen", "mentor", nil, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/circles/"+open.ID+"/complete", "mentor", nil, nil))
	require.NoError(t, env.db.First(&reloaded, "id = ?", open.ID).Error)
	assert.Equal(t, models.CircleStatusCompleted, reloaded.Status)
}

func TestRoomEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	circle := testutil.CreateCircle(t, env.db, testutil.CircleFixture{CreatorID: "mentor", MentorID: "mentor"})
	testutil.CreateApplication(t, env.db, circle.ID, "member", models.ApplicationStatusAccepted, time.Now())
	base := "/api/circles/" + circle.ID

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, base+"/room", "outsider", nil, nil))

	var session models.CircleSession
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, base+"/sessions", "mentor", fiber.Map{
		"title":        "Kickoff",
		"scheduled_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, &session))
	assert.Equal(t, models.SessionStatusUpcoming, session.Status)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, base+"/sessions", "member", fiber.Map{
		"title":        "Member session",
		"scheduled_at": time.Now().Format(time.RFC3339),
	}, nil))

	var resource models.Resource
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, base+"/resources", "member", fiber.Map{
		"title": "Effective Go",
		"url":   "https://go.dev/doc/effective_go",
	}, &resource))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/resources", "member", fiber.Map{
		"title": "Broken",
		"url":   "not a url",
	}, nil))

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, base+"/discussion", "member", fiber.Map{"content": "Hello all"}, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, base+"/sessions/"+session.ID+"/complete", "mentor", nil, nil))

	var room models.Room
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, base+"/room", "member", nil, &room))
	assert.Len(t, room.Sessions, 1)
	assert.Equal(t, models.SessionStatusCompleted, room.Sessions[0].Status)
	assert.Len(t, room.Resources, 1)
	assert.Len(t, room.Posts, 1)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base+"/resources/"+resource.ID, "mentor", nil, nil))
}

func TestPitchAndFollowEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	testutil.CreateUser(t, env.db, "grace", models.UserRoleMentor)

	var errBody models.ErrorResponse
	pitch := fiber.Map{"mentor_id": "grace", "title": "Compilers", "description": "Build one from scratch"}
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/pitches", "ada", pitch, &errBody))

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/mentors/grace/follow", "ada", nil, nil))

	var mentors []models.MentorWithFollow
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/mentors", "ada", nil, &mentors))
	require.Len(t, mentors, 1)
	assert.True(t, mentors[0].IsFollowing)

	var pitched models.Circle
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/pitches", "ada", pitch, &pitched))
	assert.Equal(t, models.CircleStatusProposed, pitched.Status)

	var incoming []models.Circle
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/pitches/incoming", "grace", nil, &incoming))
	require.Len(t, incoming, 1)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/pitches/"+pitched.ID+"/accept", "ada", nil, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/pitches/"+pitched.ID+"/accept", "grace", nil, nil))

	var accepted models.Circle
	require.NoError(t, env.db.First(&accepted, "id = ?", pitched.ID).Error)
	assert.Equal(t, models.CircleStatusOpen, accepted.Status)
	require.NotNil(t, accepted.MentorID)
	assert.Equal(t, "grace", *accepted.MentorID)

	var found []models.UserSummary
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/search?q=GRA", "ada", nil, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "grace", found[0].ID)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/mentors/grace/follow", "ada", nil, nil))
}

func TestGetFeatureFlags(t *testing.T) {
	env := newTestEnv(t, "serialized_circle_writes=on")

	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/feature-flags", "ada", nil, &body))
	assert.Equal(t, "on", body.Raw["serialized_circle_writes"])
	assert.True(t, body.Evaluated["serialized_circle_writes"])
}

package api

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/logging"
	"alcyxob/gymtracker/internal/repository/memory"
	"alcyxob/gymtracker/internal/service"
	"alcyxob/gymtracker/internal/storage"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.Discard()
	store := memory.New()
	ttl := config.CacheConfig{Enabled: true, CatalogSliding: time.Minute, TemplateSliding: time.Minute, WorkoutsAbsolute: time.Minute, WorkoutsSliding: time.Minute}
	c := cache.NewTTLStore(logger)
	t.Cleanup(c.Close)

	services := Services{
		Users:         service.NewUserService(store.Users(), logger),
		Templates:     service.NewTemplateService(store.Templates(), store, c, ttl, storage.LocalSource{}, logger),
		Subscriptions: service.NewSubscriptionService(store.Users(), store.Templates(), store.Subscriptions(), store, logger),
		Progress:      service.NewProgressService(store.Templates(), store.Subscriptions(), store.Progress(), logger),
		Workouts:      service.NewWorkoutService(store.Workouts(), store, c, ttl, logger),
	}
	router := NewRouter(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, logger)
	SetupRoutes(router, testSecret, services, logger)
	return &testServer{router: router}
}

func signToken(t *testing.T, secret string, userID uuid.UUID, expiresIn time.Duration, roles ...domain.Role) string {
	t.Helper()
	claims := jwtClaims{
		UserID:   userID.String(),
		Username: "user-" + userID.String()[:8],
		Email:    userID.String()[:8] + "@example.com",
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, roles ...domain.Role) string {
	return signToken(t, testSecret, uuid.New(), time.Hour, roles...)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["code"]
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "importer", "testdata", name))
	require.NoError(t, err)
	return data
}

func (s *testServer) importFixture(t *testing.T, admin string) TemplateResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/templates/import", admin, fixture(t, "upper_lower.yaml"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ImportResponse](t, rec).Template
}

func TestPingAndMetricsArePublic(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuthentication(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/templates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = srv.do(t, http.MethodGet, "/api/v1/templates", signToken(t, "other-secret", uuid.New(), time.Hour), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/templates", signToken(t, testSecret, uuid.New(), -time.Minute), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	token := userToken(t)
	rec = srv.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode[map[string]any](t, rec)
	assert.NotEmpty(t, me["userId"])
}

func TestImportRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	admin := userToken(t, domain.RoleAdmin)

	rec := srv.do(t, http.MethodPost, "/api/v1/templates/import", userToken(t, domain.RoleUser), fixture(t, "upper_lower.yaml"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	imported := srv.importFixture(t, admin)
	assert.Len(t, imported.Weeks, 2)

	rec = srv.do(t, http.MethodPost, "/api/v1/templates/import", admin, fixture(t, "upper_lower.yaml"))
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[ImportResponse](t, rec)
	assert.True(t, again.Skipped)
	assert.Equal(t, imported.ID, again.Template.ID)

	rec = srv.do(t, http.MethodPost, "/api/v1/templates/import", admin, []byte("WorkoutTemplate:\n  Name: Broken\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "import_failed", errorCode(t, rec))
}

func TestTemplateReads(t *testing.T) {
	srv := newTestServer(t)
	imported := srv.importFixture(t, userToken(t, domain.RoleAdmin))
	token := userToken(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/templates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	basic := decode[[]TemplateResponse](t, rec)
	require.Len(t, basic, 1)
	assert.Empty(t, basic[0].Weeks)

	rec = srv.do(t, http.MethodGet, "/api/v1/templates/"+imported.ID+"?includeDetails=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detailed := decode[TemplateResponse](t, rec)
	require.Len(t, detailed.Weeks, 2)

	week := detailed.Weeks[0]
	workout := week.Workouts[0]
	exercise := workout.Exercises[0]
	path := fmt.Sprintf("/api/v1/templates/%s/weeks/%s/workouts/%s/exercises/%s", imported.ID, week.ID, workout.ID, exercise.ID)
	rec = srv.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bench Press", decode[TemplateExerciseResponse](t, rec).ExerciseName)

	wrong := fmt.Sprintf("/api/v1/templates/%s/weeks/%s/workouts/%s/exercises/%s", imported.ID, detailed.Weeks[1].ID, workout.ID, exercise.ID)
	rec = srv.do(t, http.MethodGet, wrong, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = srv.do(t, http.MethodGet, "/api/v1/templates/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", errorCode(t, rec))

	rec = srv.do(t, http.MethodGet, "/api/v1/templates?includeDetails=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribeLogCompleteReset(t *testing.T) {
	srv := newTestServer(t)
	admin := userToken(t, domain.RoleAdmin)
	imported := srv.importFixture(t, admin)
	exerciseID := imported.Weeks[0].Workouts[0].Exercises[0].ID
	token := userToken(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/subscriptions", token, gin.H{"templateId": imported.ID, "startDate": "2026-03-02"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[SubscriptionResponse](t, rec)
	assert.Equal(t, "2026-03-02", sub.StartDate.Format(time.DateOnly))

	rec = srv.do(t, http.MethodPost, "/api/v1/subscriptions", token, gin.H{"templateId": imported.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))

	logBody := gin.H{"userWorkoutTemplateId": sub.ID, "templateExerciseId": exerciseID, "progress": gin.H{"set1Reps": 8}}
	rec = srv.do(t, http.MethodPost, "/api/v1/progress/log", token, logBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	progress := decode[ProgressResponse](t, rec)
	assert.Equal(t, 8, *progress.Set1Reps)

	logBody["progress"] = gin.H{"set2Reps": 6}
	rec = srv.do(t, http.MethodPost, "/api/v1/progress/log", token, logBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, progress.ID, decode[ProgressResponse](t, rec).ID)

	rec = srv.do(t, http.MethodPut, "/api/v1/progress/"+progress.ID+"/complete", token, []byte("true"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[ProgressResponse](t, rec)
	assert.True(t, completed.WorkoutCompleted)
	assert.NotNil(t, completed.CompletionDate)

	rec = srv.do(t, http.MethodPut, "/api/v1/progress/"+progress.ID+"/complete", token, []byte("null"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/progress/"+progress.ID+"/reset", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decode[ProgressResponse](t, rec)
	assert.Nil(t, reset.Set1Reps)
	assert.False(t, reset.WorkoutCompleted)
	assert.Nil(t, reset.CompletionDate)

	rec = srv.do(t, http.MethodGet, "/api/v1/subscriptions/"+sub.ID+"/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProgressResponse](t, rec), 1)

	// Someone else's progress does not exist for them.
	rec = srv.do(t, http.MethodGet, "/api/v1/progress/"+progress.ID, userToken(t), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/templates/"+imported.ID, admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/subscriptions/"+sub.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodDelete, "/api/v1/templates/"+imported.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWorkoutEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := userToken(t)

	body := gin.H{
		"date":  "2026-05-04T18:00:00Z",
		"notes": "Legs",
		"exercises": []gin.H{
			{"name": "Back Squat", "series": []gin.H{{"repetitions": 5, "weight": 120.0, "rpe": 8.0}}},
		},
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/workouts", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workout := decode[WorkoutResponse](t, rec)
	require.Len(t, workout.Exercises, 1)
	exercise := workout.Exercises[0]

	rec = srv.do(t, http.MethodGet, "/api/v1/workouts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]WorkoutResponse](t, rec), 1)

	rec = srv.do(t, http.MethodPost, "/api/v1/workouts/"+workout.ID+"/exercises/"+exercise.ID+"/series", token, gin.H{"repetitions": 5, "weight": 125.0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	series := decode[SeriesResponse](t, rec)
	assert.Equal(t, 1, series.Position)

	rec = srv.do(t, http.MethodGet, "/api/v1/workouts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]WorkoutResponse](t, rec)[0].Exercises[0].Series, 2)

	rec = srv.do(t, http.MethodPut, "/api/v1/workouts/"+workout.ID+"/exercises/"+exercise.ID+"/series/"+series.ID, token, gin.H{"rpe": 12.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed_input", errorCode(t, rec))

	other := userToken(t)
	rec = srv.do(t, http.MethodGet, "/api/v1/workouts/"+workout.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(t, http.MethodDelete, "/api/v1/workouts/"+workout.ID+"/exercises/"+exercise.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/workouts/"+workout.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodGet, "/api/v1/workouts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]WorkoutResponse](t, rec))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrWorkoutNotFound, http.StatusNotFound},
		{domain.ErrInvalidID, http.StatusBadRequest},
		{domain.Malformed("bad"), http.StatusBadRequest},
		{domain.ErrAlreadySubscribed, http.StatusConflict},
		{domain.ErrMissingIdentity, http.StatusUnauthorized},
		{&domain.TemplateCreationError{Err: errors.New("boom")}, http.StatusUnprocessableEntity},
		{&domain.TemplateCreationError{Err: domain.Malformed("bad")}, http.StatusBadRequest},
		{&domain.TemplateCreationError{Err: domain.ErrTemplateNameExists}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusFor(tc.err), tc.err.Error())
	}
}

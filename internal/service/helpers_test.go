package service

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/logging"
	"alcyxob/gymtracker/internal/repository/memory"
	"alcyxob/gymtracker/internal/storage"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testTTL = config.CacheConfig{
	Enabled:          true,
	CatalogSliding:   5 * time.Minute,
	TemplateSliding:  5 * time.Minute,
	WorkoutsAbsolute: 10 * time.Minute,
	WorkoutsSliding:  2 * time.Minute,
}

type testEnv struct {
	store         *memory.Store
	cache         *cache.TTLStore
	users         UserService
	templates     TemplateService
	subscriptions SubscriptionService
	progress      ProgressService
	workouts      WorkoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	c := cache.NewTTLStore(logging.Discard())
	t.Cleanup(c.Close)
	logger := logging.Discard()

	return &testEnv{
		store:         store,
		cache:         c,
		users:         NewUserService(store.Users(), logger),
		templates:     NewTemplateService(store.Templates(), store, c, testTTL, storage.LocalSource{}, logger),
		subscriptions: NewSubscriptionService(store.Users(), store.Templates(), store.Subscriptions(), store, logger),
		progress:      NewProgressService(store.Templates(), store.Subscriptions(), store.Progress(), logger),
		workouts:      NewWorkoutService(store.Workouts(), store, c, testTTL, logger),
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "importer", "testdata", name)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(fixturePath(name))
	require.NoError(t, err)
	return data
}

// importFixture loads the upper/lower template and returns it with details.
func (e *testEnv) importFixture(t *testing.T) *domain.WorkoutTemplate {
	t.Helper()
	result, err := e.templates.ImportTemplate(context.Background(), readFixture(t, "upper_lower.yaml"))
	require.NoError(t, err)
	require.False(t, result.Skipped)
	return result.Template
}

func (e *testEnv) newUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := e.users.Provision(context.Background(), Identity{
		UserID:   uuid.New(),
		Username: name,
		Email:    name + "@example.com",
		Roles:    []domain.Role{domain.RoleUser},
	})
	require.NoError(t, err)
	return u.ID
}

func intp(v int) *int           { return &v }
func boolp(v bool) *bool        { return &v }
func strp(v string) *string     { return &v }
func floatp(v float64) *float64 { return &v }

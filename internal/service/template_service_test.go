package service

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/logging"
	"alcyxob/gymtracker/internal/repository"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingTemplates fails the n-th CreateExercise call.
type failingTemplates struct {
	repository.TemplateRepository
	failAt int
	calls  int
}

func (f *failingTemplates) CreateExercise(ctx context.Context, e *domain.TemplateExercise) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("disk full")
	}
	return f.TemplateRepository.CreateExercise(ctx, e)
}

func TestImportTemplateCreatesGraph(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	imported := env.importFixture(t)
	assert.Equal(t, "Upper Lower 4x", imported.Name)
	require.Len(t, imported.Weeks, 2)
	require.Len(t, imported.Weeks[0].Workouts, 2)
	assert.Equal(t, "Bench Press", imported.Weeks[0].Workouts[0].Exercises[0].ExerciseName)
	assert.Equal(t, "6-8", imported.Weeks[0].Workouts[0].Exercises[0].Prescription.Reps)

	detailed, err := env.templates.GetTemplate(ctx, imported.ID, true)
	require.NoError(t, err)
	exercises := 0
	for _, week := range detailed.Weeks {
		for _, w := range week.Workouts {
			exercises += len(w.Exercises)
		}
	}
	assert.Equal(t, 4, exercises)

	basic, err := env.templates.GetTemplate(ctx, imported.ID, false)
	require.NoError(t, err)
	assert.Empty(t, basic.Weeks)
	assert.Equal(t, imported.ID, basic.ID)
}

func TestImportTemplateSkipsExistingNameCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.importFixture(t)

	doc := bytes.Replace(readFixture(t, "upper_lower.yaml"), []byte("Upper Lower 4x"), []byte("UPPER lower 4X"), 1)
	result, err := env.templates.ImportTemplate(ctx, doc)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, first.ID, result.Template.ID)

	all, err := env.templates.ListTemplates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportTemplateIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	failing := &failingTemplates{TemplateRepository: env.store.Templates(), failAt: 3}
	svc := NewTemplateService(failing, env.store, cache.Noop{}, testTTL, nil, logging.Discard())

	_, err := svc.ImportTemplate(ctx, readFixture(t, "upper_lower.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImportFailed)
	var creationErr *domain.TemplateCreationError
	require.ErrorAs(t, err, &creationErr)
	assert.Equal(t, "Upper Lower 4x", creationErr.Name)

	graphs, err := env.store.Templates().ListGraphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, graphs)
	_, err = env.store.Templates().GetTemplateByName(ctx, "Upper Lower 4x")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The same document imports cleanly once the store recovers.
	failing.failAt = 0
	result, err := svc.ImportTemplate(ctx, readFixture(t, "upper_lower.yaml"))
	require.NoError(t, err)
	assert.False(t, result.Skipped)
}

func TestImportTemplateRejectsMalformedDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.templates.ImportTemplate(context.Background(), []byte("WorkoutTemplate:\n  Name: Broken\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImportFailed)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestListTemplatesCachesNonEmptyResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	empty, err := env.templates.ListTemplates(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, empty)
	_, cached := env.cache.Get(cache.KeyAllTemplatesBasic)
	assert.False(t, cached, "empty lists are not cached")

	env.importFixture(t)
	basic, err := env.templates.ListTemplates(ctx, false)
	require.NoError(t, err)
	require.Len(t, basic, 1)
	_, cached = env.cache.Get(cache.KeyAllTemplatesBasic)
	assert.True(t, cached)

	detailed, err := env.templates.ListTemplates(ctx, true)
	require.NoError(t, err)
	require.Len(t, detailed, 1)
	assert.Len(t, detailed[0].Weeks, 2)

	// A new import drops both catalog entries.
	_, err = env.templates.ImportTemplate(ctx, readFixture(t, "starter.json"))
	require.NoError(t, err)
	_, cached = env.cache.Get(cache.KeyAllTemplatesDetailed)
	assert.False(t, cached)

	basic, err = env.templates.ListTemplates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, basic, 2)
}

func TestUpdateTemplateRefreshesCachedReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	imported := env.importFixture(t)

	_, err := env.templates.GetTemplate(ctx, imported.ID, true)
	require.NoError(t, err)

	updated, err := env.templates.UpdateTemplate(ctx, imported.ID, TemplateUpdate{Name: strp("Upper Lower v2")})
	require.NoError(t, err)
	assert.Equal(t, "Upper Lower v2", updated.Name)

	got, err := env.templates.GetTemplate(ctx, imported.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Upper Lower v2", got.Name)
	assert.Len(t, got.Weeks, 2)

	_, err = env.templates.UpdateTemplate(ctx, imported.ID, TemplateUpdate{DurationWeeks: intp(1)})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestUpdateTemplateRejectsTakenName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	imported := env.importFixture(t)
	_, err := env.templates.ImportTemplate(ctx, readFixture(t, "starter.json"))
	require.NoError(t, err)

	_, err = env.templates.UpdateTemplate(ctx, imported.ID, TemplateUpdate{Name: strp("starter")})
	assert.ErrorIs(t, err, domain.ErrTemplateNameExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteTemplateIsRestrictedWhileSubscribed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	imported := env.importFixture(t)
	userID := env.newUser(t, "ana")

	sub, err := env.subscriptions.Subscribe(ctx, userID, imported.ID, time.Time{})
	require.NoError(t, err)

	err = env.templates.DeleteTemplate(ctx, imported.ID)
	assert.ErrorIs(t, err, domain.ErrTemplateInUse)

	require.NoError(t, env.subscriptions.Unsubscribe(ctx, userID, sub.ID))
	require.NoError(t, env.templates.DeleteTemplate(ctx, imported.ID))

	_, err = env.templates.GetTemplate(ctx, imported.ID, true)
	assert.ErrorIs(t, err, domain.ErrWorkoutTemplateNotFound)
	assert.ErrorIs(t, env.templates.DeleteTemplate(ctx, imported.ID), domain.ErrNotFound)
}

func TestImportFromLocations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("WorkoutTemplate: ["), 0o600))

	results, err := env.templates.ImportFromLocations(ctx, []string{
		fixturePath("upper_lower.yaml"),
		filepath.Join(t.TempDir(), "missing.yaml"),
		broken,
		fixturePath("starter.json"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Contains(t, err.Error(), "broken.yaml")
	require.Len(t, results, 2)
	assert.Equal(t, "Upper Lower 4x", results[0].Template.Name)
	assert.Equal(t, "Starter", results[1].Template.Name)

	// A second run skips everything that already exists.
	results, err = env.templates.ImportFromLocations(ctx, []string{fixturePath("upper_lower.yaml")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
}

func TestImportFromLocationsRequiresSource(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTemplateService(env.store.Templates(), env.store, cache.Noop{}, testTTL, nil, logging.Discard())

	_, err := svc.ImportFromLocations(context.Background(), []string{"a.yaml"})
	assert.Error(t, err)
}

func TestTemplateExercisePath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	imported := env.importFixture(t)
	week1, week2 := imported.Weeks[0], imported.Weeks[1]
	workout := week1.Workouts[0]
	exercise := workout.Exercises[0]

	path := TemplateExercisePath{TemplateID: imported.ID, WeekID: week1.ID, WorkoutID: workout.ID, ExerciseID: exercise.ID}
	got, err := env.templates.GetTemplateExercise(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", got.ExerciseName)

	wrongWeek := path
	wrongWeek.WeekID = week2.ID
	_, err = env.templates.GetTemplateExercise(ctx, wrongWeek)
	assert.ErrorIs(t, err, domain.ErrTemplateWorkoutNotFound)

	unknown := path
	unknown.ExerciseID = uuid.New()
	_, err = env.templates.GetTemplateExercise(ctx, unknown)
	assert.ErrorIs(t, err, domain.ErrTemplateExerciseNotFound)

	empty := path
	empty.WorkoutID = uuid.Nil
	_, err = env.templates.GetTemplateExercise(ctx, empty)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateTemplateExercise(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	imported := env.importFixture(t)
	week := imported.Weeks[0]
	workout := week.Workouts[0]
	path := TemplateExercisePath{TemplateID: imported.ID, WeekID: week.ID, WorkoutID: workout.ID, ExerciseID: workout.Exercises[0].ID}

	_, err := env.templates.GetTemplate(ctx, imported.ID, true)
	require.NoError(t, err)

	updated, err := env.templates.UpdateTemplateExercise(ctx, path, TemplateExerciseUpdate{
		ExerciseName: strp("Incline Bench Press"),
		Prescription: &domain.Prescription{WorkingSets: "4", Reps: "8"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Incline Bench Press", updated.ExerciseName)
	assert.Empty(t, updated.Prescription.Rest)

	detailed, err := env.templates.GetTemplate(ctx, imported.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Incline Bench Press", detailed.Weeks[0].Workouts[0].Exercises[0].ExerciseName)

	_, err = env.templates.UpdateTemplateExercise(ctx, path, TemplateExerciseUpdate{ExerciseName: strp("  ")})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

package service

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkout() WorkoutInput {
	return WorkoutInput{
		Date:  time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC),
		Notes: "Push day",
		Exercises: []ExerciseInput{
			{Name: "Bench Press", Series: []SeriesInput{
				{Repetitions: 8, Weight: floatp(80), RPE: floatp(7.5)},
				{Repetitions: 6, Weight: floatp(85)},
			}},
			{Name: "Dips"},
		},
	}
}

func TestCreateAndGetWorkout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, "ana")

	created, err := env.workouts.CreateWorkout(ctx, userID, sampleWorkout())
	require.NoError(t, err)
	require.Len(t, created.Exercises, 2)
	assert.Equal(t, 1, created.Exercises[1].Position)
	require.Len(t, created.Exercises[0].Series, 2)

	got, err := env.workouts.GetWorkout(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push day", got.Notes)
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, "Bench Press", got.Exercises[0].Name)
	require.Len(t, got.Exercises[0].Series, 2)
	assert.Equal(t, 85.0, *got.Exercises[0].Series[1].Weight)
	assert.Empty(t, got.Exercises[1].Series)
}

func TestCreateWorkoutValidatesEverythingFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, "ana")

	in := sampleWorkout()
	in.Exercises[1].Series = []SeriesInput{{Repetitions: 5, RPE: floatp(11)}}
	_, err := env.workouts.CreateWorkout(ctx, userID, in)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	in = sampleWorkout()
	in.Exercises[0].Name = " "
	_, err = env.workouts.CreateWorkout(ctx, userID, in)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	list, err := env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWorkoutListStaysCoherentWithWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, "ana")

	// Warm the cache with an empty list; unlike the catalog it is stored.
	list, err := env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, cached := env.cache.Get(cache.WorkoutsKey(userID))
	assert.True(t, cached)

	created, err := env.workouts.CreateWorkout(ctx, userID, sampleWorkout())
	require.NoError(t, err)
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Exercises, 2)

	ex, err := env.workouts.AddExercise(ctx, userID, created.ID, ExerciseInput{Name: "Cable Fly"})
	require.NoError(t, err)
	assert.Equal(t, 2, ex.Position)
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list[0].Exercises, 3)

	sr, err := env.workouts.AddSeries(ctx, userID, created.ID, ex.ID, SeriesInput{Repetitions: 12, Weight: floatp(15)})
	require.NoError(t, err)
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list[0].Exercises[2].Series, 1)

	_, err = env.workouts.UpdateSeries(ctx, userID, created.ID, ex.ID, sr.ID, SeriesUpdate{Repetitions: intp(10)})
	require.NoError(t, err)
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, list[0].Exercises[2].Series[0].Repetitions)

	_, err = env.workouts.UpdateWorkout(ctx, userID, created.ID, WorkoutUpdate{Notes: strp("Chest focus")})
	require.NoError(t, err)
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Chest focus", list[0].Notes)

	require.NoError(t, env.workouts.DeleteExercise(ctx, userID, created.ID, ex.ID))
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list[0].Exercises, 2)

	require.NoError(t, env.workouts.DeleteWorkout(ctx, userID, created.ID))
	list, err = env.workouts.ListWorkouts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWorkoutOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana")
	ben := env.newUser(t, "ben")

	anaWorkout, err := env.workouts.CreateWorkout(ctx, ana, sampleWorkout())
	require.NoError(t, err)
	benWorkout, err := env.workouts.CreateWorkout(ctx, ben, sampleWorkout())
	require.NoError(t, err)
	anaExercise := anaWorkout.Exercises[0]
	benExercise := benWorkout.Exercises[0]

	_, err = env.workouts.GetWorkout(ctx, ben, anaWorkout.ID)
	assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)

	// Ana's workout with Ben's exercise: the chain is broken even though both exist.
	_, err = env.workouts.GetExercise(ctx, ana, anaWorkout.ID, benExercise.ID)
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)

	_, err = env.workouts.GetSeries(ctx, ana, anaWorkout.ID, anaExercise.ID, benExercise.Series[0].ID)
	assert.ErrorIs(t, err, domain.ErrSeriesNotFound)

	assert.ErrorIs(t, env.workouts.DeleteWorkout(ctx, ben, anaWorkout.ID), domain.ErrNotFound)
	_, err = env.workouts.AddSeries(ctx, ben, anaWorkout.ID, anaExercise.ID, SeriesInput{Repetitions: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.workouts.GetExercise(ctx, ana, anaWorkout.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	got, err := env.workouts.GetWorkout(ctx, ana, anaWorkout.ID)
	require.NoError(t, err)
	assert.Len(t, got.Exercises[0].Series, 2)

	benList, err := env.workouts.ListWorkouts(ctx, ben)
	require.NoError(t, err)
	require.Len(t, benList, 1)
	assert.Equal(t, benWorkout.ID, benList[0].ID)
}

func TestUpdateSeriesValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, "ana")
	w, err := env.workouts.CreateWorkout(ctx, userID, sampleWorkout())
	require.NoError(t, err)
	ex := w.Exercises[0]

	_, err = env.workouts.UpdateSeries(ctx, userID, w.ID, ex.ID, ex.Series[0].ID, SeriesUpdate{Weight: floatp(-5)})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	got, err := env.workouts.GetSeries(ctx, userID, w.ID, ex.ID, ex.Series[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, *got.Weight)

	renamed, err := env.workouts.UpdateExercise(ctx, userID, w.ID, ex.ID, ExerciseUpdate{Name: strp("Paused Bench")})
	require.NoError(t, err)
	assert.Equal(t, "Paused Bench", renamed.Name)
	assert.Len(t, renamed.Series, 2)

	require.NoError(t, env.workouts.DeleteSeries(ctx, userID, w.ID, ex.ID, ex.Series[1].ID))
	_, err = env.workouts.GetSeries(ctx, userID, w.ID, ex.ID, ex.Series[1].ID)
	assert.ErrorIs(t, err, domain.ErrSeriesNotFound)
}

package ownership

import (
	"alcyxob/gymtracker/internal/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireIDs(t *testing.T) {
	assert.NoError(t, RequireIDs(uuid.New(), uuid.New()))
	err := RequireIDs(uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Contains(t, err.Error(), "segment 2")
}

func TestWorkoutChain(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	w1 := &domain.Workout{ID: uuid.New(), UserID: alice}
	w2 := &domain.Workout{ID: uuid.New(), UserID: alice}
	e2 := &domain.Exercise{ID: uuid.New(), WorkoutID: w2.ID}
	s2 := &domain.Series{ID: uuid.New(), ExerciseID: e2.ID}

	assert.NoError(t, Workout(alice, w1.ID, w1))
	assert.ErrorIs(t, Workout(bob, w1.ID, w1), domain.ErrWorkoutNotFound)
	assert.ErrorIs(t, Workout(alice, w1.ID, nil), domain.ErrWorkoutNotFound)

	assert.NoError(t, Exercise(alice, w2.ID, e2.ID, w2, e2))
	// An exercise of W2 addressed under W1 is not found, even though both exist and belong to alice.
	assert.ErrorIs(t, Exercise(alice, w1.ID, e2.ID, w1, e2), domain.ErrExerciseNotFound)
	assert.ErrorIs(t, Exercise(alice, w2.ID, e2.ID, w2, nil), domain.ErrExerciseNotFound)

	assert.NoError(t, Series(alice, w2.ID, e2.ID, s2.ID, w2, e2, s2))
	other := &domain.Series{ID: uuid.New(), ExerciseID: uuid.New()}
	assert.ErrorIs(t, Series(alice, w2.ID, e2.ID, other.ID, w2, e2, other), domain.ErrSeriesNotFound)
	assert.ErrorIs(t, Series(bob, w2.ID, e2.ID, s2.ID, w2, e2, s2), domain.ErrWorkoutNotFound)
}

func TestTemplateExerciseChain(t *testing.T) {
	tmpl := &domain.WorkoutTemplate{ID: uuid.New()}
	week := &domain.TemplateWeek{ID: uuid.New(), WorkoutTemplateID: tmpl.ID}
	day := &domain.TemplateWorkout{ID: uuid.New(), TemplateWeekID: week.ID}
	ex := &domain.TemplateExercise{ID: uuid.New(), TemplateWorkoutID: day.ID}
	path := TemplatePath{
		TemplateID: tmpl.ID, WeekID: week.ID, WorkoutID: day.ID, ExerciseID: ex.ID,
		Template: tmpl, Week: week, Workout: day, Exercise: ex,
	}
	assert.NoError(t, TemplateExercise(path))

	foreignWeek := &domain.TemplateWeek{ID: uuid.New(), WorkoutTemplateID: uuid.New()}
	bad := path
	bad.WeekID, bad.Week = foreignWeek.ID, foreignWeek
	assert.ErrorIs(t, TemplateExercise(bad), domain.ErrTemplateWeekNotFound)

	bad = path
	bad.Template = nil
	assert.ErrorIs(t, TemplateExercise(bad), domain.ErrWorkoutTemplateNotFound)

	bad = path
	bad.Workout = &domain.TemplateWorkout{ID: day.ID, TemplateWeekID: uuid.New()}
	assert.ErrorIs(t, TemplateExercise(bad), domain.ErrTemplateWorkoutNotFound)

	bad = path
	bad.Exercise = nil
	assert.ErrorIs(t, TemplateExercise(bad), domain.ErrTemplateExerciseNotFound)

	assert.NoError(t, ExerciseInTemplate(tmpl.ID, ex, day, week))
	assert.ErrorIs(t, ExerciseInTemplate(uuid.New(), ex, day, week), domain.ErrTemplateExerciseNotFound)
	assert.ErrorIs(t, ExerciseInTemplate(tmpl.ID, ex, nil, week), domain.ErrTemplateExerciseNotFound)
}

func TestSubscriptionAndProgress(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	sub := &domain.UserWorkoutTemplate{ID: uuid.New(), UserID: alice}
	p := &domain.UserExerciseProgress{ID: uuid.New(), UserWorkoutTemplateID: sub.ID}

	assert.NoError(t, Subscription(alice, sub.ID, sub))
	assert.ErrorIs(t, Subscription(bob, sub.ID, sub), domain.ErrUserWorkoutTemplateNotFound)
	assert.ErrorIs(t, Subscription(alice, uuid.New(), sub), domain.ErrUserWorkoutTemplateNotFound)

	assert.NoError(t, Progress(alice, p.ID, p, sub))
	assert.ErrorIs(t, Progress(bob, p.ID, p, sub), domain.ErrUserExerciseProgressNotFound)
	assert.ErrorIs(t, Progress(alice, p.ID, nil, sub), domain.ErrUserExerciseProgressNotFound)
}

func TestUser(t *testing.T) {
	u := &domain.User{ID: uuid.New()}
	assert.NoError(t, User(u.ID, u))
	assert.ErrorIs(t, User(u.ID, nil), domain.ErrUserNotFound)
}

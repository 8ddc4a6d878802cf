// Package ownership checks that entities fetched for a composite path really
// form a chain: each one exists and points at the parent named in the path.
// The checks never touch storage.
package ownership

import (
	"alcyxob/gymtracker/internal/domain"
	"fmt"

	"github.com/google/uuid"
)

// RequireIDs fails with ErrInvalidID when any id is the all-zero UUID.
// Call it before fetching anything.
func RequireIDs(ids ...uuid.UUID) error {
	for i, id := range ids {
		if id == uuid.Nil {
			return fmt.Errorf("%w: path segment %d is empty", domain.ErrInvalidID, i+1)
		}
	}
	return nil
}

// User checks that the caller exists.
func User(userID uuid.UUID, user *domain.User) error {
	if user == nil || user.ID != userID {
		return domain.ErrUserNotFound
	}
	return nil
}

// Workout checks that w is the workout workoutID and belongs to userID.
func Workout(userID, workoutID uuid.UUID, w *domain.Workout) error {
	if w == nil || w.ID != workoutID || w.UserID != userID {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

// Exercise checks the user → workout → exercise chain.
func Exercise(userID, workoutID, exerciseID uuid.UUID, w *domain.Workout, e *domain.Exercise) error {
	if err := Workout(userID, workoutID, w); err != nil {
		return err
	}
	if e == nil || e.ID != exerciseID || e.WorkoutID != workoutID {
		return domain.ErrExerciseNotFound
	}
	return nil
}

// Series checks the user → workout → exercise → series chain.
func Series(userID, workoutID, exerciseID, seriesID uuid.UUID, w *domain.Workout, e *domain.Exercise, s *domain.Series) error {
	if err := Exercise(userID, workoutID, exerciseID, w, e); err != nil {
		return err
	}
	if s == nil || s.ID != seriesID || s.ExerciseID != exerciseID {
		return domain.ErrSeriesNotFound
	}
	return nil
}

// TemplatePath holds the entities addressed by
// /templates/:templateId/weeks/:weekId/workouts/:workoutId/exercises/:exerciseId.
type TemplatePath struct {
	TemplateID, WeekID, WorkoutID, ExerciseID uuid.UUID

	Template *domain.WorkoutTemplate
	Week     *domain.TemplateWeek
	Workout  *domain.TemplateWorkout
	Exercise *domain.TemplateExercise
}

// TemplateExercise checks the template → week → workout → exercise chain.
func TemplateExercise(p TemplatePath) error {
	if p.Template == nil || p.Template.ID != p.TemplateID {
		return domain.ErrWorkoutTemplateNotFound
	}
	if p.Week == nil || p.Week.ID != p.WeekID || p.Week.WorkoutTemplateID != p.TemplateID {
		return domain.ErrTemplateWeekNotFound
	}
	if p.Workout == nil || p.Workout.ID != p.WorkoutID || p.Workout.TemplateWeekID != p.WeekID {
		return domain.ErrTemplateWorkoutNotFound
	}
	if p.Exercise == nil || p.Exercise.ID != p.ExerciseID || p.Exercise.TemplateWorkoutID != p.WorkoutID {
		return domain.ErrTemplateExerciseNotFound
	}
	return nil
}

// ExerciseInTemplate checks that a template exercise, reached upwards through
// its workout and week, belongs to templateID. Any broken link reports the
// exercise as missing from that template.
func ExerciseInTemplate(templateID uuid.UUID, e *domain.TemplateExercise, w *domain.TemplateWorkout, wk *domain.TemplateWeek) error {
	if e == nil || w == nil || wk == nil ||
		e.TemplateWorkoutID != w.ID || w.TemplateWeekID != wk.ID || wk.WorkoutTemplateID != templateID {
		return domain.ErrTemplateExerciseNotFound
	}
	return nil
}

// Subscription checks that sub is subscriptionID and is held by userID.
func Subscription(userID, subscriptionID uuid.UUID, sub *domain.UserWorkoutTemplate) error {
	if sub == nil || sub.ID != subscriptionID || sub.UserID != userID {
		return domain.ErrUserWorkoutTemplateNotFound
	}
	return nil
}

// Progress checks that p is progressID and hangs off a subscription held by userID.
func Progress(userID, progressID uuid.UUID, p *domain.UserExerciseProgress, sub *domain.UserWorkoutTemplate) error {
	if p == nil || p.ID != progressID {
		return domain.ErrUserExerciseProgressNotFound
	}
	if sub == nil || sub.ID != p.UserWorkoutTemplateID || sub.UserID != userID {
		return domain.ErrUserExerciseProgressNotFound
	}
	return nil
}

package memory

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"sort"

	"github.com/google/uuid"
)

type workoutRepo struct{ s *Store }

func cloneSeries(s domain.Series) domain.Series {
	s.RPE = cloneFloatPtr(s.RPE)
	s.Weight = cloneFloatPtr(s.Weight)
	return s
}

func (r *workoutRepo) CreateWorkout(ctx context.Context, w *domain.Workout) error {
	return r.s.write(ctx, func(st *state) error {
		if _, exists := st.workouts[w.ID]; exists {
			return repository.ErrDuplicate
		}
		row := *w
		row.Exercises = nil
		st.workouts[row.ID] = row
		return nil
	})
}

func (r *workoutRepo) GetWorkout(ctx context.Context, id uuid.UUID) (*domain.Workout, error) {
	var out *domain.Workout
	err := r.s.read(ctx, func(st *state) error {
		w, ok := st.workouts[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

// ListWorkoutsByUser returns the user's workouts, newest first.
func (r *workoutRepo) ListWorkoutsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workout, error) {
	out := []domain.Workout{}
	err := r.s.read(ctx, func(st *state) error {
		for _, w := range st.workouts {
			if w.UserID == userID {
				out = append(out, w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r *workoutRepo) UpdateWorkout(ctx context.Context, w *domain.Workout) error {
	return r.s.write(ctx, func(st *state) error {
		existing, ok := st.workouts[w.ID]
		if !ok {
			return repository.ErrNotFound
		}
		row := *w
		row.UserID = existing.UserID
		row.Exercises = nil
		st.workouts[row.ID] = row
		return nil
	})
}

func (r *workoutRepo) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.workouts[id]; !ok {
			return repository.ErrNotFound
		}
		for eid, e := range st.exercises {
			if e.WorkoutID == id {
				deleteSeriesOf(st, eid)
				delete(st.exercises, eid)
			}
		}
		delete(st.workouts, id)
		return nil
	})
}

func deleteSeriesOf(st *state, exerciseID uuid.UUID) {
	for sid, s := range st.series {
		if s.ExerciseID == exerciseID {
			delete(st.series, sid)
		}
	}
}

func (r *workoutRepo) CreateExercise(ctx context.Context, e *domain.Exercise) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.workouts[e.WorkoutID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.exercises[e.ID]; exists {
			return repository.ErrDuplicate
		}
		row := *e
		row.Series = nil
		st.exercises[row.ID] = row
		return nil
	})
}

func (r *workoutRepo) GetExercise(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	var out *domain.Exercise
	err := r.s.read(ctx, func(st *state) error {
		e, ok := st.exercises[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *workoutRepo) ListExercisesByWorkouts(ctx context.Context, workoutIDs []uuid.UUID) ([]domain.Exercise, error) {
	wanted := make(map[uuid.UUID]bool, len(workoutIDs))
	for _, id := range workoutIDs {
		wanted[id] = true
	}
	out := []domain.Exercise{}
	err := r.s.read(ctx, func(st *state) error {
		for _, e := range st.exercises {
			if wanted[e.WorkoutID] {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r *workoutRepo) UpdateExercise(ctx context.Context, e *domain.Exercise) error {
	return r.s.write(ctx, func(st *state) error {
		existing, ok := st.exercises[e.ID]
		if !ok {
			return repository.ErrNotFound
		}
		row := *e
		row.WorkoutID = existing.WorkoutID
		row.Series = nil
		st.exercises[row.ID] = row
		return nil
	})
}

func (r *workoutRepo) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.exercises[id]; !ok {
			return repository.ErrNotFound
		}
		deleteSeriesOf(st, id)
		delete(st.exercises, id)
		return nil
	})
}

func (r *workoutRepo) CreateSeries(ctx context.Context, s *domain.Series) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.exercises[s.ExerciseID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.series[s.ID]; exists {
			return repository.ErrDuplicate
		}
		st.series[s.ID] = cloneSeries(*s)
		return nil
	})
}

func (r *workoutRepo) GetSeries(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	var out *domain.Series
	err := r.s.read(ctx, func(st *state) error {
		s, ok := st.series[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneSeries(s)
		out = &c
		return nil
	})
	return out, err
}

func (r *workoutRepo) ListSeriesByExercises(ctx context.Context, exerciseIDs []uuid.UUID) ([]domain.Series, error) {
	wanted := make(map[uuid.UUID]bool, len(exerciseIDs))
	for _, id := range exerciseIDs {
		wanted[id] = true
	}
	out := []domain.Series{}
	err := r.s.read(ctx, func(st *state) error {
		for _, s := range st.series {
			if wanted[s.ExerciseID] {
				out = append(out, cloneSeries(s))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r *workoutRepo) UpdateSeries(ctx context.Context, s *domain.Series) error {
	return r.s.write(ctx, func(st *state) error {
		existing, ok := st.series[s.ID]
		if !ok {
			return repository.ErrNotFound
		}
		row := cloneSeries(*s)
		row.ExerciseID = existing.ExerciseID
		st.series[row.ID] = row
		return nil
	})
}

func (r *workoutRepo) DeleteSeries(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.series[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.series, id)
		return nil
	})
}

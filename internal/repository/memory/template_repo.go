package memory

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type templateRepo struct{ s *Store }

func (r *templateRepo) CreateTemplate(ctx context.Context, t *domain.WorkoutTemplate) error {
	return r.s.write(ctx, func(st *state) error {
		if _, exists := st.templates[t.ID]; exists {
			return repository.ErrDuplicate
		}
		lower := strings.ToLower(t.Name)
		if nameTaken(st, lower, uuid.Nil) {
			return repository.ErrDuplicate
		}
		row := *t
		row.NameLower = lower
		row.Weeks = nil
		st.templates[row.ID] = row
		t.NameLower = lower
		return nil
	})
}

func nameTaken(st *state, lower string, except uuid.UUID) bool {
	for id, existing := range st.templates {
		if id != except && existing.NameLower == lower {
			return true
		}
	}
	return false
}

func (r *templateRepo) CreateWeek(ctx context.Context, w *domain.TemplateWeek) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.templates[w.WorkoutTemplateID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.weeks[w.ID]; exists {
			return repository.ErrDuplicate
		}
		row := *w
		row.Workouts = nil
		st.weeks[row.ID] = row
		return nil
	})
}

func (r *templateRepo) CreateWorkout(ctx context.Context, w *domain.TemplateWorkout) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.weeks[w.TemplateWeekID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.tplWorkouts[w.ID]; exists {
			return repository.ErrDuplicate
		}
		row := *w
		row.Exercises = nil
		st.tplWorkouts[row.ID] = row
		return nil
	})
}

func (r *templateRepo) CreateExercise(ctx context.Context, e *domain.TemplateExercise) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.tplWorkouts[e.TemplateWorkoutID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.tplExercise[e.ID]; exists {
			return repository.ErrDuplicate
		}
		st.tplExercise[e.ID] = *e
		return nil
	})
}

func (r *templateRepo) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.WorkoutTemplate, error) {
	var out *domain.WorkoutTemplate
	err := r.s.read(ctx, func(st *state) error {
		t, ok := st.templates[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *templateRepo) GetTemplateByName(ctx context.Context, name string) (*domain.WorkoutTemplate, error) {
	lower := strings.ToLower(name)
	var out *domain.WorkoutTemplate
	err := r.s.read(ctx, func(st *state) error {
		for _, t := range st.templates {
			if t.NameLower == lower {
				out = &t
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *templateRepo) ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	var out []domain.WorkoutTemplate
	err := r.s.read(ctx, func(st *state) error {
		out = sortedTemplates(st)
		return nil
	})
	return out, err
}

func sortedTemplates(st *state) []domain.WorkoutTemplate {
	out := make([]domain.WorkoutTemplate, 0, len(st.templates))
	for _, t := range st.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameLower != out[j].NameLower {
			return out[i].NameLower < out[j].NameLower
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func graphOf(st *state, t domain.WorkoutTemplate) domain.TemplateGraph {
	g := domain.TemplateGraph{Template: t}
	for _, w := range st.weeks {
		if w.WorkoutTemplateID == t.ID {
			g.Weeks = append(g.Weeks, w)
		}
	}
	sort.Slice(g.Weeks, func(i, j int) bool { return g.Weeks[i].WeekNumber < g.Weeks[j].WeekNumber })

	weekIDs := make(map[uuid.UUID]bool, len(g.Weeks))
	for _, w := range g.Weeks {
		weekIDs[w.ID] = true
	}
	for _, w := range st.tplWorkouts {
		if weekIDs[w.TemplateWeekID] {
			g.Workouts = append(g.Workouts, w)
		}
	}
	sort.Slice(g.Workouts, func(i, j int) bool { return g.Workouts[i].Sequence < g.Workouts[j].Sequence })

	workoutIDs := make(map[uuid.UUID]bool, len(g.Workouts))
	for _, w := range g.Workouts {
		workoutIDs[w.ID] = true
	}
	for _, e := range st.tplExercise {
		if workoutIDs[e.TemplateWorkoutID] {
			g.Exercises = append(g.Exercises, e)
		}
	}
	sort.Slice(g.Exercises, func(i, j int) bool { return g.Exercises[i].Sequence < g.Exercises[j].Sequence })
	return g
}

func (r *templateRepo) GetGraph(ctx context.Context, templateID uuid.UUID) (*domain.TemplateGraph, error) {
	var out *domain.TemplateGraph
	err := r.s.read(ctx, func(st *state) error {
		t, ok := st.templates[templateID]
		if !ok {
			return repository.ErrNotFound
		}
		g := graphOf(st, t)
		out = &g
		return nil
	})
	return out, err
}

func (r *templateRepo) ListGraphs(ctx context.Context) ([]domain.TemplateGraph, error) {
	var out []domain.TemplateGraph
	err := r.s.read(ctx, func(st *state) error {
		for _, t := range sortedTemplates(st) {
			out = append(out, graphOf(st, t))
		}
		return nil
	})
	return out, err
}

func (r *templateRepo) GetWeek(ctx context.Context, id uuid.UUID) (*domain.TemplateWeek, error) {
	var out *domain.TemplateWeek
	err := r.s.read(ctx, func(st *state) error {
		w, ok := st.weeks[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *templateRepo) GetWorkout(ctx context.Context, id uuid.UUID) (*domain.TemplateWorkout, error) {
	var out *domain.TemplateWorkout
	err := r.s.read(ctx, func(st *state) error {
		w, ok := st.tplWorkouts[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *templateRepo) GetExercise(ctx context.Context, id uuid.UUID) (*domain.TemplateExercise, error) {
	var out *domain.TemplateExercise
	err := r.s.read(ctx, func(st *state) error {
		e, ok := st.tplExercise[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *templateRepo) UpdateTemplate(ctx context.Context, t *domain.WorkoutTemplate) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.templates[t.ID]; !ok {
			return repository.ErrNotFound
		}
		lower := strings.ToLower(t.Name)
		if nameTaken(st, lower, t.ID) {
			return repository.ErrDuplicate
		}
		row := *t
		row.NameLower = lower
		row.Weeks = nil
		st.templates[row.ID] = row
		t.NameLower = lower
		return nil
	})
}

func (r *templateRepo) UpdateExercise(ctx context.Context, e *domain.TemplateExercise) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.tplExercise[e.ID]; !ok {
			return repository.ErrNotFound
		}
		st.tplExercise[e.ID] = *e
		return nil
	})
}

func (r *templateRepo) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		t, ok := st.templates[id]
		if !ok {
			return repository.ErrNotFound
		}
		for _, sub := range st.subs {
			if sub.WorkoutTemplateID == id {
				return repository.ErrReferenced
			}
		}
		g := graphOf(st, t)
		for _, e := range g.Exercises {
			delete(st.tplExercise, e.ID)
		}
		for _, w := range g.Workouts {
			delete(st.tplWorkouts, w.ID)
		}
		for _, w := range g.Weeks {
			delete(st.weeks, w.ID)
		}
		delete(st.templates, id)
		return nil
	})
}

package memory

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"sort"

	"github.com/google/uuid"
)

type subscriptionRepo struct{ s *Store }

func (r *subscriptionRepo) Create(ctx context.Context, sub *domain.UserWorkoutTemplate) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.templates[sub.WorkoutTemplateID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.subs[sub.ID]; exists {
			return repository.ErrDuplicate
		}
		for _, existing := range st.subs {
			if existing.UserID == sub.UserID && existing.WorkoutTemplateID == sub.WorkoutTemplateID {
				return repository.ErrDuplicate
			}
		}
		st.subs[sub.ID] = *sub
		return nil
	})
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	var out *domain.UserWorkoutTemplate
	err := r.s.read(ctx, func(st *state) error {
		sub, ok := st.subs[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &sub
		return nil
	})
	return out, err
}

func (r *subscriptionRepo) GetByUserAndTemplate(ctx context.Context, userID, templateID uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	var out *domain.UserWorkoutTemplate
	err := r.s.read(ctx, func(st *state) error {
		for _, sub := range st.subs {
			if sub.UserID == userID && sub.WorkoutTemplateID == templateID {
				out = &sub
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserWorkoutTemplate, error) {
	out := []domain.UserWorkoutTemplate{}
	err := r.s.read(ctx, func(st *state) error {
		for _, sub := range st.subs {
			if sub.UserID == userID {
				out = append(out, sub)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, err
}

func (r *subscriptionRepo) CountByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(st *state) error {
		for _, sub := range st.subs {
			if sub.WorkoutTemplateID == templateID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Delete removes the subscription together with its progress rows.
func (r *subscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.subs[id]; !ok {
			return repository.ErrNotFound
		}
		for pid, p := range st.progress {
			if p.UserWorkoutTemplateID == id {
				delete(st.progress, pid)
			}
		}
		delete(st.subs, id)
		return nil
	})
}

type progressRepo struct{ s *Store }

func cloneProgress(p domain.UserExerciseProgress) domain.UserExerciseProgress {
	p.Set1Reps = cloneIntPtr(p.Set1Reps)
	p.Set2Reps = cloneIntPtr(p.Set2Reps)
	p.Set3Reps = cloneIntPtr(p.Set3Reps)
	p.Set4Reps = cloneIntPtr(p.Set4Reps)
	if p.CompletionDate != nil {
		d := *p.CompletionDate
		p.CompletionDate = &d
	}
	return p
}

func (r *progressRepo) Create(ctx context.Context, p *domain.UserExerciseProgress) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.subs[p.UserWorkoutTemplateID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.tplExercise[p.TemplateExerciseID]; !ok {
			return repository.ErrNotFound
		}
		if _, exists := st.progress[p.ID]; exists {
			return repository.ErrDuplicate
		}
		for _, existing := range st.progress {
			if existing.UserWorkoutTemplateID == p.UserWorkoutTemplateID && existing.TemplateExerciseID == p.TemplateExerciseID {
				return repository.ErrDuplicate
			}
		}
		st.progress[p.ID] = cloneProgress(*p)
		return nil
	})
}

func (r *progressRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserExerciseProgress, error) {
	var out *domain.UserExerciseProgress
	err := r.s.read(ctx, func(st *state) error {
		p, ok := st.progress[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := cloneProgress(p)
		out = &c
		return nil
	})
	return out, err
}

func (r *progressRepo) GetBySubscriptionAndExercise(ctx context.Context, subscriptionID, templateExerciseID uuid.UUID) (*domain.UserExerciseProgress, error) {
	var out *domain.UserExerciseProgress
	err := r.s.read(ctx, func(st *state) error {
		for _, p := range st.progress {
			if p.UserWorkoutTemplateID == subscriptionID && p.TemplateExerciseID == templateExerciseID {
				c := cloneProgress(p)
				out = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *progressRepo) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]domain.UserExerciseProgress, error) {
	out := []domain.UserExerciseProgress{}
	err := r.s.read(ctx, func(st *state) error {
		for _, p := range st.progress {
			if p.UserWorkoutTemplateID == subscriptionID {
				out = append(out, cloneProgress(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, err
}

func (r *progressRepo) Update(ctx context.Context, p *domain.UserExerciseProgress) error {
	return r.s.write(ctx, func(st *state) error {
		existing, ok := st.progress[p.ID]
		if !ok {
			return repository.ErrNotFound
		}
		row := cloneProgress(*p)
		// The pair is immutable once created.
		row.UserWorkoutTemplateID = existing.UserWorkoutTemplateID
		row.TemplateExerciseID = existing.TemplateExerciseID
		st.progress[p.ID] = row
		return nil
	})
}

func (r *progressRepo) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		for id, p := range st.progress {
			if p.UserWorkoutTemplateID == subscriptionID {
				delete(st.progress, id)
			}
		}
		return nil
	})
}

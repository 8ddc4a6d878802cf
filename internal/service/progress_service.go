package service

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/ownership"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ProgressService tracks a user's results per prescribed exercise of a subscription.
//
// A row moves between three states: not yet logged, active and completed.
// The first log creates it, later logs and updates overwrite only the
// supplied fields, completing stamps CompletionDate and un-completing or
// resetting clears it.
type ProgressService interface {
	LogProgress(ctx context.Context, userID, subscriptionID, templateExerciseID uuid.UUID, update domain.ProgressUpdate) (*domain.UserExerciseProgress, bool, error)
	UpdateProgress(ctx context.Context, userID, progressID uuid.UUID, update domain.ProgressUpdate) (*domain.UserExerciseProgress, error)
	MarkCompleted(ctx context.Context, userID, progressID uuid.UUID, completed bool) (*domain.UserExerciseProgress, error)
	ResetProgress(ctx context.Context, userID, progressID uuid.UUID) (*domain.UserExerciseProgress, error)
	GetProgress(ctx context.Context, userID, progressID uuid.UUID) (*domain.UserExerciseProgress, error)
	ListProgress(ctx context.Context, userID, subscriptionID uuid.UUID) ([]domain.UserExerciseProgress, error)
}

type progressService struct {
	templates     repository.TemplateRepository
	subscriptions repository.SubscriptionRepository
	progress      repository.ProgressRepository
	logger        *slog.Logger
	now           Clock
}

func NewProgressService(
	templates repository.TemplateRepository,
	subscriptions repository.SubscriptionRepository,
	progress repository.ProgressRepository,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		templates:     templates,
		subscriptions: subscriptions,
		progress:      progress,
		logger:        logger,
		now:           utcNow,
	}
}

func validateUpdate(u domain.ProgressUpdate) error {
	for i, reps := range []*int{u.Set1Reps, u.Set2Reps, u.Set3Reps, u.Set4Reps} {
		if reps != nil && *reps < 0 {
			return domain.Malformed("set%dReps must not be negative", i+1)
		}
	}
	return nil
}

func (s *progressService) ownedSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	sub, err := optional(s.subscriptions.GetByID(ctx, subscriptionID))
	if err != nil {
		return nil, err
	}
	if err := ownership.Subscription(userID, subscriptionID, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// checkExerciseInTemplate walks exercise → workout → week and compares the week's template.
func (s *progressService) checkExerciseInTemplate(ctx context.Context, templateID, templateExerciseID uuid.UUID) error {
	ex, err := optional(s.templates.GetExercise(ctx, templateExerciseID))
	if err != nil {
		return err
	}
	var workout *domain.TemplateWorkout
	if ex != nil {
		if workout, err = optional(s.templates.GetWorkout(ctx, ex.TemplateWorkoutID)); err != nil {
			return err
		}
	}
	var week *domain.TemplateWeek
	if workout != nil {
		if week, err = optional(s.templates.GetWeek(ctx, workout.TemplateWeekID)); err != nil {
			return err
		}
	}
	return ownership.ExerciseInTemplate(templateID, ex, workout, week)
}

// LogProgress creates the row for (subscription, exercise) on first use and
// updates it afterwards. The boolean result reports whether it was created.
func (s *progressService) LogProgress(ctx context.Context, userID, subscriptionID, templateExerciseID uuid.UUID, update domain.ProgressUpdate) (*domain.UserExerciseProgress, bool, error) {
	if err := ownership.RequireIDs(userID, subscriptionID, templateExerciseID); err != nil {
		return nil, false, err
	}
	if err := validateUpdate(update); err != nil {
		return nil, false, err
	}
	sub, err := s.ownedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, false, err
	}
	if err := s.checkExerciseInTemplate(ctx, sub.WorkoutTemplateID, templateExerciseID); err != nil {
		return nil, false, err
	}

	existing, err := s.progress.GetBySubscriptionAndExercise(ctx, subscriptionID, templateExerciseID)
	if err == nil {
		p, err := s.save(ctx, existing, update)
		return p, false, err
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	now := s.now()
	p := &domain.UserExerciseProgress{
		ID:                    uuid.New(),
		UserWorkoutTemplateID: subscriptionID,
		TemplateExerciseID:    templateExerciseID,
		UpdatedAt:             now,
	}
	update.Apply(p, now)
	if err := s.progress.Create(ctx, p); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, err
		}
		// A concurrent first log created the row; apply this one on top of it.
		existing, err := s.progress.GetBySubscriptionAndExercise(ctx, subscriptionID, templateExerciseID)
		if err != nil {
			return nil, false, notFoundAs(err, domain.ErrUserExerciseProgressNotFound)
		}
		p, err := s.save(ctx, existing, update)
		return p, false, err
	}
	s.logger.Debug("progress created", "progressId", p.ID, "subscriptionId", subscriptionID, "templateExerciseId", templateExerciseID)
	return p, true, nil
}

func (s *progressService) save(ctx context.Context, p *domain.UserExerciseProgress, update domain.ProgressUpdate) (*domain.UserExerciseProgress, error) {
	now := s.now()
	update.Apply(p, now)
	p.UpdatedAt = now
	if err := s.progress.Update(ctx, p); err != nil {
		return nil, notFoundAs(err, domain.ErrUserExerciseProgressNotFound)
	}
	return p, nil
}

// owned loads a progress row the user may touch.
func (s *progressService) owned(ctx context.Context, userID, progressID uuid.UUID) (*domain.UserExerciseProgress, error) {
	if err := ownership.RequireIDs(userID, progressID); err != nil {
		return nil, err
	}
	p, err := optional(s.progress.GetByID(ctx, progressID))
	if err != nil {
		return nil, err
	}
	var sub *domain.UserWorkoutTemplate
	if p != nil {
		if sub, err = optional(s.subscriptions.GetByID(ctx, p.UserWorkoutTemplateID)); err != nil {
			return nil, err
		}
	}
	if err := ownership.Progress(userID, progressID, p, sub); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *progressService) UpdateProgress(ctx context.Context, userID, progressID uuid.UUID, update domain.ProgressUpdate) (*domain.UserExerciseProgress, error) {
	if err := validateUpdate(update); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p, update)
}

func (s *progressService) MarkCompleted(ctx context.Context, userID, progressID uuid.UUID, completed bool) (*domain.UserExerciseProgress, error) {
	p, err := s.owned(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p, domain.ProgressUpdate{WorkoutCompleted: &completed})
}

func (s *progressService) ResetProgress(ctx context.Context, userID, progressID uuid.UUID) (*domain.UserExerciseProgress, error) {
	p, err := s.owned(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	p.Reset()
	p.UpdatedAt = s.now()
	if err := s.progress.Update(ctx, p); err != nil {
		return nil, notFoundAs(err, domain.ErrUserExerciseProgressNotFound)
	}
	return p, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID, progressID uuid.UUID) (*domain.UserExerciseProgress, error) {
	return s.owned(ctx, userID, progressID)
}

func (s *progressService) ListProgress(ctx context.Context, userID, subscriptionID uuid.UUID) ([]domain.UserExerciseProgress, error) {
	if err := ownership.RequireIDs(userID, subscriptionID); err != nil {
		return nil, err
	}
	if _, err := s.ownedSubscription(ctx, userID, subscriptionID); err != nil {
		return nil, err
	}
	return s.progress.ListBySubscription(ctx, subscriptionID)
}

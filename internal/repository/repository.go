package repository

import (
	"alcyxob/gymtracker/internal/domain"
	"context"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = RepositoryError("not found")
	ErrDuplicate  = RepositoryError("duplicate key")
	ErrReferenced = RepositoryError("still referenced")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn atomically. Repository calls made with the ctx passed to fn
// take part in the transaction; if fn returns an error nothing is persisted.
// Implementations may invoke fn more than once on transient failures, so fn must
// not have side effects outside the store.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TemplateRepository covers the four catalog levels: template, week, workout and exercise.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template *domain.WorkoutTemplate) error // ErrDuplicate on name
	CreateWeek(ctx context.Context, week *domain.TemplateWeek) error
	CreateWorkout(ctx context.Context, workout *domain.TemplateWorkout) error
	CreateExercise(ctx context.Context, exercise *domain.TemplateExercise) error

	GetTemplate(ctx context.Context, id uuid.UUID) (*domain.WorkoutTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*domain.WorkoutTemplate, error) // Case-insensitive
	ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error)
	GetGraph(ctx context.Context, templateID uuid.UUID) (*domain.TemplateGraph, error)
	ListGraphs(ctx context.Context) ([]domain.TemplateGraph, error)

	GetWeek(ctx context.Context, id uuid.UUID) (*domain.TemplateWeek, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*domain.TemplateWorkout, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*domain.TemplateExercise, error)

	UpdateTemplate(ctx context.Context, template *domain.WorkoutTemplate) error // ErrDuplicate on name
	UpdateExercise(ctx context.Context, exercise *domain.TemplateExercise) error
	// DeleteTemplate removes the template and every week, workout and exercise under it.
	// It fails with ErrReferenced while a subscription points at the template.
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// SubscriptionRepository stores UserWorkoutTemplate rows.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.UserWorkoutTemplate) error // ErrDuplicate on (user, template)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserWorkoutTemplate, error)
	GetByUserAndTemplate(ctx context.Context, userID, templateID uuid.UUID) (*domain.UserWorkoutTemplate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserWorkoutTemplate, error)
	CountByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProgressRepository stores UserExerciseProgress rows.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.UserExerciseProgress) error // ErrDuplicate on (subscription, exercise)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserExerciseProgress, error)
	GetBySubscriptionAndExercise(ctx context.Context, subscriptionID, templateExerciseID uuid.UUID) (*domain.UserExerciseProgress, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]domain.UserExerciseProgress, error)
	Update(ctx context.Context, progress *domain.UserExerciseProgress) error
	DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error
}

// WorkoutRepository stores user-logged workouts with their exercises and series.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout *domain.Workout) error
	GetWorkout(ctx context.Context, id uuid.UUID) (*domain.Workout, error)
	ListWorkoutsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, workout *domain.Workout) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error // Cascades to exercises and series

	CreateExercise(ctx context.Context, exercise *domain.Exercise) error
	GetExercise(ctx context.Context, id uuid.UUID) (*domain.Exercise, error)
	ListExercisesByWorkouts(ctx context.Context, workoutIDs []uuid.UUID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exercise *domain.Exercise) error
	DeleteExercise(ctx context.Context, id uuid.UUID) error // Cascades to series

	CreateSeries(ctx context.Context, series *domain.Series) error
	GetSeries(ctx context.Context, id uuid.UUID) (*domain.Series, error)
	ListSeriesByExercises(ctx context.Context, exerciseIDs []uuid.UUID) ([]domain.Series, error)
	UpdateSeries(ctx context.Context, series *domain.Series) error
	DeleteSeries(ctx context.Context, id uuid.UUID) error
}

package service

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/ownership"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type SeriesInput struct {
	Repetitions int      `json:"repetitions"`
	RPE         *float64 `json:"rpe"`
	Weight      *float64 `json:"weight"`
}

type ExerciseInput struct {
	Name   string        `json:"name"`
	Series []SeriesInput `json:"series"`
}

type WorkoutInput struct {
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes"`
	Exercises []ExerciseInput `json:"exercises"`
}

type WorkoutUpdate struct {
	Date  *time.Time `json:"date"`
	Notes *string    `json:"notes"`
}

type ExerciseUpdate struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

type SeriesUpdate struct {
	Repetitions *int     `json:"repetitions"`
	RPE         *float64 `json:"rpe"`
	Weight      *float64 `json:"weight"`
	Position    *int     `json:"position"`
}

// WorkoutService manages the free-form workout log of each user.
type WorkoutService interface {
	ListWorkouts(ctx context.Context, userID uuid.UUID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*domain.Workout, error)
	CreateWorkout(ctx context.Context, userID uuid.UUID, in WorkoutInput) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID uuid.UUID, update WorkoutUpdate) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID uuid.UUID) error

	AddExercise(ctx context.Context, userID, workoutID uuid.UUID, in ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID, update ExerciseUpdate) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID) error

	AddSeries(ctx context.Context, userID, workoutID, exerciseID uuid.UUID, in SeriesInput) (*domain.Series, error)
	GetSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID) (*domain.Series, error)
	UpdateSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID, update SeriesUpdate) (*domain.Series, error)
	DeleteSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID) error
}

type workoutService struct {
	workouts repository.WorkoutRepository
	tx       repository.Transactor
	cache    cache.Store
	ttl      config.CacheConfig
	logger   *slog.Logger
	now      Clock
}

func NewWorkoutService(
	workouts repository.WorkoutRepository,
	tx repository.Transactor,
	store cache.Store,
	ttl config.CacheConfig,
	logger *slog.Logger,
) WorkoutService {
	return &workoutService{
		workouts: workouts,
		tx:       tx,
		cache:    store,
		ttl:      ttl,
		logger:   logger,
		now:      utcNow,
	}
}

func (s *workoutService) invalidate(userID uuid.UUID) {
	s.cache.Remove(cache.WorkoutsKey(userID))
}

// --- Validation ---

func validateExerciseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Malformed("exercise name is required")
	}
	if utf8.RuneCountInString(name) > domain.MaxExerciseNameLength {
		return "", domain.Malformed("exercise name exceeds %d characters", domain.MaxExerciseNameLength)
	}
	return name, nil
}

func validateSeries(s domain.Series) error {
	if s.Repetitions < 0 {
		return domain.Malformed("repetitions must not be negative")
	}
	if s.RPE != nil && (*s.RPE < 0 || *s.RPE > 10) {
		return domain.Malformed("rpe must be between 0 and 10")
	}
	if s.Weight != nil && *s.Weight < 0 {
		return domain.Malformed("weight must not be negative")
	}
	return nil
}

// --- Loading ---

// attach loads exercises and series for workouts and nests them in place.
func (s *workoutService) attach(ctx context.Context, workouts []domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	workoutIDs := make([]uuid.UUID, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.ID
	}
	exercises, err := s.workouts.ListExercisesByWorkouts(ctx, workoutIDs)
	if err != nil {
		return err
	}
	exerciseIDs := make([]uuid.UUID, len(exercises))
	for i, e := range exercises {
		exerciseIDs[i] = e.ID
	}
	series, err := s.workouts.ListSeriesByExercises(ctx, exerciseIDs)
	if err != nil {
		return err
	}

	seriesByExercise := make(map[uuid.UUID][]domain.Series)
	for _, sr := range series {
		seriesByExercise[sr.ExerciseID] = append(seriesByExercise[sr.ExerciseID], sr)
	}
	exercisesByWorkout := make(map[uuid.UUID][]domain.Exercise)
	for _, e := range exercises {
		e.Series = nonNil(seriesByExercise[e.ID])
		exercisesByWorkout[e.WorkoutID] = append(exercisesByWorkout[e.WorkoutID], e)
	}
	for i := range workouts {
		workouts[i].Exercises = nonNil(exercisesByWorkout[workouts[i].ID])
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ListWorkouts reads through the per-user cache entry.
func (s *workoutService) ListWorkouts(ctx context.Context, userID uuid.UUID) ([]domain.Workout, error) {
	if err := ownership.RequireIDs(userID); err != nil {
		return nil, err
	}
	key := cache.WorkoutsKey(userID)
	if cached, ok := cache.Get[[]domain.Workout](s.cache, key); ok {
		return cached, nil
	}

	workouts, err := s.workouts.ListWorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, workouts); err != nil {
		return nil, err
	}
	s.cache.Set(key, workouts, cache.Expiration{Absolute: s.ttl.WorkoutsAbsolute, Sliding: s.ttl.WorkoutsSliding})
	return workouts, nil
}

func (s *workoutService) ownedWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*domain.Workout, error) {
	if err := ownership.RequireIDs(userID, workoutID); err != nil {
		return nil, err
	}
	w, err := optional(s.workouts.GetWorkout(ctx, workoutID))
	if err != nil {
		return nil, err
	}
	if err := ownership.Workout(userID, workoutID, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *workoutService) ownedExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID) (*domain.Workout, *domain.Exercise, error) {
	if err := ownership.RequireIDs(userID, workoutID, exerciseID); err != nil {
		return nil, nil, err
	}
	w, err := optional(s.workouts.GetWorkout(ctx, workoutID))
	if err != nil {
		return nil, nil, err
	}
	e, err := optional(s.workouts.GetExercise(ctx, exerciseID))
	if err != nil {
		return nil, nil, err
	}
	if err := ownership.Exercise(userID, workoutID, exerciseID, w, e); err != nil {
		return nil, nil, err
	}
	return w, e, nil
}

func (s *workoutService) ownedSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID) (*domain.Series, error) {
	if err := ownership.RequireIDs(userID, workoutID, exerciseID, seriesID); err != nil {
		return nil, err
	}
	w, err := optional(s.workouts.GetWorkout(ctx, workoutID))
	if err != nil {
		return nil, err
	}
	e, err := optional(s.workouts.GetExercise(ctx, exerciseID))
	if err != nil {
		return nil, err
	}
	sr, err := optional(s.workouts.GetSeries(ctx, seriesID))
	if err != nil {
		return nil, err
	}
	if err := ownership.Series(userID, workoutID, exerciseID, seriesID, w, e, sr); err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*domain.Workout, error) {
	w, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	nested := []domain.Workout{*w}
	if err := s.attach(ctx, nested); err != nil {
		return nil, err
	}
	return &nested[0], nil
}

// --- Workouts ---

// CreateWorkout stores a workout together with its exercises and series.
func (s *workoutService) CreateWorkout(ctx context.Context, userID uuid.UUID, in WorkoutInput) (*domain.Workout, error) {
	if err := ownership.RequireIDs(userID); err != nil {
		return nil, err
	}
	now := s.now()
	w := domain.Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      in.Date.UTC(),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
		Exercises: []domain.Exercise{},
	}
	if in.Date.IsZero() {
		w.Date = now
	}
	for i, ein := range in.Exercises {
		name, err := validateExerciseName(ein.Name)
		if err != nil {
			return nil, err
		}
		e := domain.Exercise{ID: uuid.New(), WorkoutID: w.ID, Name: name, Position: i, Series: []domain.Series{}}
		for j, sin := range ein.Series {
			sr := domain.Series{ID: uuid.New(), ExerciseID: e.ID, Repetitions: sin.Repetitions, RPE: sin.RPE, Weight: sin.Weight, Position: j}
			if err := validateSeries(sr); err != nil {
				return nil, err
			}
			e.Series = append(e.Series, sr)
		}
		w.Exercises = append(w.Exercises, e)
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.workouts.CreateWorkout(ctx, &w); err != nil {
			return err
		}
		for i := range w.Exercises {
			if err := s.workouts.CreateExercise(ctx, &w.Exercises[i]); err != nil {
				return err
			}
			for j := range w.Exercises[i].Series {
				if err := s.workouts.CreateSeries(ctx, &w.Exercises[i].Series[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(userID)
	s.logger.Debug("workout created", "userId", userID, "workoutId", w.ID, "exercises", len(w.Exercises))
	return &w, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID uuid.UUID, update WorkoutUpdate) (*domain.Workout, error) {
	w, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if update.Date != nil {
		if update.Date.IsZero() {
			return nil, domain.Malformed("date must not be empty")
		}
		w.Date = update.Date.UTC()
	}
	if update.Notes != nil {
		w.Notes = strings.TrimSpace(*update.Notes)
	}
	w.UpdatedAt = s.now()
	if err := s.workouts.UpdateWorkout(ctx, w); err != nil {
		return nil, notFoundAs(err, domain.ErrWorkoutNotFound)
	}
	s.invalidate(userID)
	return s.GetWorkout(ctx, userID, workoutID)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID uuid.UUID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
			return err
		}
		return notFoundAs(s.workouts.DeleteWorkout(ctx, workoutID), domain.ErrWorkoutNotFound)
	})
	if err != nil {
		return err
	}
	s.invalidate(userID)
	s.logger.Debug("workout deleted", "userId", userID, "workoutId", workoutID)
	return nil
}

// --- Exercises ---

func (s *workoutService) AddExercise(ctx context.Context, userID, workoutID uuid.UUID, in ExerciseInput) (*domain.Exercise, error) {
	name, err := validateExerciseName(in.Name)
	if err != nil {
		return nil, err
	}
	var e domain.Exercise
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
			return err
		}
		siblings, err := s.workouts.ListExercisesByWorkouts(ctx, []uuid.UUID{workoutID})
		if err != nil {
			return err
		}
		e = domain.Exercise{ID: uuid.New(), WorkoutID: workoutID, Name: name, Position: len(siblings), Series: []domain.Series{}}
		for j, sin := range in.Series {
			sr := domain.Series{ID: uuid.New(), ExerciseID: e.ID, Repetitions: sin.Repetitions, RPE: sin.RPE, Weight: sin.Weight, Position: j}
			if err := validateSeries(sr); err != nil {
				return err
			}
			e.Series = append(e.Series, sr)
		}
		if err := s.workouts.CreateExercise(ctx, &e); err != nil {
			return notFoundAs(err, domain.ErrWorkoutNotFound)
		}
		for j := range e.Series {
			if err := s.workouts.CreateSeries(ctx, &e.Series[j]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return &e, nil
}

func (s *workoutService) GetExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID) (*domain.Exercise, error) {
	_, e, err := s.ownedExercise(ctx, userID, workoutID, exerciseID)
	if err != nil {
		return nil, err
	}
	series, err := s.workouts.ListSeriesByExercises(ctx, []uuid.UUID{exerciseID})
	if err != nil {
		return nil, err
	}
	e.Series = nonNil(series)
	return e, nil
}

func (s *workoutService) UpdateExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID, update ExerciseUpdate) (*domain.Exercise, error) {
	_, e, err := s.ownedExercise(ctx, userID, workoutID, exerciseID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		if e.Name, err = validateExerciseName(*update.Name); err != nil {
			return nil, err
		}
	}
	if update.Position != nil {
		if *update.Position < 0 {
			return nil, domain.Malformed("position must not be negative")
		}
		e.Position = *update.Position
	}
	if err := s.workouts.UpdateExercise(ctx, e); err != nil {
		return nil, notFoundAs(err, domain.ErrExerciseNotFound)
	}
	s.invalidate(userID)
	return s.GetExercise(ctx, userID, workoutID, exerciseID)
}

func (s *workoutService) DeleteExercise(ctx context.Context, userID, workoutID, exerciseID uuid.UUID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, _, err := s.ownedExercise(ctx, userID, workoutID, exerciseID); err != nil {
			return err
		}
		return notFoundAs(s.workouts.DeleteExercise(ctx, exerciseID), domain.ErrExerciseNotFound)
	})
	if err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// --- Series ---

func (s *workoutService) AddSeries(ctx context.Context, userID, workoutID, exerciseID uuid.UUID, in SeriesInput) (*domain.Series, error) {
	sr := domain.Series{ID: uuid.New(), ExerciseID: exerciseID, Repetitions: in.Repetitions, RPE: in.RPE, Weight: in.Weight}
	if err := validateSeries(sr); err != nil {
		return nil, err
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, _, err := s.ownedExercise(ctx, userID, workoutID, exerciseID); err != nil {
			return err
		}
		siblings, err := s.workouts.ListSeriesByExercises(ctx, []uuid.UUID{exerciseID})
		if err != nil {
			return err
		}
		sr.Position = len(siblings)
		return notFoundAs(s.workouts.CreateSeries(ctx, &sr), domain.ErrExerciseNotFound)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return &sr, nil
}

func (s *workoutService) GetSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID) (*domain.Series, error) {
	return s.ownedSeries(ctx, userID, workoutID, exerciseID, seriesID)
}

func (s *workoutService) UpdateSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID, update SeriesUpdate) (*domain.Series, error) {
	sr, err := s.ownedSeries(ctx, userID, workoutID, exerciseID, seriesID)
	if err != nil {
		return nil, err
	}
	if update.Repetitions != nil {
		sr.Repetitions = *update.Repetitions
	}
	if update.RPE != nil {
		sr.RPE = update.RPE
	}
	if update.Weight != nil {
		sr.Weight = update.Weight
	}
	if update.Position != nil {
		if *update.Position < 0 {
			return nil, domain.Malformed("position must not be negative")
		}
		sr.Position = *update.Position
	}
	if err := validateSeries(*sr); err != nil {
		return nil, err
	}
	if err := s.workouts.UpdateSeries(ctx, sr); err != nil {
		return nil, notFoundAs(err, domain.ErrSeriesNotFound)
	}
	s.invalidate(userID)
	return sr, nil
}

func (s *workoutService) DeleteSeries(ctx context.Context, userID, workoutID, exerciseID, seriesID uuid.UUID) error {
	if _, err := s.ownedSeries(ctx, userID, workoutID, exerciseID, seriesID); err != nil {
		return err
	}
	if err := s.workouts.DeleteSeries(ctx, seriesID); err != nil {
		return notFoundAs(err, domain.ErrSeriesNotFound)
	}
	s.invalidate(userID)
	return nil
}

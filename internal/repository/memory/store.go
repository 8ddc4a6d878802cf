// Package memory is an in-process implementation of the repository interfaces.
// It backs the "memory" database driver and the service tests.
package memory

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

type state struct {
	users       map[uuid.UUID]domain.User
	templates   map[uuid.UUID]domain.WorkoutTemplate
	weeks       map[uuid.UUID]domain.TemplateWeek
	tplWorkouts map[uuid.UUID]domain.TemplateWorkout
	tplExercise map[uuid.UUID]domain.TemplateExercise
	subs        map[uuid.UUID]domain.UserWorkoutTemplate
	progress    map[uuid.UUID]domain.UserExerciseProgress
	workouts    map[uuid.UUID]domain.Workout
	exercises   map[uuid.UUID]domain.Exercise
	series      map[uuid.UUID]domain.Series
}

func newState() state {
	return state{
		users:       make(map[uuid.UUID]domain.User),
		templates:   make(map[uuid.UUID]domain.WorkoutTemplate),
		weeks:       make(map[uuid.UUID]domain.TemplateWeek),
		tplWorkouts: make(map[uuid.UUID]domain.TemplateWorkout),
		tplExercise: make(map[uuid.UUID]domain.TemplateExercise),
		subs:        make(map[uuid.UUID]domain.UserWorkoutTemplate),
		progress:    make(map[uuid.UUID]domain.UserExerciseProgress),
		workouts:    make(map[uuid.UUID]domain.Workout),
		exercises:   make(map[uuid.UUID]domain.Exercise),
		series:      make(map[uuid.UUID]domain.Series),
	}
}

// Stored values are never modified in place, so a shallow copy of each map is enough.
func (s state) clone() state {
	return state{
		users:       maps.Clone(s.users),
		templates:   maps.Clone(s.templates),
		weeks:       maps.Clone(s.weeks),
		tplWorkouts: maps.Clone(s.tplWorkouts),
		tplExercise: maps.Clone(s.tplExercise),
		subs:        maps.Clone(s.subs),
		progress:    maps.Clone(s.progress),
		workouts:    maps.Clone(s.workouts),
		exercises:   maps.Clone(s.exercises),
		series:      maps.Clone(s.series),
	}
}

// Store holds every collection behind one lock. A transaction holds the lock for
// its whole duration and works on a private copy that replaces the committed
// state only when the transaction function succeeds.
type Store struct {
	mu    sync.RWMutex
	state state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

type txState struct {
	store *Store
	state *state
}

func (s *Store) txFrom(ctx context.Context) (*state, bool) {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok || tx.store != s {
		return nil, false
	}
	return tx.state, true
}

// WithTransaction implements repository.Transactor. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := s.txFrom(ctx); ok {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, &txState{store: s, state: &working})); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := s.txFrom(ctx); ok {
		return fn(st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// write applies fn to a copy so that a failing multi-row write leaves no trace.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := s.txFrom(ctx); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.state.clone()
	if err := fn(&working); err != nil {
		return err
	}
	s.state = working
	return nil
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Templates returns the catalog repository view of the store.
func (s *Store) Templates() repository.TemplateRepository { return &templateRepo{s} }

// Subscriptions returns the subscription repository view of the store.
func (s *Store) Subscriptions() repository.SubscriptionRepository { return &subscriptionRepo{s} }

// Progress returns the progress repository view of the store.
func (s *Store) Progress() repository.ProgressRepository { return &progressRepo{s} }

// Workouts returns the workout log repository view of the store.
func (s *Store) Workouts() repository.WorkoutRepository { return &workoutRepo{s} }

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

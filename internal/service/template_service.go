package service

import (
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/importer"
	"alcyxob/gymtracker/internal/ownership"
	"alcyxob/gymtracker/internal/repository"
	"alcyxob/gymtracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ImportResult is the outcome of importing one document.
type ImportResult struct {
	Template *domain.WorkoutTemplate
	Skipped  bool // A template with the same name already existed
}

// TemplateUpdate is a partial update of a template's own fields.
type TemplateUpdate struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	DurationWeeks *int    `json:"durationWeeks"`
}

// TemplateExerciseUpdate replaces the name and, when given, the whole prescription.
type TemplateExerciseUpdate struct {
	ExerciseName *string              `json:"exerciseName"`
	Prescription *domain.Prescription `json:"prescription"`
}

// TemplateExercisePath addresses one exercise through its full template path.
type TemplateExercisePath struct {
	TemplateID, WeekID, WorkoutID, ExerciseID uuid.UUID
}

// TemplateService serves the shared template catalog.
// Returned templates may be shared with the cache and must not be modified.
type TemplateService interface {
	ListTemplates(ctx context.Context, includeDetails bool) ([]domain.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID, includeDetails bool) (*domain.WorkoutTemplate, error)
	ImportTemplate(ctx context.Context, document []byte) (*ImportResult, error)
	ImportFromLocations(ctx context.Context, locations []string) ([]ImportResult, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, update TemplateUpdate) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	GetTemplateExercise(ctx context.Context, path TemplateExercisePath) (*domain.TemplateExercise, error)
	UpdateTemplateExercise(ctx context.Context, path TemplateExercisePath, update TemplateExerciseUpdate) (*domain.TemplateExercise, error)
}

type templateService struct {
	templates repository.TemplateRepository
	tx        repository.Transactor
	cache     cache.Store
	ttl       config.CacheConfig
	source    storage.DocumentSource
	logger    *slog.Logger
	now       Clock
}

// NewTemplateService creates a new catalog service. source may be nil when
// documents are only imported through ImportTemplate.
func NewTemplateService(
	templates repository.TemplateRepository,
	tx repository.Transactor,
	store cache.Store,
	ttl config.CacheConfig,
	source storage.DocumentSource,
	logger *slog.Logger,
) TemplateService {
	return &templateService{
		templates: templates,
		tx:        tx,
		cache:     store,
		ttl:       ttl,
		source:    source,
		logger:    logger,
		now:       utcNow,
	}
}

// ListTemplates reads through the catalog cache. Empty results are not cached.
func (s *templateService) ListTemplates(ctx context.Context, includeDetails bool) ([]domain.WorkoutTemplate, error) {
	key := cache.KeyAllTemplatesBasic
	if includeDetails {
		key = cache.KeyAllTemplatesDetailed
	}
	if cached, ok := cache.Get[[]domain.WorkoutTemplate](s.cache, key); ok {
		return cached, nil
	}

	var templates []domain.WorkoutTemplate
	if includeDetails {
		graphs, err := s.templates.ListGraphs(ctx)
		if err != nil {
			return nil, err
		}
		templates = make([]domain.WorkoutTemplate, len(graphs))
		for i := range graphs {
			templates[i] = graphs[i].Assemble()
		}
	} else {
		var err error
		if templates, err = s.templates.ListTemplates(ctx); err != nil {
			return nil, err
		}
	}

	if len(templates) > 0 {
		s.cache.Set(key, templates, cache.Expiration{Sliding: s.ttl.CatalogSliding})
	}
	return templates, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id uuid.UUID, includeDetails bool) (*domain.WorkoutTemplate, error) {
	if err := ownership.RequireIDs(id); err != nil {
		return nil, err
	}
	key := cache.TemplateKey(id)
	if includeDetails {
		key = cache.TemplateWithDetailsKey(id)
	}
	if cached, ok := cache.Get[domain.WorkoutTemplate](s.cache, key); ok {
		return &cached, nil
	}

	var template domain.WorkoutTemplate
	if includeDetails {
		graph, err := s.templates.GetGraph(ctx, id)
		if err != nil {
			return nil, notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
		}
		template = graph.Assemble()
	} else {
		t, err := s.templates.GetTemplate(ctx, id)
		if err != nil {
			return nil, notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
		}
		template = *t
	}

	s.cache.Set(key, template, cache.Expiration{Sliding: s.ttl.TemplateSliding})
	return &template, nil
}

// ImportTemplate creates a template graph from a document in one transaction.
// A template whose name already exists, compared case-insensitively, is left
// alone and reported as skipped.
func (s *templateService) ImportTemplate(ctx context.Context, document []byte) (*ImportResult, error) {
	parsed, err := importer.Parse(document)
	if err != nil {
		return nil, &domain.TemplateCreationError{Err: err}
	}
	name := parsed.TemplateName()

	existing, err := s.templates.GetTemplateByName(ctx, name)
	switch {
	case err == nil:
		s.logger.Info("workout template already exists, skipping import", "name", name, "templateId", existing.ID)
		return &ImportResult{Template: existing, Skipped: true}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, &domain.TemplateCreationError{Name: name, Err: err}
	}

	var graph domain.TemplateGraph
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Ids are generated per attempt so a retried transaction starts clean.
		graph = importer.BuildGraph(parsed, s.now())
		return s.createGraph(ctx, &graph)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = domain.ErrTemplateNameExists
		}
		s.logger.Error("workout template import failed", "name", name, "error", err)
		return nil, &domain.TemplateCreationError{Name: name, Err: err}
	}

	s.cache.Remove(cache.KeyAllTemplatesBasic, cache.KeyAllTemplatesDetailed)

	template := graph.Assemble()
	s.logger.Info("workout template imported", "name", name, "templateId", template.ID,
		"weeks", len(graph.Weeks), "workouts", len(graph.Workouts), "exercises", len(graph.Exercises))
	return &ImportResult{Template: &template}, nil
}

func (s *templateService) createGraph(ctx context.Context, g *domain.TemplateGraph) error {
	if err := s.templates.CreateTemplate(ctx, &g.Template); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	for i := range g.Weeks {
		if err := s.templates.CreateWeek(ctx, &g.Weeks[i]); err != nil {
			return fmt.Errorf("create week %d: %w", g.Weeks[i].WeekNumber, err)
		}
	}
	for i := range g.Workouts {
		if err := s.templates.CreateWorkout(ctx, &g.Workouts[i]); err != nil {
			return fmt.Errorf("create workout %q: %w", g.Workouts[i].Name, err)
		}
	}
	for i := range g.Exercises {
		if err := s.templates.CreateExercise(ctx, &g.Exercises[i]); err != nil {
			return fmt.Errorf("create exercise %q: %w", g.Exercises[i].ExerciseName, err)
		}
	}
	return nil
}

// ImportFromLocations imports every document it can read. Missing documents are
// logged and skipped; other failures are collected and returned together.
func (s *templateService) ImportFromLocations(ctx context.Context, locations []string) ([]ImportResult, error) {
	if s.source == nil {
		return nil, errors.New("no document source configured")
	}
	var results []ImportResult
	var errs []error
	for _, location := range locations {
		data, err := s.source.ReadDocument(ctx, location)
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("template document not found, skipping", "location", location)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", location, err))
			continue
		}
		result, err := s.ImportTemplate(ctx, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", location, err))
			continue
		}
		results = append(results, *result)
	}
	return results, errors.Join(errs...)
}

func (s *templateService) UpdateTemplate(ctx context.Context, id uuid.UUID, update TemplateUpdate) (*domain.WorkoutTemplate, error) {
	if err := ownership.RequireIDs(id); err != nil {
		return nil, err
	}

	var updated *domain.WorkoutTemplate
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		graph, err := s.templates.GetGraph(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
		}
		t := graph.Template
		if update.Name != nil {
			t.Name = strings.TrimSpace(*update.Name)
		}
		if update.Description != nil {
			t.Description = strings.TrimSpace(*update.Description)
		}
		if update.DurationWeeks != nil {
			t.DurationWeeks = *update.DurationWeeks
		}
		if err := validateTemplate(t, graph.Weeks); err != nil {
			return err
		}
		t.UpdatedAt = s.now()
		if err := s.templates.UpdateTemplate(ctx, &t); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.ErrTemplateNameExists
			}
			return notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
		}
		updated = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Remove(cache.TemplateKeys(id)...)
	return updated, nil
}

func validateTemplate(t domain.WorkoutTemplate, weeks []domain.TemplateWeek) error {
	if t.Name == "" {
		return domain.Malformed("name is required")
	}
	if utf8.RuneCountInString(t.Name) > domain.MaxTemplateNameLength {
		return domain.Malformed("name exceeds %d characters", domain.MaxTemplateNameLength)
	}
	if t.Description == "" {
		return domain.Malformed("description is required")
	}
	if utf8.RuneCountInString(t.Description) > domain.MaxTemplateDescriptionLength {
		return domain.Malformed("description exceeds %d characters", domain.MaxTemplateDescriptionLength)
	}
	if t.DurationWeeks < 1 {
		return domain.Malformed("durationWeeks must be at least 1")
	}
	for _, w := range weeks {
		if w.WeekNumber > t.DurationWeeks {
			return domain.Malformed("durationWeeks %d is shorter than existing week %d", t.DurationWeeks, w.WeekNumber)
		}
	}
	return nil
}

// DeleteTemplate removes a template with all of its weeks, workouts and exercises.
// Templates with subscribers cannot be deleted.
func (s *templateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := ownership.RequireIDs(id); err != nil {
		return err
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.templates.DeleteTemplate(ctx, id)
	})
	switch {
	case errors.Is(err, repository.ErrReferenced):
		return domain.ErrTemplateInUse
	case err != nil:
		return notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
	}

	s.cache.Remove(cache.TemplateKeys(id)...)
	s.logger.Info("workout template deleted", "templateId", id)
	return nil
}

// loadPath fetches every entity of a template path and checks the chain.
func (s *templateService) loadPath(ctx context.Context, p TemplateExercisePath) (*domain.TemplateExercise, error) {
	if err := ownership.RequireIDs(p.TemplateID, p.WeekID, p.WorkoutID, p.ExerciseID); err != nil {
		return nil, err
	}
	chain := ownership.TemplatePath{
		TemplateID: p.TemplateID, WeekID: p.WeekID, WorkoutID: p.WorkoutID, ExerciseID: p.ExerciseID,
	}
	var err error
	if chain.Template, err = optional(s.templates.GetTemplate(ctx, p.TemplateID)); err != nil {
		return nil, err
	}
	if chain.Week, err = optional(s.templates.GetWeek(ctx, p.WeekID)); err != nil {
		return nil, err
	}
	if chain.Workout, err = optional(s.templates.GetWorkout(ctx, p.WorkoutID)); err != nil {
		return nil, err
	}
	if chain.Exercise, err = optional(s.templates.GetExercise(ctx, p.ExerciseID)); err != nil {
		return nil, err
	}
	if err := ownership.TemplateExercise(chain); err != nil {
		return nil, err
	}
	return chain.Exercise, nil
}

func (s *templateService) GetTemplateExercise(ctx context.Context, path TemplateExercisePath) (*domain.TemplateExercise, error) {
	return s.loadPath(ctx, path)
}

func (s *templateService) UpdateTemplateExercise(ctx context.Context, path TemplateExercisePath, update TemplateExerciseUpdate) (*domain.TemplateExercise, error) {
	var updated *domain.TemplateExercise
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ex, err := s.loadPath(ctx, path)
		if err != nil {
			return err
		}
		if update.ExerciseName != nil {
			name := strings.TrimSpace(*update.ExerciseName)
			if name == "" {
				return domain.Malformed("exerciseName is required")
			}
			if utf8.RuneCountInString(name) > domain.MaxExerciseNameLength {
				return domain.Malformed("exerciseName exceeds %d characters", domain.MaxExerciseNameLength)
			}
			ex.ExerciseName = name
		}
		if update.Prescription != nil {
			ex.Prescription = *update.Prescription
		}
		if err := s.templates.UpdateExercise(ctx, ex); err != nil {
			return notFoundAs(err, domain.ErrTemplateExerciseNotFound)
		}
		updated = ex
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Remove(cache.TemplateKeys(path.TemplateID)...)
	return updated, nil
}

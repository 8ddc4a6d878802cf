// internal/repository/mongo/template_repo.go
package mongo

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	templateCollectionName         = "workout_templates"
	templateWeekCollectionName     = "template_weeks"
	templateWorkoutCollectionName  = "template_workouts"
	templateExerciseCollectionName = "template_exercises"
)

// mongoTemplateRepository keeps each catalog level in its own collection,
// linked by parent id fields.
type mongoTemplateRepository struct {
	templates     *mongo.Collection
	weeks         *mongo.Collection
	workouts      *mongo.Collection
	exercises     *mongo.Collection
	subscriptions *mongo.Collection
}

// NewMongoTemplateRepository creates a new catalog repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		templates:     db.Collection(templateCollectionName),
		weeks:         db.Collection(templateWeekCollectionName),
		workouts:      db.Collection(templateWorkoutCollectionName),
		exercises:     db.Collection(templateExerciseCollectionName),
		subscriptions: db.Collection(subscriptionCollectionName),
	}
}

func (r *mongoTemplateRepository) CreateTemplate(ctx context.Context, t *domain.WorkoutTemplate) error {
	t.NameLower = strings.ToLower(t.Name)
	_, err := r.templates.InsertOne(ctx, t)
	return translate(err)
}

func (r *mongoTemplateRepository) CreateWeek(ctx context.Context, w *domain.TemplateWeek) error {
	_, err := r.weeks.InsertOne(ctx, w)
	return translate(err)
}

func (r *mongoTemplateRepository) CreateWorkout(ctx context.Context, w *domain.TemplateWorkout) error {
	_, err := r.workouts.InsertOne(ctx, w)
	return translate(err)
}

func (r *mongoTemplateRepository) CreateExercise(ctx context.Context, e *domain.TemplateExercise) error {
	_, err := r.exercises.InsertOne(ctx, e)
	return translate(err)
}

func (r *mongoTemplateRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.WorkoutTemplate, error) {
	var t domain.WorkoutTemplate
	if err := r.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// GetTemplateByName matches on the stored lower-cased name.
func (r *mongoTemplateRepository) GetTemplateByName(ctx context.Context, name string) (*domain.WorkoutTemplate, error) {
	var t domain.WorkoutTemplate
	if err := r.templates.FindOne(ctx, bson.M{"nameLower": strings.ToLower(name)}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *mongoTemplateRepository) ListTemplates(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	templates := []domain.WorkoutTemplate{}
	if err := findAll(ctx, r.templates, bson.M{}, bson.D{{Key: "nameLower", Value: 1}}, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *mongoTemplateRepository) GetGraph(ctx context.Context, templateID uuid.UUID) (*domain.TemplateGraph, error) {
	t, err := r.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	graphs, err := r.loadGraphs(ctx, []domain.WorkoutTemplate{*t})
	if err != nil {
		return nil, err
	}
	return &graphs[0], nil
}

func (r *mongoTemplateRepository) ListGraphs(ctx context.Context) ([]domain.TemplateGraph, error) {
	templates, err := r.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return []domain.TemplateGraph{}, nil
	}
	return r.loadGraphs(ctx, templates)
}

// loadGraphs fetches the descendants of templates with one query per level.
func (r *mongoTemplateRepository) loadGraphs(ctx context.Context, templates []domain.WorkoutTemplate) ([]domain.TemplateGraph, error) {
	templateIDs := make([]uuid.UUID, len(templates))
	for i, t := range templates {
		templateIDs[i] = t.ID
	}

	var weeks []domain.TemplateWeek
	if err := findAll(ctx, r.weeks, bson.M{"workoutTemplateId": bson.M{"$in": templateIDs}},
		bson.D{{Key: "weekNumber", Value: 1}}, &weeks); err != nil {
		return nil, err
	}
	weekIDs := make([]uuid.UUID, len(weeks))
	weekOwner := make(map[uuid.UUID]uuid.UUID, len(weeks))
	for i, w := range weeks {
		weekIDs[i] = w.ID
		weekOwner[w.ID] = w.WorkoutTemplateID
	}

	var workouts []domain.TemplateWorkout
	if err := findAll(ctx, r.workouts, bson.M{"templateWeekId": bson.M{"$in": weekIDs}},
		bson.D{{Key: "sequence", Value: 1}}, &workouts); err != nil {
		return nil, err
	}
	workoutIDs := make([]uuid.UUID, len(workouts))
	workoutOwner := make(map[uuid.UUID]uuid.UUID, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.ID
		workoutOwner[w.ID] = weekOwner[w.TemplateWeekID]
	}

	var exercises []domain.TemplateExercise
	if err := findAll(ctx, r.exercises, bson.M{"templateWorkoutId": bson.M{"$in": workoutIDs}},
		bson.D{{Key: "sequence", Value: 1}}, &exercises); err != nil {
		return nil, err
	}

	graphs := make([]domain.TemplateGraph, len(templates))
	index := make(map[uuid.UUID]int, len(templates))
	for i, t := range templates {
		graphs[i].Template = t
		index[t.ID] = i
	}
	for _, w := range weeks {
		g := &graphs[index[w.WorkoutTemplateID]]
		g.Weeks = append(g.Weeks, w)
	}
	for _, w := range workouts {
		g := &graphs[index[weekOwner[w.TemplateWeekID]]]
		g.Workouts = append(g.Workouts, w)
	}
	for _, e := range exercises {
		g := &graphs[index[workoutOwner[e.TemplateWorkoutID]]]
		g.Exercises = append(g.Exercises, e)
	}
	return graphs, nil
}

func (r *mongoTemplateRepository) GetWeek(ctx context.Context, id uuid.UUID) (*domain.TemplateWeek, error) {
	var w domain.TemplateWeek
	if err := r.weeks.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *mongoTemplateRepository) GetWorkout(ctx context.Context, id uuid.UUID) (*domain.TemplateWorkout, error) {
	var w domain.TemplateWorkout
	if err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *mongoTemplateRepository) GetExercise(ctx context.Context, id uuid.UUID) (*domain.TemplateExercise, error) {
	var e domain.TemplateExercise
	if err := r.exercises.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *mongoTemplateRepository) UpdateTemplate(ctx context.Context, t *domain.WorkoutTemplate) error {
	t.NameLower = strings.ToLower(t.Name)
	update := bson.M{
		"$set": bson.M{
			"name":          t.Name,
			"nameLower":     t.NameLower,
			"description":   t.Description,
			"durationWeeks": t.DurationWeeks,
			"updatedAt":     t.UpdatedAt,
		},
	}
	result, err := r.templates.UpdateOne(ctx, bson.M{"_id": t.ID}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTemplateRepository) UpdateExercise(ctx context.Context, e *domain.TemplateExercise) error {
	update := bson.M{
		"$set": bson.M{
			"exerciseName": e.ExerciseName,
			"sequence":     e.Sequence,
			"prescription": e.Prescription,
		},
	}
	result, err := r.exercises.UpdateOne(ctx, bson.M{"_id": e.ID}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteTemplate cascades at application level; run it inside a transaction.
func (r *mongoTemplateRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetTemplate(ctx, id); err != nil {
		return err
	}
	subscribed, err := r.subscriptions.CountDocuments(ctx, bson.M{"workoutTemplateId": id})
	if err != nil {
		return err
	}
	if subscribed > 0 {
		return repository.ErrReferenced
	}

	graph, err := r.GetGraph(ctx, id)
	if err != nil {
		return err
	}
	workoutIDs := make([]uuid.UUID, len(graph.Workouts))
	for i, w := range graph.Workouts {
		workoutIDs[i] = w.ID
	}
	weekIDs := make([]uuid.UUID, len(graph.Weeks))
	for i, w := range graph.Weeks {
		weekIDs[i] = w.ID
	}

	if _, err := r.exercises.DeleteMany(ctx, bson.M{"templateWorkoutId": bson.M{"$in": workoutIDs}}); err != nil {
		return err
	}
	if _, err := r.workouts.DeleteMany(ctx, bson.M{"templateWeekId": bson.M{"$in": weekIDs}}); err != nil {
		return err
	}
	if _, err := r.weeks.DeleteMany(ctx, bson.M{"workoutTemplateId": id}); err != nil {
		return err
	}
	_, err = r.templates.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureTemplateIndexes creates the catalog indexes. The unique nameLower index
// makes concurrent imports of the same name fail with a duplicate key error.
func EnsureTemplateIndexes(ctx context.Context, db *mongo.Database) error {
	if err := createIndexes(ctx, db.Collection(templateCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "nameLower", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return err
	}
	if err := createIndexes(ctx, db.Collection(templateWeekCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutTemplateId", Value: 1}, {Key: "weekNumber", Value: 1}}},
	}); err != nil {
		return err
	}
	if err := createIndexes(ctx, db.Collection(templateWorkoutCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "templateWeekId", Value: 1}, {Key: "sequence", Value: 1}}},
	}); err != nil {
		return err
	}
	return createIndexes(ctx, db.Collection(templateExerciseCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "templateWorkoutId", Value: 1}, {Key: "sequence", Value: 1}}},
	})
}

// findAll runs a sorted Find and decodes every document into results.
func findAll(ctx context.Context, collection *mongo.Collection, filter interface{}, sort bson.D, results interface{}) error {
	cursor, err := collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, results); err != nil {
		return err
	}
	return cursor.Err()
}

// internal/repository/mongo/workout_repo.go
package mongo

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	workoutCollectionName  = "workouts"
	exerciseCollectionName = "exercises"
	seriesCollectionName   = "series"
)

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	workouts  *mongo.Collection
	exercises *mongo.Collection
	series    *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		workouts:  db.Collection(workoutCollectionName),
		exercises: db.Collection(exerciseCollectionName),
		series:    db.Collection(seriesCollectionName),
	}
}

func (r *mongoWorkoutRepository) CreateWorkout(ctx context.Context, workout *domain.Workout) error {
	_, err := r.workouts.InsertOne(ctx, workout)
	return translate(err)
}

// GetWorkout retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetWorkout(ctx context.Context, id uuid.UUID) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, translate(err)
	}
	return &workout, nil
}

// ListWorkoutsByUser returns the user's workouts, newest first.
func (r *mongoWorkoutRepository) ListWorkoutsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	sort := bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}
	if err := findAll(ctx, r.workouts, bson.M{"userId": userID}, sort, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) UpdateWorkout(ctx context.Context, workout *domain.Workout) error {
	update := bson.M{
		"$set": bson.M{
			"date":      workout.Date,
			"notes":     workout.Notes,
			"updatedAt": workout.UpdatedAt,
		},
	}
	return matchOne(r.workouts.UpdateOne(ctx, bson.M{"_id": workout.ID}, update))
}

// DeleteWorkout cascades to exercises and series; run it inside a transaction.
func (r *mongoWorkoutRepository) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	exercises, err := r.ListExercisesByWorkouts(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	exerciseIDs := make([]uuid.UUID, len(exercises))
	for i, e := range exercises {
		exerciseIDs[i] = e.ID
	}
	if _, err := r.series.DeleteMany(ctx, bson.M{"exerciseId": bson.M{"$in": exerciseIDs}}); err != nil {
		return err
	}
	if _, err := r.exercises.DeleteMany(ctx, bson.M{"workoutId": id}); err != nil {
		return err
	}
	return deletedOne(r.workouts.DeleteOne(ctx, bson.M{"_id": id}))
}

func (r *mongoWorkoutRepository) CreateExercise(ctx context.Context, exercise *domain.Exercise) error {
	_, err := r.exercises.InsertOne(ctx, exercise)
	return translate(err)
}

func (r *mongoWorkoutRepository) GetExercise(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := r.exercises.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise); err != nil {
		return nil, translate(err)
	}
	return &exercise, nil
}

func (r *mongoWorkoutRepository) ListExercisesByWorkouts(ctx context.Context, workoutIDs []uuid.UUID) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	filter := bson.M{"workoutId": bson.M{"$in": workoutIDs}}
	if err := findAll(ctx, r.exercises, filter, bson.D{{Key: "position", Value: 1}}, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *mongoWorkoutRepository) UpdateExercise(ctx context.Context, exercise *domain.Exercise) error {
	update := bson.M{"$set": bson.M{"name": exercise.Name, "position": exercise.Position}}
	return matchOne(r.exercises.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update))
}

// DeleteExercise cascades to series; run it inside a transaction.
func (r *mongoWorkoutRepository) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	if _, err := r.series.DeleteMany(ctx, bson.M{"exerciseId": id}); err != nil {
		return err
	}
	return deletedOne(r.exercises.DeleteOne(ctx, bson.M{"_id": id}))
}

func (r *mongoWorkoutRepository) CreateSeries(ctx context.Context, series *domain.Series) error {
	_, err := r.series.InsertOne(ctx, series)
	return translate(err)
}

func (r *mongoWorkoutRepository) GetSeries(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	var series domain.Series
	if err := r.series.FindOne(ctx, bson.M{"_id": id}).Decode(&series); err != nil {
		return nil, translate(err)
	}
	return &series, nil
}

func (r *mongoWorkoutRepository) ListSeriesByExercises(ctx context.Context, exerciseIDs []uuid.UUID) ([]domain.Series, error) {
	series := []domain.Series{}
	filter := bson.M{"exerciseId": bson.M{"$in": exerciseIDs}}
	if err := findAll(ctx, r.series, filter, bson.D{{Key: "position", Value: 1}}, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func (r *mongoWorkoutRepository) UpdateSeries(ctx context.Context, series *domain.Series) error {
	update := bson.M{
		"$set": bson.M{
			"repetitions": series.Repetitions,
			"rpe":         series.RPE,
			"weight":      series.Weight,
			"position":    series.Position,
		},
	}
	return matchOne(r.series.UpdateOne(ctx, bson.M{"_id": series.ID}, update))
}

func (r *mongoWorkoutRepository) DeleteSeries(ctx context.Context, id uuid.UUID) error {
	return deletedOne(r.series.DeleteOne(ctx, bson.M{"_id": id}))
}

// EnsureWorkoutIndexes creates the parent id indexes of the workout log.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	if err := createIndexes(ctx, db.Collection(workoutCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
	}); err != nil {
		return err
	}
	if err := createIndexes(ctx, db.Collection(exerciseCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "position", Value: 1}}},
	}); err != nil {
		return err
	}
	return createIndexes(ctx, db.Collection(seriesCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "exerciseId", Value: 1}, {Key: "position", Value: 1}}},
	})
}

func matchOne(result *mongo.UpdateResult, err error) error {
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deletedOne(result *mongo.DeleteResult, err error) error {
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

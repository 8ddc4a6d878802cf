package mongo

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "user_exercise_progress"

type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new progress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

func (r *mongoProgressRepository) Create(ctx context.Context, p *domain.UserExerciseProgress) error {
	_, err := r.collection.InsertOne(ctx, p)
	return translate(err)
}

func (r *mongoProgressRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserExerciseProgress, error) {
	var p domain.UserExerciseProgress
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoProgressRepository) GetBySubscriptionAndExercise(ctx context.Context, subscriptionID, templateExerciseID uuid.UUID) (*domain.UserExerciseProgress, error) {
	var p domain.UserExerciseProgress
	filter := bson.M{"userWorkoutTemplateId": subscriptionID, "templateExerciseId": templateExerciseID}
	if err := r.collection.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoProgressRepository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]domain.UserExerciseProgress, error) {
	rows := []domain.UserExerciseProgress{}
	if err := findAll(ctx, r.collection, bson.M{"userWorkoutTemplateId": subscriptionID}, bson.D{{Key: "_id", Value: 1}}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update overwrites the mutable fields; the (subscription, exercise) pair never changes.
func (r *mongoProgressRepository) Update(ctx context.Context, p *domain.UserExerciseProgress) error {
	update := bson.M{
		"$set": bson.M{
			"set1Reps":         p.Set1Reps,
			"set2Reps":         p.Set2Reps,
			"set3Reps":         p.Set3Reps,
			"set4Reps":         p.Set4Reps,
			"workoutCompleted": p.WorkoutCompleted,
			"completionDate":   p.CompletionDate,
			"updatedAt":        p.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgressRepository) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userWorkoutTemplateId": subscriptionID})
	return err
}

// EnsureProgressIndexes enforces one progress row per (subscription, template exercise).
func EnsureProgressIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection(progressCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userWorkoutTemplateId", Value: 1}, {Key: "templateExerciseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "templateExerciseId", Value: 1}},
		},
	})
}

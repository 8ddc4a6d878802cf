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

const subscriptionCollectionName = "user_workout_templates"

type mongoSubscriptionRepository struct {
	collection *mongo.Collection
	progress   *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new subscription repository.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
		progress:   db.Collection(progressCollectionName),
	}
}

func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.UserWorkoutTemplate) error {
	_, err := r.collection.InsertOne(ctx, sub)
	return translate(err)
}

func (r *mongoSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	var sub domain.UserWorkoutTemplate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepository) GetByUserAndTemplate(ctx context.Context, userID, templateID uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	var sub domain.UserWorkoutTemplate
	filter := bson.M{"userId": userID, "workoutTemplateId": templateID}
	if err := r.collection.FindOne(ctx, filter).Decode(&sub); err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserWorkoutTemplate, error) {
	subs := []domain.UserWorkoutTemplate{}
	if err := findAll(ctx, r.collection, bson.M{"userId": userID}, bson.D{{Key: "startDate", Value: 1}}, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *mongoSubscriptionRepository) CountByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"workoutTemplateId": templateID})
}

// Delete removes the subscription and its progress rows; run it inside a transaction.
func (r *mongoSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.progress.DeleteMany(ctx, bson.M{"userWorkoutTemplateId": id}); err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSubscriptionIndexes enforces one subscription per (user, template).
func EnsureSubscriptionIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection(subscriptionCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "workoutTemplateId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "workoutTemplateId", Value: 1}},
		},
	})
}

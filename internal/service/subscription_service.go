package service

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/ownership"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SubscriptionService manages which templates a user follows.
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, templateID uuid.UUID, startDate time.Time) (*domain.UserWorkoutTemplate, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.UserWorkoutTemplate, error)
	GetSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*domain.UserWorkoutTemplate, error)
	// Unsubscribe removes the subscription and all progress logged under it.
	Unsubscribe(ctx context.Context, userID, subscriptionID uuid.UUID) error
}

type subscriptionService struct {
	users         repository.UserRepository
	templates     repository.TemplateRepository
	subscriptions repository.SubscriptionRepository
	tx            repository.Transactor
	logger        *slog.Logger
	now           Clock
}

func NewSubscriptionService(
	users repository.UserRepository,
	templates repository.TemplateRepository,
	subscriptions repository.SubscriptionRepository,
	tx repository.Transactor,
	logger *slog.Logger,
) SubscriptionService {
	return &subscriptionService{
		users:         users,
		templates:     templates,
		subscriptions: subscriptions,
		tx:            tx,
		logger:        logger,
		now:           utcNow,
	}
}

// Subscribe starts a subscription; a zero startDate means today.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, templateID uuid.UUID, startDate time.Time) (*domain.UserWorkoutTemplate, error) {
	if err := ownership.RequireIDs(userID, templateID); err != nil {
		return nil, err
	}
	user, err := optional(s.users.GetByID(ctx, userID))
	if err != nil {
		return nil, err
	}
	if err := ownership.User(userID, user); err != nil {
		return nil, err
	}
	if _, err := s.templates.GetTemplate(ctx, templateID); err != nil {
		return nil, notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
	}

	// Fast path; the unique (user, template) index settles concurrent requests.
	if _, err := s.subscriptions.GetByUserAndTemplate(ctx, userID, templateID); err == nil {
		return nil, domain.ErrAlreadySubscribed
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	if startDate.IsZero() {
		startDate = now.Truncate(24 * time.Hour)
	}
	sub := &domain.UserWorkoutTemplate{
		ID:                uuid.New(),
		UserID:            userID,
		WorkoutTemplateID: templateID,
		StartDate:         startDate.UTC(),
		CreatedAt:         now,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, notFoundAs(err, domain.ErrWorkoutTemplateNotFound)
	}
	s.logger.Info("user subscribed to workout template", "userId", userID, "templateId", templateID, "subscriptionId", sub.ID)
	return sub, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.UserWorkoutTemplate, error) {
	if err := ownership.RequireIDs(userID); err != nil {
		return nil, err
	}
	return s.subscriptions.ListByUser(ctx, userID)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*domain.UserWorkoutTemplate, error) {
	if err := ownership.RequireIDs(userID, subscriptionID); err != nil {
		return nil, err
	}
	sub, err := optional(s.subscriptions.GetByID(ctx, subscriptionID))
	if err != nil {
		return nil, err
	}
	if err := ownership.Subscription(userID, subscriptionID, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetSubscription(ctx, userID, subscriptionID); err != nil {
			return err
		}
		return notFoundAs(s.subscriptions.Delete(ctx, subscriptionID), domain.ErrUserWorkoutTemplateNotFound)
	})
}

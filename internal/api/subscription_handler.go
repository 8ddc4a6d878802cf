package api

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/service"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionHandler serves a user's template subscriptions and their progress rows.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	progressService     service.ProgressService
	logger              *slog.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, progressService service.ProgressService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, progressService: progressService, logger: logger}
}

// SubscribeRequest accepts startDate as RFC 3339 or YYYY-MM-DD; empty means today.
type SubscribeRequest struct {
	TemplateID uuid.UUID `json:"templateId"`
	StartDate  string    `json:"startDate"`
}

type SubscriptionResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	WorkoutTemplateID string    `json:"workoutTemplateId"`
	StartDate         time.Time `json:"startDate"`
	CreatedAt         time.Time `json:"createdAt"`
}

func MapSubscriptionToResponse(sub *domain.UserWorkoutTemplate) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                sub.ID.String(),
		UserID:            sub.UserID.String(),
		WorkoutTemplateID: sub.WorkoutTemplateID.String(),
		StartDate:         sub.StartDate,
		CreatedAt:         sub.CreatedAt,
	}
}

func MapSubscriptionsToResponse(subs []domain.UserWorkoutTemplate) []SubscriptionResponse {
	responses := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = MapSubscriptionToResponse(&subs[i])
	}
	return responses
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, domain.Malformed("startDate must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}

// Subscribe handles POST /subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, req.TemplateID, startDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapSubscriptionToResponse(sub))
}

// ListSubscriptions handles GET /subscriptions
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSubscriptionsToResponse(subs))
}

func (h *SubscriptionHandler) userAndSubscription(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	subID, err := uuidParam(c, "subscriptionId")
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, subID, true
}

// GetSubscription handles GET /subscriptions/:subscriptionId
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, subID, ok := h.userAndSubscription(c)
	if !ok {
		return
	}
	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), userID, subID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSubscriptionToResponse(sub))
}

// Unsubscribe handles DELETE /subscriptions/:subscriptionId
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID, subID, ok := h.userAndSubscription(c)
	if !ok {
		return
	}
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, subID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProgress handles GET /subscriptions/:subscriptionId/progress
func (h *SubscriptionHandler) ListProgress(c *gin.Context) {
	userID, subID, ok := h.userAndSubscription(c)
	if !ok {
		return
	}
	rows, err := h.progressService.ListProgress(c.Request.Context(), userID, subID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressListToResponse(rows))
}

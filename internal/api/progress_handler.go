package api

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/service"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProgressHandler serves per-exercise progress of subscriptions.
type ProgressHandler struct {
	progressService service.ProgressService
	logger          *slog.Logger
}

func NewProgressHandler(progressService service.ProgressService, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, logger: logger}
}

type LogProgressRequest struct {
	UserWorkoutTemplateID uuid.UUID             `json:"userWorkoutTemplateId"`
	TemplateExerciseID    uuid.UUID             `json:"templateExerciseId"`
	Progress              domain.ProgressUpdate `json:"progress"`
}

type ProgressResponse struct {
	ID                    string     `json:"id"`
	UserWorkoutTemplateID string     `json:"userWorkoutTemplateId"`
	TemplateExerciseID    string     `json:"templateExerciseId"`
	Set1Reps              *int       `json:"set1Reps"`
	Set2Reps              *int       `json:"set2Reps"`
	Set3Reps              *int       `json:"set3Reps"`
	Set4Reps              *int       `json:"set4Reps"`
	WorkoutCompleted      bool       `json:"workoutCompleted"`
	CompletionDate        *time.Time `json:"completionDate"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func MapProgressToResponse(p *domain.UserExerciseProgress) ProgressResponse {
	return ProgressResponse{
		ID:                    p.ID.String(),
		UserWorkoutTemplateID: p.UserWorkoutTemplateID.String(),
		TemplateExerciseID:    p.TemplateExerciseID.String(),
		Set1Reps:              p.Set1Reps,
		Set2Reps:              p.Set2Reps,
		Set3Reps:              p.Set3Reps,
		Set4Reps:              p.Set4Reps,
		WorkoutCompleted:      p.WorkoutCompleted,
		CompletionDate:        p.CompletionDate,
		UpdatedAt:             p.UpdatedAt,
	}
}

func MapProgressListToResponse(rows []domain.UserExerciseProgress) []ProgressResponse {
	responses := make([]ProgressResponse, len(rows))
	for i := range rows {
		responses[i] = MapProgressToResponse(&rows[i])
	}
	return responses
}

// LogProgress handles POST /progress/log. 201 when the row was created, 200 when updated.
func (h *ProgressHandler) LogProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req LogProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	p, created, err := h.progressService.LogProgress(c.Request.Context(), userID, req.UserWorkoutTemplateID, req.TemplateExerciseID, req.Progress)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, MapProgressToResponse(p))
}

func (h *ProgressHandler) userAndProgress(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	progressID, err := uuidParam(c, "progressId")
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, progressID, true
}

func (h *ProgressHandler) reply(c *gin.Context, p *domain.UserExerciseProgress, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressToResponse(p))
}

// GetProgress handles GET /progress/:progressId
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, progressID, ok := h.userAndProgress(c)
	if !ok {
		return
	}
	p, err := h.progressService.GetProgress(c.Request.Context(), userID, progressID)
	h.reply(c, p, err)
}

// UpdateProgress handles PUT /progress/:progressId with a partial progress body.
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	userID, progressID, ok := h.userAndProgress(c)
	if !ok {
		return
	}
	var req domain.ProgressUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	p, err := h.progressService.UpdateProgress(c.Request.Context(), userID, progressID, req)
	h.reply(c, p, err)
}

// MarkCompleted handles PUT /progress/:progressId/complete. The body is a bare JSON boolean.
func (h *ProgressHandler) MarkCompleted(c *gin.Context) {
	userID, progressID, ok := h.userAndProgress(c)
	if !ok {
		return
	}
	var completed *bool
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = json.Unmarshal(body, &completed)
	}
	if err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	if completed == nil {
		respondError(c, h.logger, domain.Malformed("body must be true or false"))
		return
	}
	p, err := h.progressService.MarkCompleted(c.Request.Context(), userID, progressID, *completed)
	h.reply(c, p, err)
}

// ResetProgress handles PUT /progress/:progressId/reset
func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	userID, progressID, ok := h.userAndProgress(c)
	if !ok {
		return
	}
	p, err := h.progressService.ResetProgress(c.Request.Context(), userID, progressID)
	h.reply(c, p, err)
}

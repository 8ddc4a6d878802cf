package api

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/service"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const maxDocumentBytes = 1 << 20

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	templateService service.TemplateService
	logger          *slog.Logger
}

func NewTemplateHandler(templateService service.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, logger: logger}
}

// --- DTOs ---

type TemplateExerciseResponse struct {
	ID                string              `json:"id"`
	TemplateWorkoutID string              `json:"templateWorkoutId"`
	ExerciseName      string              `json:"exerciseName"`
	Sequence          int                 `json:"sequence"`
	Prescription      domain.Prescription `json:"prescription"`
}

type TemplateWorkoutResponse struct {
	ID             string                     `json:"id"`
	TemplateWeekID string                     `json:"templateWeekId"`
	Name           string                     `json:"name"`
	Sequence       int                        `json:"sequence"`
	Exercises      []TemplateExerciseResponse `json:"templateExercises"`
}

type TemplateWeekResponse struct {
	ID         string                    `json:"id"`
	WeekNumber int                       `json:"weekNumber"`
	Workouts   []TemplateWorkoutResponse `json:"templateWorkouts"`
}

// TemplateResponse carries templateWeeks only for detailed reads.
type TemplateResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	DurationWeeks int                    `json:"durationWeeks"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Weeks         []TemplateWeekResponse `json:"templateWeeks,omitempty"`
}

type ImportResponse struct {
	Template TemplateResponse `json:"template"`
	Skipped  bool             `json:"skipped"`
}

func MapTemplateExerciseToResponse(ex *domain.TemplateExercise) TemplateExerciseResponse {
	return TemplateExerciseResponse{
		ID:                ex.ID.String(),
		TemplateWorkoutID: ex.TemplateWorkoutID.String(),
		ExerciseName:      ex.ExerciseName,
		Sequence:          ex.Sequence,
		Prescription:      ex.Prescription,
	}
}

func MapTemplateToResponse(t *domain.WorkoutTemplate) TemplateResponse {
	resp := TemplateResponse{
		ID:            t.ID.String(),
		Name:          t.Name,
		Description:   t.Description,
		DurationWeeks: t.DurationWeeks,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for _, week := range t.Weeks {
		weekResp := TemplateWeekResponse{
			ID:         week.ID.String(),
			WeekNumber: week.WeekNumber,
			Workouts:   make([]TemplateWorkoutResponse, 0, len(week.Workouts)),
		}
		for _, w := range week.Workouts {
			workoutResp := TemplateWorkoutResponse{
				ID:             w.ID.String(),
				TemplateWeekID: w.TemplateWeekID.String(),
				Name:           w.Name,
				Sequence:       w.Sequence,
				Exercises:      make([]TemplateExerciseResponse, 0, len(w.Exercises)),
			}
			for i := range w.Exercises {
				workoutResp.Exercises = append(workoutResp.Exercises, MapTemplateExerciseToResponse(&w.Exercises[i]))
			}
			weekResp.Workouts = append(weekResp.Workouts, workoutResp)
		}
		resp.Weeks = append(resp.Weeks, weekResp)
	}
	return resp
}

func MapTemplatesToResponse(templates []domain.WorkoutTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapTemplateToResponse(&templates[i])
	}
	return responses
}

func includeDetails(c *gin.Context) (bool, error) {
	raw := c.Query("includeDetails")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Malformed("includeDetails must be a boolean")
	}
	return v, nil
}

// --- Handler Methods ---

// ListTemplates handles GET /templates?includeDetails=bool
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	details, err := includeDetails(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	templates, err := h.templateService.ListTemplates(c.Request.Context(), details)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplatesToResponse(templates))
}

// GetTemplate handles GET /templates/:templateId?includeDetails=bool
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, err := uuidParam(c, "templateId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	details, err := includeDetails(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	template, err := h.templateService.GetTemplate(c.Request.Context(), id, details)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(template))
}

// ImportTemplate handles POST /templates/import. The body is a YAML or JSON template document.
func (h *TemplateHandler) ImportTemplate(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Template document is too large")
			return
		}
		respondError(c, h.logger, bindError(err))
		return
	}

	result, err := h.templateService.ImportTemplate(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusCreated
	if result.Skipped {
		status = http.StatusOK
	}
	c.JSON(status, ImportResponse{Template: MapTemplateToResponse(result.Template), Skipped: result.Skipped})
}

// UpdateTemplate handles PUT /templates/:templateId
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, err := uuidParam(c, "templateId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req service.TemplateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	template, err := h.templateService.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(template))
}

// DeleteTemplate handles DELETE /templates/:templateId
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := uuidParam(c, "templateId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.templateService.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func templateExercisePath(c *gin.Context) (service.TemplateExercisePath, error) {
	ids, err := uuidParams(c, "templateId", "weekId", "workoutId", "exerciseId")
	if err != nil {
		return service.TemplateExercisePath{}, err
	}
	return service.TemplateExercisePath{TemplateID: ids[0], WeekID: ids[1], WorkoutID: ids[2], ExerciseID: ids[3]}, nil
}

// GetTemplateExercise handles GET /templates/:templateId/weeks/:weekId/workouts/:workoutId/exercises/:exerciseId
func (h *TemplateHandler) GetTemplateExercise(c *gin.Context) {
	path, err := templateExercisePath(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ex, err := h.templateService.GetTemplateExercise(c.Request.Context(), path)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateExerciseToResponse(ex))
}

// UpdateTemplateExercise handles PUT on the same composite path.
func (h *TemplateHandler) UpdateTemplateExercise(c *gin.Context) {
	path, err := templateExercisePath(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req service.TemplateExerciseUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	ex, err := h.templateService.UpdateTemplateExercise(c.Request.Context(), path, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateExerciseToResponse(ex))
}

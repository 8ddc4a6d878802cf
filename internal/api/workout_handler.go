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

// WorkoutHandler serves the caller's own workout log.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	logger         *slog.Logger
}

func NewWorkoutHandler(workoutService service.WorkoutService, logger *slog.Logger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, logger: logger}
}

// --- DTOs ---

type SeriesResponse struct {
	ID          string   `json:"id"`
	ExerciseID  string   `json:"exerciseId"`
	Repetitions int      `json:"repetitions"`
	RPE         *float64 `json:"rpe"`
	Weight      *float64 `json:"weight"`
	Position    int      `json:"position"`
}

type ExerciseResponse struct {
	ID        string           `json:"id"`
	WorkoutID string           `json:"workoutId"`
	Name      string           `json:"name"`
	Position  int              `json:"position"`
	Series    []SeriesResponse `json:"series"`
}

type WorkoutResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Date      time.Time          `json:"date"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Exercises []ExerciseResponse `json:"exercises"`
}

func MapSeriesToResponse(s *domain.Series) SeriesResponse {
	return SeriesResponse{
		ID:          s.ID.String(),
		ExerciseID:  s.ExerciseID.String(),
		Repetitions: s.Repetitions,
		RPE:         s.RPE,
		Weight:      s.Weight,
		Position:    s.Position,
	}
}

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	resp := ExerciseResponse{
		ID:        e.ID.String(),
		WorkoutID: e.WorkoutID.String(),
		Name:      e.Name,
		Position:  e.Position,
		Series:    make([]SeriesResponse, len(e.Series)),
	}
	for i := range e.Series {
		resp.Series[i] = MapSeriesToResponse(&e.Series[i])
	}
	return resp
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Date:      w.Date,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		Exercises: make([]ExerciseResponse, len(w.Exercises)),
	}
	for i := range w.Exercises {
		resp.Exercises[i] = MapExerciseToResponse(&w.Exercises[i])
	}
	return resp
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

// ids resolves the caller and the named path parameters, writing the error response on failure.
func (h *WorkoutHandler) ids(c *gin.Context, names ...string) (uuid.UUID, []uuid.UUID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, nil, false
	}
	ids, err := uuidParams(c, names...)
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, nil, false
	}
	return userID, ids, true
}

func (h *WorkoutHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, h.logger, bindError(err))
		return false
	}
	return true
}

// --- Workouts ---

// ListWorkouts handles GET /workouts
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, _, ok := h.ids(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// CreateWorkout handles POST /workouts with nested exercises and series.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, _, ok := h.ids(c)
	if !ok {
		return
	}
	var req service.WorkoutInput
	if !h.bind(c, &req) {
		return
	}
	w, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(w))
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId")
	if !ok {
		return
	}
	w, err := h.workoutService.GetWorkout(c.Request.Context(), userID, ids[0])
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId")
	if !ok {
		return
	}
	var req service.WorkoutUpdate
	if !h.bind(c, &req) {
		return
	}
	w, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, ids[0], req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, ids[0]); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Exercises ---

func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if !h.bind(c, &req) {
		return
	}
	e, err := h.workoutService.AddExercise(c.Request.Context(), userID, ids[0], req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(e))
}

func (h *WorkoutHandler) GetExercise(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId")
	if !ok {
		return
	}
	e, err := h.workoutService.GetExercise(c.Request.Context(), userID, ids[0], ids[1])
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(e))
}

func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId")
	if !ok {
		return
	}
	var req service.ExerciseUpdate
	if !h.bind(c, &req) {
		return
	}
	e, err := h.workoutService.UpdateExercise(c.Request.Context(), userID, ids[0], ids[1], req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(e))
}

func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteExercise(c.Request.Context(), userID, ids[0], ids[1]); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Series ---

func (h *WorkoutHandler) AddSeries(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId")
	if !ok {
		return
	}
	var req service.SeriesInput
	if !h.bind(c, &req) {
		return
	}
	s, err := h.workoutService.AddSeries(c.Request.Context(), userID, ids[0], ids[1], req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapSeriesToResponse(s))
}

func (h *WorkoutHandler) GetSeries(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId", "seriesId")
	if !ok {
		return
	}
	s, err := h.workoutService.GetSeries(c.Request.Context(), userID, ids[0], ids[1], ids[2])
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSeriesToResponse(s))
}

func (h *WorkoutHandler) UpdateSeries(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId", "seriesId")
	if !ok {
		return
	}
	var req service.SeriesUpdate
	if !h.bind(c, &req) {
		return
	}
	s, err := h.workoutService.UpdateSeries(c.Request.Context(), userID, ids[0], ids[1], ids[2], req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSeriesToResponse(s))
}

func (h *WorkoutHandler) DeleteSeries(c *gin.Context) {
	userID, ids, ok := h.ids(c, "workoutId", "exerciseId", "seriesId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteSeries(c.Request.Context(), userID, ids[0], ids[1], ids[2]); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

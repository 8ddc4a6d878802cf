package api

import (
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/domain" // Needed for RoleMiddleware
	"alcyxob/gymtracker/internal/service"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the handlers call.
type Services struct {
	Users         service.UserService
	Templates     service.TemplateService
	Subscriptions service.SubscriptionService
	Progress      service.ProgressService
	Workouts      service.WorkoutService
}

// NewRouter creates the engine with recovery, request logging and CORS.
func NewRouter(corsCfg config.CORSConfig, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if len(corsCfg.AllowedOrigins) > 0 {
		cc := cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}
		if slices.Contains(corsCfg.AllowedOrigins, "*") {
			cc.AllowAllOrigins = true
		} else {
			cc.AllowOrigins = corsCfg.AllowedOrigins
		}
		router.Use(cors.New(cc))
	}
	return router
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services, logger *slog.Logger) {
	templateHandler := NewTemplateHandler(services.Templates, logger)
	subscriptionHandler := NewSubscriptionHandler(services.Subscriptions, services.Progress, logger)
	progressHandler := NewProgressHandler(services.Progress, logger)
	workoutHandler := NewWorkoutHandler(services.Workouts, logger)

	authMiddleware := AuthMiddleware(jwtSecret, services.Users, logger)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			user, err := services.Users.GetUser(c.Request.Context(), userID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			roles, _ := getUserRolesFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": user.ID, "username": user.Username, "email": user.Email, "roles": roles})
		})

		// --- Template catalog ---
		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("/import", adminOnly, templateHandler.ImportTemplate)
			templates.GET("/:templateId", templateHandler.GetTemplate)
			templates.PUT("/:templateId", adminOnly, templateHandler.UpdateTemplate)
			templates.DELETE("/:templateId", adminOnly, templateHandler.DeleteTemplate)

			exercisePath := "/:templateId/weeks/:weekId/workouts/:workoutId/exercises/:exerciseId"
			templates.GET(exercisePath, templateHandler.GetTemplateExercise)
			templates.PUT(exercisePath, adminOnly, templateHandler.UpdateTemplateExercise)
		}

		// --- Subscriptions ---
		subscriptions := protected.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.Subscribe)
			subscriptions.GET("", subscriptionHandler.ListSubscriptions)
			subscriptions.GET("/:subscriptionId", subscriptionHandler.GetSubscription)
			subscriptions.DELETE("/:subscriptionId", subscriptionHandler.Unsubscribe)
			subscriptions.GET("/:subscriptionId/progress", subscriptionHandler.ListProgress)
		}

		// --- Progress ---
		progress := protected.Group("/progress")
		{
			progress.POST("/log", progressHandler.LogProgress)
			progress.GET("/:progressId", progressHandler.GetProgress)
			progress.PUT("/:progressId", progressHandler.UpdateProgress)
			progress.PUT("/:progressId/complete", progressHandler.MarkCompleted)
			progress.PUT("/:progressId/reset", progressHandler.ResetProgress)
		}

		// --- Workout log ---
		workouts := protected.Group("/workouts")
		{
			workouts.GET("", workoutHandler.ListWorkouts)
			workouts.POST("", workoutHandler.CreateWorkout)
			workouts.GET("/:workoutId", workoutHandler.GetWorkout)
			workouts.PUT("/:workoutId", workoutHandler.UpdateWorkout)
			workouts.DELETE("/:workoutId", workoutHandler.DeleteWorkout)

			workouts.POST("/:workoutId/exercises", workoutHandler.AddExercise)
			workouts.GET("/:workoutId/exercises/:exerciseId", workoutHandler.GetExercise)
			workouts.PUT("/:workoutId/exercises/:exerciseId", workoutHandler.UpdateExercise)
			workouts.DELETE("/:workoutId/exercises/:exerciseId", workoutHandler.DeleteExercise)

			workouts.POST("/:workoutId/exercises/:exerciseId/series", workoutHandler.AddSeries)
			workouts.GET("/:workoutId/exercises/:exerciseId/series/:seriesId", workoutHandler.GetSeries)
			workouts.PUT("/:workoutId/exercises/:exerciseId/series/:seriesId", workoutHandler.UpdateSeries)
			workouts.DELETE("/:workoutId/exercises/:exerciseId/series/:seriesId", workoutHandler.DeleteSeries)
		}
	}
}

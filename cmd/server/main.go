package main

import (
	"alcyxob/gymtracker/internal/api"
	"alcyxob/gymtracker/internal/cache"
	"alcyxob/gymtracker/internal/config"
	"alcyxob/gymtracker/internal/logging"
	"alcyxob/gymtracker/internal/repository"
	"alcyxob/gymtracker/internal/repository/memory"
	"alcyxob/gymtracker/internal/repository/mongo"
	"alcyxob/gymtracker/internal/service"
	"alcyxob/gymtracker/internal/storage"
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// stores is the repository set of one database driver.
type stores struct {
	users         repository.UserRepository
	templates     repository.TemplateRepository
	subscriptions repository.SubscriptionRepository
	progress      repository.ProgressRepository
	workouts      repository.WorkoutRepository
	tx            repository.Transactor
	close         func()
}

func openStores(cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		s := memory.New()
		return &stores{
			users:         s.Users(),
			templates:     s.Templates(),
			subscriptions: s.Subscriptions(),
			progress:      s.Progress(),
			workouts:      s.Workouts(),
			tx:            s,
			close:         func() {},
		}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	appDB := dbClient.Database(cfg.Name)
	logger.Info("database connection established", "database", cfg.Name)

	// Unique indexes back the conflict checks, so they must exist before serving.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
		_ = mongo.DisconnectDB(dbClient)
		return nil, err
	}
	logger.Info("database indexes ensured")

	return &stores{
		users:         mongo.NewMongoUserRepository(appDB),
		templates:     mongo.NewMongoTemplateRepository(appDB),
		subscriptions: mongo.NewMongoSubscriptionRepository(appDB),
		progress:      mongo.NewMongoProgressRepository(appDB),
		workouts:      mongo.NewMongoWorkoutRepository(appDB),
		tx:            mongo.NewTransactor(dbClient),
		close: func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", "error", err)
			}
		},
	}, nil
}

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)
	logger.Info("starting GymTracker server", "driver", cfg.Database.Driver, "address", cfg.Server.Address)

	// --- Database ---
	db, err := openStores(cfg.Database, logger)
	if err != nil {
		logger.Error("could not open database", "error", err)
		os.Exit(1)
	}
	defer db.close()

	// --- Cache ---
	var store cache.Store = cache.Noop{}
	if cfg.Cache.Enabled {
		ttlStore := cache.NewTTLStore(logger)
		defer ttlStore.Close()
		store = ttlStore
	}

	// --- Template document storage ---
	documents := storage.Router{Local: storage.LocalSource{}}
	if cfg.S3.Enabled() {
		s3Source, err := storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		documents.S3 = s3Source
	}

	// --- Services ---
	services := api.Services{
		Users:         service.NewUserService(db.users, logger),
		Templates:     service.NewTemplateService(db.templates, db.tx, store, cfg.Cache, documents, logger),
		Subscriptions: service.NewSubscriptionService(db.users, db.templates, db.subscriptions, db.tx, logger),
		Progress:      service.NewProgressService(db.templates, db.subscriptions, db.progress, logger),
		Workouts:      service.NewWorkoutService(db.workouts, db.tx, store, cfg.Cache, logger),
	}

	// --- Startup import ---
	if len(cfg.Import.Paths) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		results, err := services.Templates.ImportFromLocations(ctx, cfg.Import.Paths)
		cancel()
		if err != nil {
			logger.Error("some template documents could not be imported", "error", err)
		}
		logger.Info("startup import finished", "documents", len(results))
	}

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(cfg.CORS, logger)
	api.SetupRoutes(router, cfg.JWT.Secret, services, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("server failed", "error", err)
	}
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exiting")
}

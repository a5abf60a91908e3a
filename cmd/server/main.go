package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cws/attendance-system/internal/api"
	"github.com/cws/attendance-system/internal/core/service"
	"github.com/cws/attendance-system/internal/infrastructure/config"
	mongodb "github.com/cws/attendance-system/internal/infrastructure/db/mongo"
	redisdb "github.com/cws/attendance-system/internal/infrastructure/db/redis"
	"github.com/cws/attendance-system/internal/infrastructure/queue"
	"github.com/cws/attendance-system/internal/infrastructure/staging"
	"github.com/cws/attendance-system/internal/infrastructure/worker"
	"github.com/cws/attendance-system/pkg/logger"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

// @title           Attendance System API
// @version         1.0
// @description     Face-recognition attendance backend
// @host            localhost:8081
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

	userRepo := mongodb.NewUserRepository(db)
	attendanceRepo := mongodb.NewAttendanceRepository(db)
	eventRepo := mongodb.NewEventRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := attendanceRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("attendance index creation failed")
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, tokenTTL)
	userService := service.NewUserService(userRepo, log)
	attendanceService := service.NewAttendanceService(userRepo, attendanceRepo, log)
	eventService := service.NewEventService(eventRepo, log)

	dispatcher := queue.NewDispatcher(0, eventService, log)
	dispatcher.Start(ctx)

	corpus := staging.NewCorpus(cfg.Recognition.TempFacesDir, userRepo, log)
	supervisor := worker.NewSupervisor(
		cfg.Recognition.WorkerCommand,
		cfg.Recognition.WorkerScript,
		cfg.Recognition.StopGracePeriod,
		log,
	)
	dedup := redisdb.NewDedupChecker(redisClient)

	recognitionService := service.NewRecognitionService(
		corpus,
		supervisor,
		attendanceService,
		dedup,
		dispatcher,
		cfg.Recognition.CallbackURL,
		log,
	)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Mongo:       db,
		Redis:       redisClient,
		JWTSecret:   cfg.JWTSecret,
		Auth:        authService,
		Users:       userService,
		Attendance:  attendanceService,
		Recognition: recognitionService,
		Log:         log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Workers must not outlive the server: they would keep posting callbacks
	// into a closed port.
	recognitionService.Stop(shutdownCtx)

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/config"
	"github.com/eduline/homework-api/internal/database"
	"github.com/eduline/homework-api/internal/handler"
	"github.com/eduline/homework-api/internal/middleware"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
	"github.com/eduline/homework-api/internal/router"
	"github.com/eduline/homework-api/internal/service"
	cloud "github.com/eduline/homework-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Enrollment{},
		&models.Task{},
		&models.HomeworkSet{},
		&models.HomeworkVariant{},
		&models.VariantItem{},
		&models.Submission{},
		&models.Theory{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, dashboard caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, domain events disabled")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	} else {
		logger.Warn().Msg("cloudinary not configured, theory attachments disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	events := service.NewEventPublisher(natsConn, logger)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	theoryRepo := repository.NewTheoryRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	groupService := service.NewGroupService(groupRepo, userRepo, validate, logger)
	taskService := service.NewTaskService(taskRepo, validate, logger)
	homeworkService := service.NewHomeworkService(homeworkRepo, submissionRepo, groupRepo, taskRepo, redisClient, events, validate, logger)
	theoryService := service.NewTheoryService(theoryRepo, uploader, cfg.UploadMaxMB, validate, logger)
	statisticsService := service.NewStatisticsService(statisticsRepo, groupRepo, logger)
	dashboardService := service.NewStudentDashboardService(studentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		GroupHandler:      handler.NewGroupHandler(groupService, logger),
		TaskHandler:       handler.NewTaskHandler(taskService, logger),
		HomeworkHandler:   handler.NewHomeworkHandler(homeworkService, logger),
		TheoryHandler:     handler.NewTheoryHandler(theoryService, logger),
		StatisticsHandler: handler.NewStatisticsHandler(statisticsService, logger),
		StudentHandler:    handler.NewStudentHandler(dashboardService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		AuthRateLimit:     middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

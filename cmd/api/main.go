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
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink-api/internal/config"
	"github.com/mentorlink/mentorlink-api/internal/database"
	"github.com/mentorlink/mentorlink-api/internal/handler"
	"github.com/mentorlink/mentorlink-api/internal/middleware"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
	"github.com/mentorlink/mentorlink-api/internal/router"
	"github.com/mentorlink/mentorlink-api/internal/service"
	cloud "github.com/mentorlink/mentorlink-api/pkg/cloudinary"
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
		&models.MenteeLearningSkill{},
		&models.MentoringRequest{},
		&models.Session{},
		&models.Notification{},
		&models.Goal{},
		&models.GoalMilestone{},
		&models.GoalActivity{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	skillRepo := repository.NewLearningSkillRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	matchingService := service.NewMatchingService(userRepo, skillRepo, redisClient, cfg.MatchCacheTTL, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	profileService := service.NewProfileService(userRepo, skillRepo, uploader, matchingService, validate, cfg.AvatarMaxMB, logger)
	requestService := service.NewRequestService(requestRepo, userRepo, notificationService, validate, logger)
	sessionService := service.NewSessionService(sessionRepo, userRepo, notificationService, matchingService, validate, logger)
	goalService := service.NewGoalService(goalRepo, validate, logger)

	serviceCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	notificationService.Start(serviceCtx)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(profileService, logger)
	matchingHandler := handler.NewMatchingHandler(matchingService, logger)
	requestHandler := handler.NewRequestHandler(requestService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)
	goalHandler := handler.NewGoalHandler(goalService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		MatchingHandler:     matchingHandler,
		RequestHandler:      requestHandler,
		SessionHandler:      sessionHandler,
		NotificationHandler: notificationHandler,
		GoalHandler:         goalHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopServices)
}

func waitForShutdown(app *fiber.App, stopServices context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopServices()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

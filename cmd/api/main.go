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

	"github.com/bit2byte/mentorhub-api/internal/config"
	"github.com/bit2byte/mentorhub-api/internal/database"
	"github.com/bit2byte/mentorhub-api/internal/handler"
	"github.com/bit2byte/mentorhub-api/internal/middleware"
	"github.com/bit2byte/mentorhub-api/internal/repository"
	"github.com/bit2byte/mentorhub-api/internal/router"
	"github.com/bit2byte/mentorhub-api/internal/service"
	cloud "github.com/bit2byte/mentorhub-api/pkg/cloudinary"
	"github.com/bit2byte/mentorhub-api/pkg/sendgrid"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var mailSender service.EmailSender
	if cfg.MailConfigured() {
		sender, err := sendgrid.New(sendgrid.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromName:  cfg.MailFromName,
			FromEmail: cfg.MailFromEmail,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create sendgrid client: %v", err)
		}
		mailSender = sender
	} else {
		logger.Warn().Msg("mail credentials missing, reply notifications will only be logged")
		mailSender = service.NewLogSender(logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	doubtRepo := repository.NewDoubtRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifier := service.NewMailNotifier(mailSender, logger)
	doubtService := service.NewDoubtService(doubtRepo, assignmentRepo, userRepo, notifier, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	responseService := service.NewResponseService(assignmentRepo, doubtService, validate, logger)
	uploadService := service.NewUploadService(assignmentRepo, uploader, logger)
	overviewService := service.NewOverviewService(assignmentRepo, doubtRepo, redisClient, cfg.OverviewCacheTTL, logger)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, responseService, uploadService, logger)
	doubtHandler := handler.NewDoubtHandler(doubtService, logger)
	overviewHandler := handler.NewOverviewHandler(overviewService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		DoubtHandler:      doubtHandler,
		OverviewHandler:   overviewHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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

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
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/config"
	"github.com/manara-platform/manara-api/internal/database"
	"github.com/manara-platform/manara-api/internal/handler"
	"github.com/manara-platform/manara-api/internal/middleware"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/repository"
	"github.com/manara-platform/manara-api/internal/router"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/pkg/ai"
	cloud "github.com/manara-platform/manara-api/pkg/cloudinary"
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
		&models.TeacherProfile{},
		&models.Subject{},
		&models.TeacherAssignment{},
		&models.Subscription{},
		&models.TeacherChoice{},
		&models.Notification{},
		&models.MaterialRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, cross-node fan-out disabled")
		} else {
			defer natsConn.Drain()
		}
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

	completer, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:        cfg.OpenAIAPIKey,
		Model:         cfg.AssistantModel,
		FallbackModel: cfg.AssistantFallbackModel,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create assistant client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	materialRepo := repository.NewMaterialRepository(db)

	paymentService := service.NewPaymentService(cfg.PaymentLinkTemplate, logger)
	entitlementService := service.NewEntitlementService(userRepo, subscriptionRepo, logger, time.Now)
	teacherService := service.NewTeacherDirectoryService(teacherRepo, paymentService, redisClient, cfg.TeacherCacheTTL, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "manara", natsConn, validate, logger)
	expiryService := service.NewExpiryService(subscriptionRepo, notificationRepo, notificationService, logger, time.Now)
	assistantService := service.NewAssistantService(completer, entitlementService, subjectRepo, materialRepo, validate, logger)
	materialService := service.NewMaterialService(uploader, materialRepo, cfg.MaxUploadMB, logger)
	adminService := service.NewAdminService(userRepo, subscriptionRepo, teacherRepo, validate, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EntitlementHandler:  handler.NewEntitlementHandler(entitlementService, logger),
		TeacherHandler:      handler.NewTeacherHandler(teacherService, logger),
		CatalogHandler:      handler.NewCatalogHandler(subjectRepo, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.StreamKeepAlive),
		AssistantHandler:    handler.NewAssistantHandler(assistantService, logger),
		MaterialHandler:     handler.NewMaterialHandler(materialService, logger),
		AdminHandler:        handler.NewAdminHandler(adminService, notificationService, logger),
		ExpiryJobHandler:    handler.NewExpiryJobHandler(expiryService, cfg.ExpiryJobToken, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
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

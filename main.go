package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lanzy-lanzy/blackcobra/handlers"
	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/services"
	"github.com/lanzy-lanzy/blackcobra/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, profile images only
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitStorage(); err != nil {
		log.Fatal("failed to initialize object storage:", err)
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Belt{},
		&models.Trainee{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Match{},
		&models.Payment{},
		&models.Promotion{},
		&models.Notification{},
		&models.DashboardStat{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	authService := services.NewAuthService(db)
	traineeService := services.NewTraineeService(db)
	eventService := services.NewEventService(db)
	matchService := services.NewMatchService(db)
	promotionService := services.NewPromotionService(db)
	paymentService := services.NewPaymentService(db)
	notificationService := services.NewNotificationService(db)
	beltService := services.NewBeltService(db)
	dashboardService := services.NewDashboardService(db)

	if err := beltService.SeedDefaults(); err != nil {
		log.Fatal("failed to seed belt ladder:", err)
	}

	sched, err := services.StartScheduler(dashboardService, paymentService)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupTraineeRoutes(app, traineeService)
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupNotificationRoutes(app, notificationService)
	handlers.SetupAdminRoutes(app, promotionService, paymentService, beltService, dashboardService)

	app.Static("/uploads", "./uploads")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Dashboard recompute and payment reminder jobs running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medsuite/pharmacare-api/internal/application/service"
	"github.com/medsuite/pharmacare-api/internal/config"
	"github.com/medsuite/pharmacare-api/internal/infrastructure/database"
	"github.com/medsuite/pharmacare-api/internal/infrastructure/repository"
	"github.com/medsuite/pharmacare-api/internal/notification"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/handler"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/routes"
	"github.com/medsuite/pharmacare-api/pkg/email"
	"github.com/medsuite/pharmacare-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Bill numbers come from a snowflake generator; the node id must differ
	// between replicas
	billNumbers, err := utils.NewBillNumberGenerator(cfg.Billing.NodeID)
	if err != nil {
		log.Fatalf("Failed to initialize bill number generator: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	billRepo := repository.NewBillRepository(db)
	billItemRepo := repository.NewBillItemRepository(db)
	adjustmentRepo := repository.NewStockAdjustmentRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Settlement outcomes go to the email sink when SMTP is configured,
	// otherwise to the process log
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	var notifier notification.Sink = notification.NewLogSink()
	if emailService.Enabled() {
		notifier = notification.NewEmailSink(emailService)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	patientService := service.NewPatientService(patientRepo)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, patientRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, categoryRepo, adjustmentRepo)
	settlementService := service.NewSettlementService(
		prescriptionRepo,
		patientRepo,
		inventoryRepo,
		billRepo,
		billItemRepo,
		adjustmentRepo,
		billNumbers,
		notifier,
	)
	billService := service.NewBillService(billRepo, billItemRepo, inventoryRepo)
	dashboardService := service.NewDashboardService(billRepo, inventoryRepo, adjustmentRepo)

	// Start recurring maintenance jobs
	scheduler := service.NewMaintenanceScheduler(idempotencyRepo, inventoryRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Patient:      handler.NewPatientHandler(patientService),
		Prescription: handler.NewPrescriptionHandler(prescriptionService),
		Inventory:    handler.NewInventoryHandler(inventoryService),
		Bill:         handler.NewBillHandler(settlementService, billService, cfg.Billing.DefaultTaxPercent),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for an interrupt, then drain in-flight settlements before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}

	log.Println("Server exited")
}

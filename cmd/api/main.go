package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"axion/interview-evaluator/internal/config"
	"axion/interview-evaluator/internal/handlers"
	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	responseRepo := repositories.NewResponseRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize media storage
	mediaStore, err := newMediaStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize media storage: %v", err)
	}
	if err := services.EnsureUploadDir(mediaStore); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	log.Printf("✅ Media storage initialized (%s)\n", cfg.Storage.Driver)

	// Initialize Gemini AI. Without a key, answers are stored with an Error
	// judgment and questions come from the templates.
	var geminiService services.GeminiService
	if cfg.Gemini.APIKey != "" {
		geminiService, err = services.NewGeminiService(cfg.Gemini)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, AI scoring and generation are disabled")
	}

	scorer := services.NewScorerService(services.NewScorerConfig(cfg), geminiService)
	generator := services.NewQuestionGenerator(cfg.Gemini.APIKey, geminiService, cfg.Gemini.MaxRetries)
	pdfParser := services.NewPDFParserService()
	reportService := services.NewReportService(jobRepo, questionRepo, candidateRepo, responseRepo)
	log.Println("✅ Services initialized successfully")

	// Initialize transcript search
	var indexer services.TranscriptIndexer
	var worker services.Worker
	if cfg.SearchEnabled() {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")

		indexer = services.NewTranscriptIndexer(responseRepo, geminiService, qdrantService, services.NewTextChunker())
		worker = services.NewWorker(responseRepo, indexer, services.WorkerConfig{
			Concurrency:  cfg.Worker.Concurrency,
			PollInterval: cfg.Worker.PollInterval,
			BatchSize:    cfg.Worker.BatchSize,
		})
		worker.Start(ctx)
	} else {
		log.Println("⚠️  QDRANT_URL not set, transcript search is disabled")
	}

	// Initialize event publisher
	publisher := services.NewNoopPublisher()
	if cfg.RabbitMQ.URL != "" {
		publisher, err = services.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("❌ Failed to initialize RabbitMQ: %v", err)
		}
	}

	// Initialize handlers
	jobHandler := handlers.NewJobHandler(jobRepo, questionRepo, candidateRepo, generator, pdfParser, indexer, cfg.Storage.MaxFileSize)
	interviewHandler := handlers.NewInterviewHandler(jobRepo, questionRepo, candidateRepo)
	submissionHandler := handlers.NewSubmissionHandler(
		candidateRepo,
		questionRepo,
		responseRepo,
		mediaStore,
		scorer,
		worker,
		publisher,
		cfg.Storage.MediaFolder,
		cfg.Storage.MaxFileSize,
	)
	reportHandler := handlers.NewReportHandler(reportService, candidateRepo, cfg.Server.PublicBaseURL)
	searchHandler := handlers.NewSearchHandler(indexer)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Axion Interview Evaluator API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Gemini.PollTimeout + cfg.Gemini.FetchTimeout + time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if cfg.Storage.Driver != "s3" {
		app.Static("/media", cfg.Storage.UploadPath)
	}

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"time":      time.Now(),
			"ai":        cfg.Gemini.APIKey != "",
			"search":    indexer != nil,
			"storage":   cfg.Storage.Driver,
			"messaging": cfg.RabbitMQ.URL != "",
		})
	})

	// Candidate side
	api.Get("/jobs", jobHandler.HandleListJobs)
	api.Get("/jobs/:id", jobHandler.HandleGetJob)
	api.Post("/jobs/:id/candidates", interviewHandler.HandleRegister)
	api.Get("/rooms/:candidate_id", interviewHandler.HandleRoom)
	api.Post("/answers", submissionHandler.HandleSubmitAnswer)

	// HR side
	hr := api.Group("/hr", basicauth.New(basicauth.Config{
		Users: map[string]string{cfg.Auth.AdminUsername: adminPassword(cfg)},
		Realm: "Axion HRD",
	}))
	hr.Post("/jobs", jobHandler.HandleCreateJob)
	hr.Delete("/jobs/:id", jobHandler.HandleDeleteJob)
	hr.Get("/jobs/:id/candidates", jobHandler.HandleListCandidates)
	hr.Get("/jobs/:id/export.xlsx", reportHandler.HandleCohortExport)
	hr.Get("/candidates", reportHandler.HandleListCandidates)
	hr.Get("/candidates/:id/report", reportHandler.HandleReport)
	hr.Get("/candidates/:id/export.json", reportHandler.HandleExport)
	hr.Get("/dashboard", reportHandler.HandleDashboard)
	hr.Get("/analytics", reportHandler.HandleAnalytics)
	hr.Get("/search", searchHandler.HandleSearch)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Axion Interview Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/jobs",
				"POST /api/v1/jobs/:id/candidates",
				"GET /api/v1/rooms/:candidate_id",
				"POST /api/v1/answers",
				"GET /api/v1/hr/dashboard",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		if worker != nil {
			worker.Stop()
		}
		if err := publisher.Close(); err != nil {
			log.Printf("⚠️  Failed to close RabbitMQ connection: %v", err)
		}
		cancel()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	<-stopped
	log.Println("✅ Server stopped")
}

func newMediaStore(ctx context.Context, cfg *config.Config) (services.MediaStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return services.NewS3MediaStore(ctx, cfg.S3)
	case "local", "":
		return services.NewLocalMediaStore(cfg.Storage.UploadPath, cfg.Server.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
}

// adminPassword falls back to a per-process password so the HR routes are
// never left open.
func adminPassword(cfg *config.Config) string {
	if cfg.Auth.AdminPassword != "" {
		return cfg.Auth.AdminPassword
	}
	password := uuid.NewString()
	log.Printf("⚠️  ADMIN_PASSWORD not set, generated password for '%s': %s\n", cfg.Auth.AdminUsername, password)
	return password
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

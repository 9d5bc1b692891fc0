package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/marcusfern/postpilot/configs"
	"github.com/marcusfern/postpilot/internal/api/handlers"
	"github.com/marcusfern/postpilot/internal/api/middleware"
	job "github.com/marcusfern/postpilot/internal/jobs"
	"github.com/marcusfern/postpilot/internal/queue"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	topicWeightRepo := repository.NewTopicWeightRepository(db)
	approvalSettingsRepo := repository.NewApprovalSettingsRepository(db)
	approvalHistoryRepo := repository.NewApprovalHistoryRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	enqueuer := queue.NewEnqueuer(client)

	topicService := service.NewTopicService(topicWeightRepo, postRepo, cfg.Topics)
	predictorService := service.NewPredictorService(topicWeightRepo, postRepo, approvalSettingsRepo)
	approvalService := service.NewApprovalService(postRepo, approvalSettingsRepo, approvalHistoryRepo, enqueuer)
	publisher := service.NewPlatformPublisher(*cfg, credentialRepo)
	r2Service := service.NewR2Service(*cfg)

	generator, err := service.NewGeminiGenerator(context.Background(), *cfg)
	if err != nil {
		log.Fatalf("Failed to create content generator: %v", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	// cron jobs
	scheduleJob := job.NewPostScheduleJob(topicService, postRepo, enqueuer)
	weightRecalcJob := job.NewWeightRecalcJob(topicService)
	engagementJob := job.NewEngagementJob(postRepo, approvalHistoryRepo, publisher)
	tokenRefreshJob := job.NewTokenRefreshJob(credentialRepo, publisher)

	approval := handlers.NewApprovalHandler(approvalService)
	api.Get("/posts/pending", approval.Pending)
	api.Post("/posts/:id/approve", approval.Approve)
	api.Post("/posts/:id/reject", approval.Reject)
	api.Get("/approval/accuracy", approval.Accuracy)

	post := handlers.NewPostHandler(postRepo)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)

	settings := handlers.NewSettingsHandler(approvalService)
	api.Get("/settings/approval", settings.GetSettings)
	api.Post("/settings/approval", settings.UpdateSettings)

	scheduler := handlers.NewSchedulerHandler(scheduleJob)
	api.Post("/scheduler/trigger", scheduler.Trigger)
	api.Post("/scheduler/pause", scheduler.Pause)
	api.Post("/scheduler/resume", scheduler.Resume)
	api.Get("/scheduler/status", scheduler.Status)

	//queue
	queueW := queue.NewQueue(postRepo, generator, publisher, predictorService, approvalService, r2Service, enqueuer)

	c := cron.NewWithLocation(location)
	for _, postingTime := range cfg.PostingTimes {
		spec, err := cronSpec(postingTime)
		if err != nil {
			log.Fatalf("Invalid posting time %q: %v", postingTime, err)
		}
		c.AddFunc(spec, scheduleJob.Run)
	}
	c.AddFunc("0 0 2 * * *", weightRecalcJob.Run)
	c.AddFunc("@every 01h00m00s", engagementJob.Run)
	c.AddFunc("@every 00h10m00s", tokenRefreshJob.Run)
	c.Start()

	runWorkerServer(redisConn, queue.QueueContent, queue.ContentConcurrency, map[string]func(context.Context, *asynq.Task) error{
		queue.TaskTypeGenerateContent: queueW.HandleGenerateContentTask,
		queue.TaskTypeDelayedApproval: queueW.HandleDelayedApprovalTask,
	})
	runWorkerServer(redisConn, queue.QueueImage, queue.ImageConcurrency, map[string]func(context.Context, *asynq.Task) error{
		queue.TaskTypeGenerateImage: queueW.HandleGenerateImageTask,
	})
	runWorkerServer(redisConn, queue.QueuePublish, queue.PublishConcurrency, map[string]func(context.Context, *asynq.Task) error{
		queue.TaskTypePublish: queueW.HandlePublishTask,
	})

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

// runWorkerServer starts one asynq server bound to a single stage queue so
// each stage keeps its own concurrency.
func runWorkerServer(redisConn asynq.RedisClientOpt, queueName string, concurrency int, taskHandlers map[string]func(context.Context, *asynq.Task) error) {
	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency:    concurrency,
			Queues:         map[string]int{queueName: 1},
			RetryDelayFunc: queue.RetryDelay,
		})

		mux := asynq.NewServeMux()
		for taskType, handler := range taskHandlers {
			mux.HandleFunc(taskType, handler)
		}

		log.Printf("Starting the Asynq server for queue %q...", queueName)
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server for queue %q: %v", queueName, err)
		}
	}()
}

// cronSpec converts a wall-clock "HH:MM" posting time into a cron spec.
func cronSpec(postingTime string) (string, error) {
	parts := strings.Split(postingTime, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("expected HH:MM")
	}

	t, err := time.Parse("15:04", postingTime)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"youngscholars/internal/achievement"
	"youngscholars/internal/cache"
	"youngscholars/internal/config"
	"youngscholars/internal/database"
	"youngscholars/internal/handlers"
	"youngscholars/internal/progression"
	"youngscholars/internal/repository"
	"youngscholars/internal/scheduler"
	"youngscholars/internal/security"
	"youngscholars/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.SeedBadWords {
		if err := db.SeedBadWords(ctx); err != nil {
			log.Printf("Warning: Failed to seed bad words filter: %v", err)
		}
	}

	ladder, err := progression.LadderByName(cfg.ReadingLadder)
	if err != nil {
		log.Fatalf("Invalid reading ladder: %v", err)
	}

	catalog, err := loadCatalog(cfg.BadgeCatalogPath)
	if err != nil {
		log.Fatalf("Failed to load badge catalog: %v", err)
	}
	log.Printf("Loaded %d badges, %s reading ladder", len(catalog.Badges), cfg.ReadingLadder)

	// Initialize repositories
	parentRepo := repository.NewParentRepository(db)
	learnerRepo := repository.NewLearnerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	bookRepo := repository.NewBookRepository(db)

	// Rankings live in Redis when configured, otherwise in SQL only
	var rankings service.RankingCache
	var leaderboardCache *cache.LeaderboardCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, leaderboard will use the database: %v", err)
		} else {
			defer client.Close()
			leaderboardCache = cache.NewLeaderboardCache(client, "")
			rankings = leaderboardCache
			log.Println("Leaderboard cache connected")
		}
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	var notifier service.Notifier = service.LogNotifier{}
	if emailService.IsEnabled() {
		notifier = service.MultiNotifier{
			service.LogNotifier{},
			service.NewEmailNotifier(parentRepo, emailService),
		}
	}

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	learnerService := service.NewLearnerService(learnerRepo, historyRepo, db, ladder, catalog)
	authService := service.NewAuthService(parentRepo, learnerService, tokens, emailService)
	bookService := service.NewBookService(bookRepo)
	leaderboardService := service.NewLeaderboardService(rankings, learnerRepo, historyRepo)
	readingService := service.NewReadingService(service.ReadingServiceDeps{
		Learners:    learnerRepo,
		Books:       bookRepo,
		Progress:    historyRepo,
		Leaderboard: leaderboardService,
		Notifier:    notifier,
		Ladder:      ladder,
		Catalog:     catalog,
	})

	if rankings != nil {
		jobs := scheduler.New(leaderboardService, cfg.LeaderboardRebuildInterval)
		if err := jobs.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer jobs.Stop()
	}

	// 10 login or register attempts per minute per IP
	limiter := security.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	routes := handlers.Handlers{
		Middleware:  handlers.NewMiddleware(authService, limiter),
		Auth:        handlers.NewAuthHandler(authService),
		Children:    handlers.NewChildHandler(learnerService, readingService),
		Catalog:     handlers.NewCatalogHandler(bookService, catalog),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		DB:          db,
	}
	if leaderboardCache != nil {
		routes.Cache = leaderboardCache
	}
	handler := handlers.NewRouter(routes)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// loadCatalog reads the badge catalog file, or the built-in catalog when no
// path is configured
func loadCatalog(path string) (achievement.Catalog, error) {
	catalog := achievement.DefaultCatalog()
	if path != "" {
		var err error
		catalog, err = achievement.LoadCatalog(path)
		if err != nil {
			return achievement.Catalog{}, err
		}
	}
	return catalog, catalog.Validate()
}

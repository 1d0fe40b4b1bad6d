package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/chatstore"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/config"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/database"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/gita"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/handlers"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/middleware"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/repository"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/router"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/services"
	firestorestore "github.com/pkaushik-02002/BagavatgitaAI/internal/storage/firestore"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/websocket"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/worker"
)

func main() {
	log.Println("🚀 Starting GitaAI Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 5: Initialize Firestore ────
	ctx := context.Background()
	docStore, err := firestorestore.NewStore(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatalf("✗ Firestore initialization failed: %v", err)
	}
	defer docStore.Close()
	log.Println("✓ Firestore connected")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contactRepo := repository.NewContactRepo(pool)

	// ──── Step 6: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini client initialized")

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		log.Fatalf("✗ Failed to create storage directory: %v", err)
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	fileExtractService := services.NewFileExtractService()
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth, emailService, cfg.GoogleClientID)
	gitaClient := gita.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost, redisClients.Cache)

	// ──── Initialize Chat Session Stores ────
	sessionManager := chatstore.NewManager(docStore, func(userID string) chatstore.SnapshotStore {
		return chatstore.NewRedisSnapshotStore(redisClients.Cache, userID)
	})
	log.Println("✓ Chat session store ready")

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, cfg.FrontendURL)
	chatHandler := handlers.NewChatHandler(sessionManager, geminiService, docStore, gitaClient, fileExtractService, redisClients.Queue, cfg.StoragePath)
	chaptersHandler := handlers.NewChaptersHandler(docStore, gitaClient, redisClients.Queue)
	versesHandler := handlers.NewVersesHandler(docStore)
	contactHandler := handlers.NewContactHandler(contactRepo)
	userHandler := handlers.NewUserHandler(userRepo)

	// ──── Step 8: Start Chapter Sync Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		gitaClient,
		docStore,
		cfg.SyncWorkers,
		time.Duration(cfg.SyncIntervalHours)*time.Hour,
	)
	workerPool.Start()
	log.Printf("✓ Chapter sync pool started (%d goroutines)", cfg.SyncWorkers)

	// ──── Step 9: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 10: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		chatHandler,
		chaptersHandler,
		versesHandler,
		contactHandler,
		userHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ GitaAI Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

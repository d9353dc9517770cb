package main

import (
	"context"
	"log"
	"time"

	"quizforge/adapters/extract"
	"quizforge/adapters/llm"
	"quizforge/adapters/postgres"
	"quizforge/app"
	"quizforge/internal"
	"quizforge/internal/config"
	"quizforge/internal/migration"
	"quizforge/internal/upload"
	"quizforge/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	chatClient, err := llm.NewChatClient(llm.Config{
		APIKey:      cfg.AI.APIToken,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: float32(cfg.AI.Temperature),
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize chat client: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	sourceRepo := postgres.NewSourceRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	authService := app.NewAuthService(userRepo, cfg.Auth.Secret, cfg.Auth.TokenTTL, logger)
	sourceService := app.NewSourceService(sourceRepo, extract.NewExtractor(), upload.NewStore(cfg.Upload.Dir), cfg.Upload.MaxUploadMB, logger)
	quizService := app.NewQuizService(sessionRepo, sourceRepo, llm.NewGeneratorAdapter(chatClient), logger)

	server := ui.NewApp(authService, sourceService, quizService, logger)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

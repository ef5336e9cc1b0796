package main

import (
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/bot"
	"github.com/dkotenko/tweetgen-bot/internal/flow"
	"github.com/dkotenko/tweetgen-bot/internal/generator"
	"github.com/dkotenko/tweetgen-bot/internal/history"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
	"github.com/dkotenko/tweetgen-bot/internal/subscription"
	"github.com/dkotenko/tweetgen-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the generation client
	gen := generator.NewOpenAIGenerator(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		time.Duration(cfg.OpenAI.RequestTimeout)*time.Second,
		logger,
	)

	// Assemble the conversation pipeline
	subs := subscription.NewManager(store, logger)
	recorder := history.NewRecorder(store, cfg.Generation.HistoryLimit, logger)
	orchestrator := flow.NewOrchestrator(store, subs, gen, recorder, logger)

	// Initialize bot
	b, err := bot.New(
		cfg.Telegram.Token,
		cfg.Telegram.PaymentProviderToken,
		store,
		orchestrator,
		subs,
		recorder,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}

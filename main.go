package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"match-agent/config"
	"match-agent/database"
	"match-agent/graph"
	"match-agent/index"
	"match-agent/llmclient"
	"match-agent/profile"
	"match-agent/query"
	"match-agent/search"
	"match-agent/termination"
	"match-agent/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	llm := llmclient.New(cfg, logger)

	profileIndex := index.New(store.DB, llm, logger)
	engine := search.NewEngine(profileIndex, cfg, logger)
	extractor := query.NewExtractor(llm, logger)

	aspectExtractor, err := profile.NewExtractor(llm, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize aspect extractor", zap.Error(err))
	}
	defer aspectExtractor.Close()

	profiles, err := profile.NewService(store, llm, profileIndex, aspectExtractor, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize profile service", zap.Error(err))
	}

	terminator := termination.NewManager(
		termination.NewHesitancyDetector(llm, logger),
		termination.NewCompletenessDetector(llm, logger),
		termination.NewNaturalEndDetector(llm, logger),
		cfg, logger)

	orchestrator := graph.New(store, engine, extractor, profiles, llm, terminator, cfg, logger)

	webServer := web.NewServer(orchestrator, store, logger, cfg)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting match agent web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}

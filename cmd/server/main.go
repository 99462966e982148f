package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decoded-cipher/inovus-ama/internal/api"
	"github.com/decoded-cipher/inovus-ama/internal/auth"
	"github.com/decoded-cipher/inovus-ama/internal/config"
	"github.com/decoded-cipher/inovus-ama/internal/core"
	"github.com/decoded-cipher/inovus-ama/internal/live"
	"github.com/decoded-cipher/inovus-ama/internal/notify"
	"github.com/decoded-cipher/inovus-ama/internal/storage"
	"github.com/decoded-cipher/inovus-ama/internal/store"
)

func main() {
	ingestPath := flag.String("ingest", "", "Ingest the given file into the knowledge base and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()

	llm, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiChatModel, cfg.GeminiEmbeddingModel, logger)
	if err != nil {
		logger.Fatal("failed to initialize Gemini client", zap.Error(err))
	}
	defer llm.Close()

	vstore, err := newVectorStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize vector store",
			zap.String("backend", cfg.VectorBackend),
			zap.Error(err))
	}
	defer vstore.Close()

	ingestService := core.NewIngestService(llm, vstore, cfg.ChunkSize, cfg.MinChunkLength, logger)

	if *ingestPath != "" {
		runIngest(ctx, ingestService, *ingestPath, logger)
		return
	}

	guardrail := core.NewGuardrail(llm, vstore, cfg.TopK, cfg.SimilarityThreshold, cfg.MinMatches, logger)
	memory := core.NewMemoryManager(llm, cfg.MemoryWindow, logger)
	liveClient := live.NewClient(cfg.LiveDataURL)

	answerService := core.NewAnswerService(llm, vstore, guardrail, memory, liveClient, core.AnswerOptions{
		GuardrailEnabled:  cfg.GuardrailEnabled,
		LiveDataEnabled:   cfg.LiveDataEnabled,
		TopK:              cfg.TopK,
		MinQuestionLength: cfg.MinQuestionLength,
	}, logger)

	files := storage.NewClient(cfg.BucketURL, cfg.BucketPublicURL)
	turnstile := auth.NewTurnstileVerifier(cfg.TurnstileSecretKey)
	discord := notify.NewDiscordClient(cfg.DiscordWebhookURL)

	apiHandler := api.NewAPIHandler(answerService, ingestService, files, turnstile, discord, logger)
	router := api.NewRouter(apiHandler, time.Duration(cfg.RequestTimeoutSeconds)*time.Second, logger)

	addr := ":" + cfg.HTTPPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSeconds+15) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("vector_backend", cfg.VectorBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newVectorStore(cfg *config.Config) (store.VectorStore, error) {
	switch cfg.VectorBackend {
	case "qdrant":
		return store.NewQdrantStore(cfg.QdrantAddr, cfg.QdrantCollection)
	default:
		return store.NewSQLiteStore(cfg.DatabasePath)
	}
}

func runIngest(ctx context.Context, ingestService *core.IngestService, path string, logger *zap.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read file", zap.String("path", path), zap.Error(err))
	}

	result, err := ingestService.Ingest(ctx, core.IngestInput{
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
		Data:     data,
	})
	if err != nil {
		logger.Fatal("ingestion failed", zap.String("path", path), zap.Error(err))
	}

	logger.Info("ingestion complete",
		zap.String("path", path),
		zap.Bool("text_extracted", result.TextExtracted),
		zap.Int("chunks_created", result.ChunksCreated),
		zap.Int("chunks_processed", result.ChunksProcessed),
		zap.Int("chunks_skipped", result.ChunksSkipped),
		zap.Strings("errors", result.Errors))
}

func newLogger(level string) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniel-SCAU/oldAIagent/internal/api"
	"github.com/daniel-SCAU/oldAIagent/internal/classify"
	"github.com/daniel-SCAU/oldAIagent/internal/config"
	"github.com/daniel-SCAU/oldAIagent/internal/events"
	"github.com/daniel-SCAU/oldAIagent/internal/jobs"
	"github.com/daniel-SCAU/oldAIagent/internal/mygpt"
	"github.com/daniel-SCAU/oldAIagent/internal/search"
	"github.com/daniel-SCAU/oldAIagent/internal/store"
	"github.com/daniel-SCAU/oldAIagent/internal/summarize"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("msgmon starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database. The service stays up without one: every store call then
	// answers 503 until a restart with a reachable DATABASE_URL.
	var db *store.Store
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL not set, running degraded")
		db = store.NewUnavailable()
	} else {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database, running degraded", "error", err)
			db = store.NewUnavailable()
		} else {
			if err := db.EnsureSchema(ctx); err != nil {
				slog.Error("failed to ensure schema", "error", err)
				os.Exit(1)
			}
			slog.Info("database connected")
		}
	}
	defer db.Close()

	// myGPT client (optional). Without it classification falls back to
	// keyword heuristics and summaries to first/last truncation.
	var llm *mygpt.Client
	if cfg.MyGPTURL != "" {
		llm = mygpt.NewClient(cfg.MyGPTURL, cfg.MyGPTKey, cfg.MyGPTTimeout)
		slog.Info("mygpt client ready", "url", cfg.MyGPTURL)
	} else {
		slog.Warn("mygpt not configured, using local classification and summaries")
	}

	var classifier classify.Classifier = classify.Heuristic{}
	var summarizer summarize.Summarizer = summarize.Local{}
	if llm != nil {
		classifier = classify.NewRemote(llm, slog.Default())
		summarizer = summarize.NewRemote(llm, slog.Default())
	}

	// NATS (optional). A nil publisher is a no-op.
	var pub *events.Publisher
	if cfg.NatsURL != "" {
		var err error
		pub, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, events disabled")
	}

	resolver := search.NewResolver(db, slog.Default())

	// Background jobs
	sched := jobs.NewScheduler(slog.Default())
	sched.Add("classification", cfg.ClassifyInterval,
		jobs.NewClassification(db, classifier, cfg.ClassifyBatch, slog.Default()).Run)
	sched.Add("summarization", cfg.SummarizeInterval,
		jobs.NewSummarization(db, summarizer, pub, slog.Default()).Run)
	sched.Start(ctx)

	// HTTP API
	var gen api.Generator
	if llm != nil {
		gen = llm
	}
	srv := api.NewServer(cfg.Port, cfg.APIKey, db, resolver, gen, pub, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("msgmon ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	cancel()
	sched.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}

	slog.Info("msgmon stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"scribe-ai/core/internal/api"
	"scribe-ai/core/internal/chat"
	"scribe-ai/core/internal/config"
	"scribe-ai/core/internal/engine"
	"scribe-ai/core/internal/events"
	"scribe-ai/core/internal/jobs"
	"scribe-ai/core/internal/modelconf"
	"scribe-ai/core/internal/session"
	"scribe-ai/core/internal/tools"
)

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	waitForEngine(cfg.EngineURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewClient(cfg.EngineURL)

	dispatcher := events.NewDispatcher()
	subscriber := events.NewSubscriber(cfg.EngineEventsURL, dispatcher)
	go func() {
		if err := subscriber.Run(ctx); err != nil {
			slog.Error("Event subscriber stopped", "error", err)
		}
	}()

	sessions := session.NewStore(eng)
	registry := tools.NewRegistry(eng, cfg.MCPServerList())
	binding := tools.NewBinding(eng, registry)
	manager := chat.NewManager(eng, dispatcher, cfg.PollInterval())

	modelService := modelconf.NewService(eng)
	modelService.Init(ctx)
	if def, ok := modelService.Default(); ok {
		slog.Info("Loaded default model configuration", "provider", def.Provider, "model", def.Model)
	} else {
		slog.Info("No default model configured yet.")
	}

	tracker := jobs.NewTracker(eng, dispatcher)
	defer tracker.Close()

	chatHandler := api.NewChatHandler(sessions, manager, binding, registry, modelService)
	modelHandler := api.NewModelHandler(modelService)
	jobHandler := api.NewJobHandler(tracker)
	router := api.NewRouter(chatHandler, modelHandler, jobHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for long-running message dispatch
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func waitForEngine(engineURL string) {
	slog.Info("Waiting for engine to be ready...")
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		resp, err := client.Get(engineURL + "/healthz")
		if err == nil && resp.StatusCode == http.StatusOK {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in engine health check", "error", bErr)
			}
			slog.Info("Engine is ready.")
			return
		}
		if resp != nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in engine health check (retry path)", "error", bErr)
			}
		}
		slog.Debug("Engine not ready yet, retrying in 3 seconds...", "url", engineURL, "error", err)
		time.Sleep(3 * time.Second)
	}
}

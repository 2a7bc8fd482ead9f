package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/walkguardian/guardian-server-go/internal/analysis"
	"github.com/walkguardian/guardian-server-go/internal/config"
	"github.com/walkguardian/guardian-server-go/internal/geocode"
	"github.com/walkguardian/guardian-server-go/internal/handler"
	"github.com/walkguardian/guardian-server-go/internal/jobs"
	"github.com/walkguardian/guardian-server-go/internal/middleware"
	"github.com/walkguardian/guardian-server-go/internal/notify"
	"github.com/walkguardian/guardian-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	analyzer := buildAnalyzer(cfg)

	dispatcher := notify.NewDispatcher(cfg.NtfyBaseURL)
	sessionService := service.NewSessionService(dispatcher, cfg.TranscriptCapacity)
	escalationService := service.NewEscalationService(sessionService, analyzer)
	geocodeClient := geocode.NewClient()

	sessionHandler := handler.NewSessionHandler(sessionService, escalationService)
	geocodeHandler := handler.NewGeocodeHandler(geocodeClient)

	rateLimitMiddleware := middleware.NewIPRateLimitMiddleware(cfg.RateLimitPerMin)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(middleware.BodyLimit)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Mount("/api/session", sessionHandler.Routes())
	r.Mount("/api/geocode", geocodeHandler.Routes())

	watchdog := jobs.NewStaleLocationWatchdog(sessionService, config.WatchdogInterval, cfg.StaleLocationAfter())
	watchdog.Start()
	defer watchdog.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildAnalyzer picks the Ark-backed analyzer when credentials are present
// and falls back to keyword matching otherwise.
func buildAnalyzer(cfg *config.Config) analysis.Analyzer {
	if !cfg.AnalyzerEnabled() {
		log.Warn().Msg("ARK_API_KEY not set, using keyword analyzer")
		return analysis.NewKeywordAnalyzer()
	}

	systemPrompt, err := analysis.LoadSystemPrompt(cfg.RiskPromptPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load risk prompt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat model")
	}

	analyzer, err := analysis.NewModelAnalyzer(ctx, chatModel, systemPrompt)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build analyzer chain")
	}

	log.Info().Str("model", cfg.ArkModel).Msg("model analyzer ready")
	return analyzer
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lwozdev/10x-cards/internal/adapter/repo"
	"github.com/lwozdev/10x-cards/internal/http/handlers"
	"github.com/lwozdev/10x-cards/internal/http/httpapi"
	"github.com/lwozdev/10x-cards/internal/infra"
	"github.com/lwozdev/10x-cards/internal/providers/genai"
	"github.com/lwozdev/10x-cards/internal/service"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	jobs := repo.NewGenerationJobRepository(dbpool)
	sets := repo.NewSetRepository(dbpool)

	generator, err := genai.NewOpenAIGenerator(genai.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		CallTimeout:  cfg.OpenAICallTimeout,
		Retry: genai.RetryPolicy{
			MaxAttempts: uint(cfg.GenerationMaxAttempts),
			BaseDelay:   cfg.GenerationRetryDelay,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}

	generationSvc := service.NewGenerationService(generator, jobs, logger)
	setSvc := service.NewSetService(sets, jobs, logger)

	app := handlers.NewApp(generationSvc, setSvc, logger)
	router := httpapi.NewRouter(cfg, app, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

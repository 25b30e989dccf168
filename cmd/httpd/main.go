package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gramhealth/assistant/internal/api"
	"github.com/gramhealth/assistant/internal/assistant"
	"github.com/gramhealth/assistant/internal/config"
	"github.com/gramhealth/assistant/internal/dataset"
	"github.com/gramhealth/assistant/internal/diseases"
	"github.com/gramhealth/assistant/internal/hospitals"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/pregnancy"
	"github.com/gramhealth/assistant/internal/retriever"
	"github.com/gramhealth/assistant/internal/schemes"
	"github.com/gramhealth/assistant/internal/telemetry"
	"github.com/gramhealth/assistant/internal/triage"
)

func main() {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		logging.Must(logging.Config{}).Fatal("load configuration", logging.Error(err))
	}

	logger := logging.Must(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: outputPaths(cfg.Logging.Output),
	})
	defer func() { _ = logger.Sync() }()

	logger.Info("starting assistant service",
		logging.String("name", cfg.Service.Name),
		logging.String("version", cfg.Service.Version),
		logging.Int("port", cfg.Service.Port),
	)

	// Datasets are loaded once at startup; a malformed dataset is fatal.
	diseaseRecords, err := dataset.LoadDiseases(cfg.Datasets.DiseasesPath)
	if err != nil {
		logger.Fatal("load disease dataset", logging.Error(err))
	}
	documents, err := dataset.LoadKnowledge(cfg.Datasets.KnowledgePaths...)
	if err != nil {
		logger.Fatal("load knowledge datasets", logging.Error(err))
	}
	schemeCatalog, err := dataset.LoadSchemes(cfg.Datasets.SchemesPath)
	if err != nil {
		logger.Fatal("load scheme dataset", logging.Error(err))
	}
	logger.Info("datasets loaded",
		logging.Int("diseases", len(diseaseRecords)),
		logging.Int("documents", len(documents)),
		logging.Int("schemes", len(schemeCatalog)),
	)

	var hospitalLocator *hospitals.Locator
	if cfg.Hospitals.Enabled {
		hospitalLocator, err = hospitals.NewLocator(hospitals.Options{
			CachePath: cfg.Hospitals.CachePath,
			SeedPath:  cfg.Hospitals.SeedPath,
			CacheTTL:  cfg.Hospitals.CacheTTL,
			Logger:    logger.With(logging.String("component", "hospitals")),
		})
		if err != nil {
			logger.Fatal("initialize hospital locator", logging.Error(err))
		}
	}

	diseaseEngine := diseases.NewEngine(diseaseRecords, logger.With(logging.String("component", "diseases")))
	knowledgeRetriever := retriever.New(documents, logger.With(logging.String("component", "retriever")))
	schemeService := schemes.NewService(schemeCatalog)
	healthAssistant := assistant.New(
		triage.NewScanner(),
		schemeService,
		diseaseEngine,
		pregnancy.NewService(),
		knowledgeRetriever,
		hospitalLocator,
		logger.With(logging.String("component", "assistant")),
	)

	provider := telemetry.NewProvider()

	handler := api.NewHandler(
		healthAssistant,
		schemeService,
		diseaseEngine,
		hospitalLocator,
		provider,
		logger.With(logging.String("component", "api")),
		cfg.Service.Name,
		cfg.Service.Version,
	)
	server := api.NewServer(handler, api.ServerConfig{
		Port:         cfg.Service.Port,
		ReadTimeout:  cfg.Service.RequestTimeout,
		WriteTimeout: cfg.Service.RequestTimeout,
		Debug:        cfg.Service.Debug,
	}, provider, logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Fatal("server error", logging.Error(err))
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Fatal("graceful shutdown failed", logging.Error(err))
		}
		logger.Info("server stopped gracefully")
	}
}

func outputPaths(output string) []string {
	if output == "" {
		return nil
	}
	return []string{output}
}

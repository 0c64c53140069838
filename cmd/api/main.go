package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/api"
	"github.com/BrunoXDR/project-manager-v2/internal/auth"
	"github.com/BrunoXDR/project-manager-v2/internal/config"
	"github.com/BrunoXDR/project-manager-v2/internal/logging"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
	"github.com/BrunoXDR/project-manager-v2/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	rules := workflow.DefaultGateRules()
	if cfg.QualityGatesFile != "" {
		rules, err = workflow.LoadGateRules(cfg.QualityGatesFile)
		if err != nil {
			logger.Fatal("load quality gates", zap.String("path", cfg.QualityGatesFile), zap.Error(err))
		}
	}

	store, err := storage.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer store.Close()

	blob, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		logger.Fatal("connect minio", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("postgres ping", zap.Error(err))
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("connect temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	dispatcher := appTemporal.NewDispatcher(temporalClient, cfg.TemporalTaskQueue, cfg.WorkflowIDPrefix)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	h := api.NewHandler(cfg, store, blob, dispatcher, workflow.NewService(rules), tokens, logger)
	router := api.NewRouter(h, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening", zap.String("port", cfg.HTTPPort), zap.Strings("gated_phases", phaseNames(rules)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func phaseNames(rules workflow.GateRules) []string {
	phases := rules.Phases()
	out := make([]string, 0, len(phases))
	for _, p := range phases {
		out = append(out, string(p))
	}
	return out
}

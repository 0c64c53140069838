package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/config"
	"github.com/BrunoXDR/project-manager-v2/internal/events"
	"github.com/BrunoXDR/project-manager-v2/internal/logging"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
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

	blob, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		logger.Fatal("connect minio", zap.Error(err))
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
	source := events.NewMinioUploadEventSource(blob.Client(), blob.Bucket(), "", "", logger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening for object-created events", zap.String("bucket", blob.Bucket()))
	err = source.Run(ctx, func(parent context.Context, event events.UploadEvent) error {
		execCtx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()

		workflowID, startErr := dispatcher.DocumentUploaded(execCtx, appTemporal.DocumentUploadedInput{
			DocumentID: event.DocumentID,
			ProjectID:  event.ProjectID,
			ObjectKey:  event.ObjectKey,
		})
		if startErr != nil {
			return fmt.Errorf("start workflow for object %s: %w", event.ObjectKey, startErr)
		}

		logger.Info("document workflow started",
			zap.String("workflow_id", workflowID),
			zap.String("object_key", event.ObjectKey),
		)
		return nil
	})
	if err != nil {
		logger.Fatal("event-handler stopped with error", zap.Error(err))
	}
}

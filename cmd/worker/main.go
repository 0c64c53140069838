package main

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/config"
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

	store, err := storage.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer store.Close()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("connect temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	activities := &appTemporal.Activities{
		Store:  store,
		Logger: logger.Named("activities"),
	}

	w := worker.New(temporalClient, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(appTemporal.PhaseAdvancedWorkflow, workflow.RegisterOptions{Name: appTemporal.PhaseAdvancedWorkflowName})
	w.RegisterWorkflowWithOptions(appTemporal.DocumentUploadedWorkflow, workflow.RegisterOptions{Name: appTemporal.DocumentUploadedWorkflowName})
	w.RegisterActivity(activities.LoadStakeholdersActivity)
	w.RegisterActivity(activities.LoadDocumentActivity)
	w.RegisterActivity(activities.NotifyStakeholdersActivity)
	w.RegisterActivity(activities.RecordAuditActivity)

	logger.Info("worker running", zap.String("task_queue", cfg.TemporalTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}
}

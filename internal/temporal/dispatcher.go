package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

// Dispatcher starts and signals the project workflows on a task queue.
type Dispatcher struct {
	client    client.Client
	taskQueue string
	idPrefix  string
}

func NewDispatcher(c client.Client, taskQueue, idPrefix string) *Dispatcher {
	return &Dispatcher{client: c, taskQueue: taskQueue, idPrefix: idPrefix}
}

func PhaseAdvancedWorkflowID(projectID string, phase domain.ProjectPhase) string {
	return fmt.Sprintf("phase-advanced-%s-%s", projectID, phase)
}

func DocumentWorkflowID(prefix, documentID string) string {
	if prefix == "" {
		return "document-" + documentID
	}
	return fmt.Sprintf("%s-document-%s", prefix, documentID)
}

// PhaseAdvanced returns the workflow id. A workflow already running under
// that id is not an error.
func (d *Dispatcher) PhaseAdvanced(ctx context.Context, input PhaseAdvancedInput) (string, error) {
	id := PhaseAdvancedWorkflowID(input.ProjectID, input.ToPhase)
	return id, d.start(ctx, id, PhaseAdvancedWorkflowName, input)
}

func (d *Dispatcher) DocumentUploaded(ctx context.Context, input DocumentUploadedInput) (string, error) {
	id := DocumentWorkflowID(d.idPrefix, input.DocumentID)
	return id, d.start(ctx, id, DocumentUploadedWorkflowName, input)
}

func (d *Dispatcher) DocumentReviewed(ctx context.Context, documentID string, signal DocumentReviewSignal) error {
	id := DocumentWorkflowID(d.idPrefix, documentID)
	if err := d.client.SignalWorkflow(ctx, id, "", DocumentReviewSignalName, signal); err != nil {
		return fmt.Errorf("signal %s: %w", id, err)
	}
	return nil
}

func (d *Dispatcher) start(ctx context.Context, id, workflowName string, input any) error {
	_, err := d.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: d.taskQueue,
	}, workflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return fmt.Errorf("start %s: %w", id, err)
	}
	return nil
}

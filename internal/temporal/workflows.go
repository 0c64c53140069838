// Package temporal holds the durable side effects that follow a project
// event: stakeholder notifications and their audit trail.
package temporal

import (
	"strconv"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const (
	PhaseAdvancedWorkflowName    = "PhaseAdvancedWorkflow"
	DocumentUploadedWorkflowName = "DocumentUploadedWorkflow"

	defaultReviewTimeout = 7 * 24 * time.Hour
)

type PhaseAdvancedInput struct {
	ProjectID   string
	ProjectName string
	FromPhase   domain.ProjectPhase
	ToPhase     domain.ProjectPhase
	ActorID     string
}

type PhaseAdvancedResult struct {
	ProjectID string
	Notified  int
}

func PhaseAdvancedWorkflow(ctx workflow.Context, input PhaseAdvancedInput) (PhaseAdvancedResult, error) {
	var stakeholders LoadStakeholdersOutput
	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyLoadStakeholders), (*Activities).LoadStakeholdersActivity, LoadStakeholdersInput{
		ProjectID: input.ProjectID,
	}).Get(ctx, &stakeholders); err != nil {
		return PhaseAdvancedResult{}, err
	}

	name := input.ProjectName
	if name == "" {
		name = stakeholders.ProjectName
	}

	var notified NotifyStakeholdersOutput
	if len(stakeholders.Recipients) > 0 {
		if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyNotifyStakeholders), (*Activities).NotifyStakeholdersActivity, NotifyStakeholdersInput{
			Recipients:  stakeholders.Recipients,
			Message:     domain.PhaseAdvancedMessage(name, input.FromPhase, input.ToPhase),
			Link:        domain.ProjectLink(input.ProjectID),
			DeliveryKey: deliveryKey(ctx, "phase-advanced"),
		}).Get(ctx, &notified); err != nil {
			return PhaseAdvancedResult{}, err
		}
	}

	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyRecordAudit), (*Activities).RecordAuditActivity, RecordAuditInput{
		ActorID: optionalActor(input.ActorID),
		Action:  domain.AuditPhaseNotificationSent,
		Details: map[string]string{
			"project_id": input.ProjectID,
			"from":       string(input.FromPhase),
			"to":         string(input.ToPhase),
			"recipients": strconv.Itoa(notified.Sent),
		},
	}).Get(ctx, nil); err != nil {
		return PhaseAdvancedResult{}, err
	}

	return PhaseAdvancedResult{ProjectID: input.ProjectID, Notified: notified.Sent}, nil
}

type DocumentUploadedInput struct {
	DocumentID    string
	ProjectID     string
	ObjectKey     string
	ReviewTimeout time.Duration
}

type DocumentUploadedResult struct {
	DocumentID string
	Notified   int
	Decision   domain.DocumentStatus
}

// DocumentUploadedWorkflow announces a new document to the project
// stakeholders and then waits for the review decision signal, announcing
// that too. Without a decision before the review timeout it completes with
// an empty Decision.
func DocumentUploadedWorkflow(ctx workflow.Context, input DocumentUploadedInput) (DocumentUploadedResult, error) {
	var loaded LoadDocumentOutput
	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyLoadDocument), (*Activities).LoadDocumentActivity, LoadDocumentInput{
		DocumentID: input.DocumentID,
	}).Get(ctx, &loaded); err != nil {
		return DocumentUploadedResult{}, err
	}

	result := DocumentUploadedResult{DocumentID: input.DocumentID}
	link := domain.ProjectLink(loaded.Document.ProjectID)
	notifyCtx := mustActivityContext(ctx, ActivityPolicyNotifyStakeholders)

	if len(loaded.Recipients) > 0 {
		var notified NotifyStakeholdersOutput
		if err := workflow.ExecuteActivity(notifyCtx, (*Activities).NotifyStakeholdersActivity, NotifyStakeholdersInput{
			Recipients:  loaded.Recipients,
			Message:     domain.DocumentAwaitingReviewMessage(loaded.Document.Name),
			Link:        link,
			DeliveryKey: deliveryKey(ctx, "document-uploaded"),
		}).Get(ctx, &notified); err != nil {
			return DocumentUploadedResult{}, err
		}
		result.Notified = notified.Sent
	}

	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyRecordAudit), (*Activities).RecordAuditActivity, RecordAuditInput{
		Action: domain.AuditDocumentUploaded,
		Details: map[string]string{
			"project_id":  loaded.Document.ProjectID,
			"document_id": input.DocumentID,
			"object_key":  input.ObjectKey,
			"name":        loaded.Document.Name,
		},
	}).Get(ctx, nil); err != nil {
		return DocumentUploadedResult{}, err
	}

	decision := awaitReview(ctx, input.ReviewTimeout)
	if !decision.decided() {
		workflow.GetLogger(ctx).Info("document review not received before timeout", "DocumentID", input.DocumentID)
		return result, nil
	}
	result.Decision = decision.Status

	if len(loaded.Recipients) > 0 {
		var notified NotifyStakeholdersOutput
		if err := workflow.ExecuteActivity(notifyCtx, (*Activities).NotifyStakeholdersActivity, NotifyStakeholdersInput{
			Recipients:  loaded.Recipients,
			Message:     domain.DocumentReviewedMessage(loaded.Document.Name, decision.Status),
			Link:        link,
			DeliveryKey: deliveryKey(ctx, "document-reviewed"),
		}).Get(ctx, &notified); err != nil {
			return DocumentUploadedResult{}, err
		}
		result.Notified += notified.Sent
	}
	return result, nil
}

func awaitReview(ctx workflow.Context, timeout time.Duration) DocumentReviewSignal {
	if timeout <= 0 {
		timeout = defaultReviewTimeout
	}
	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	defer cancelTimer()
	timer := workflow.NewTimer(timerCtx, timeout)
	reviews := workflow.GetSignalChannel(ctx, DocumentReviewSignalName)

	var decision DocumentReviewSignal
	timedOut := false
	for !decision.decided() && !timedOut {
		selector := workflow.NewSelector(ctx)
		selector.AddReceive(reviews, func(c workflow.ReceiveChannel, _ bool) {
			var signal DocumentReviewSignal
			c.Receive(ctx, &signal)
			if signal.decided() {
				decision = signal
			}
		})
		selector.AddFuture(timer, func(workflow.Future) {
			timedOut = true
		})
		selector.Select(ctx)
	}
	return decision
}

func deliveryKey(ctx workflow.Context, step string) string {
	return workflow.GetInfo(ctx).WorkflowExecution.RunID + "/" + step
}

func optionalActor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

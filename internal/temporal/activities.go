package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

const errTypeNotFound = "NotFound"

type ActivityStore interface {
	GetProject(ctx context.Context, id string) (domain.Project, error)
	GetDocumentByID(ctx context.Context, documentID string) (domain.Document, error)
	CreateNotification(ctx context.Context, deliveryKey, userID, message string, link *string) error
	InsertAudit(ctx context.Context, userID *string, action domain.AuditAction, details any) error
}

type Activities struct {
	Store  ActivityStore
	Logger *zap.Logger
}

type LoadStakeholdersInput struct {
	ProjectID string
}

type LoadStakeholdersOutput struct {
	ProjectName string
	Recipients  []string
}

type LoadDocumentInput struct {
	DocumentID string
}

type LoadDocumentOutput struct {
	Document    domain.Document
	ProjectName string
	Recipients  []string
}

// NotifyStakeholdersInput carries a DeliveryKey that stays the same across
// retries of one notification step, so recipients served by an earlier
// attempt are not notified twice.
type NotifyStakeholdersInput struct {
	Recipients  []string
	Message     string
	Link        *string
	DeliveryKey string
}

type NotifyStakeholdersOutput struct {
	Sent int
}

type RecordAuditInput struct {
	ActorID *string
	Action  domain.AuditAction
	Details map[string]string
}

func (a *Activities) LoadStakeholdersActivity(ctx context.Context, input LoadStakeholdersInput) (LoadStakeholdersOutput, error) {
	project, err := a.Store.GetProject(ctx, input.ProjectID)
	if err != nil {
		return LoadStakeholdersOutput{}, classify(err)
	}
	return LoadStakeholdersOutput{
		ProjectName: project.Name,
		Recipients:  project.Stakeholders(),
	}, nil
}

func (a *Activities) LoadDocumentActivity(ctx context.Context, input LoadDocumentInput) (LoadDocumentOutput, error) {
	doc, err := a.Store.GetDocumentByID(ctx, input.DocumentID)
	if err != nil {
		return LoadDocumentOutput{}, classify(err)
	}
	project, err := a.Store.GetProject(ctx, doc.ProjectID)
	if err != nil {
		return LoadDocumentOutput{}, classify(err)
	}
	return LoadDocumentOutput{
		Document:    doc,
		ProjectName: project.Name,
		Recipients:  project.Stakeholders(),
	}, nil
}

func (a *Activities) NotifyStakeholdersActivity(ctx context.Context, input NotifyStakeholdersInput) (NotifyStakeholdersOutput, error) {
	seen := make(map[string]struct{}, len(input.Recipients))
	sent := 0
	for _, userID := range input.Recipients {
		if _, dup := seen[userID]; dup || userID == "" {
			continue
		}
		seen[userID] = struct{}{}
		if err := a.Store.CreateNotification(ctx, recipientKey(input.DeliveryKey, userID), userID, input.Message, input.Link); err != nil {
			return NotifyStakeholdersOutput{}, fmt.Errorf("notify %s: %w", userID, err)
		}
		sent++
	}
	a.logger().Info("stakeholders notified", zap.Int("recipients", sent), zap.String("message", input.Message))
	return NotifyStakeholdersOutput{Sent: sent}, nil
}

func recipientKey(deliveryKey, userID string) string {
	if deliveryKey == "" {
		return ""
	}
	return deliveryKey + "/" + userID
}

func (a *Activities) RecordAuditActivity(ctx context.Context, input RecordAuditInput) error {
	return a.Store.InsertAudit(ctx, input.ActorID, input.Action, input.Details)
}

func (a *Activities) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// classify turns a missing record into a non-retryable failure; anything
// else is left to the retry policy.
func classify(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeNotFound, err)
	}
	return err
}

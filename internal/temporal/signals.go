package temporal

import (
	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const DocumentReviewSignalName = "documentReviewed"

// DocumentReviewSignal is sent to a running DocumentUploadedWorkflow once a
// reviewer approves or rejects the document.
type DocumentReviewSignal struct {
	Status     domain.DocumentStatus `json:"status"`
	ReviewerID string                `json:"reviewer_id,omitempty"`
}

func (s DocumentReviewSignal) decided() bool {
	return s.Status == domain.DocumentApproved || s.Status == domain.DocumentRejected
}

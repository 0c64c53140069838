package workflow

import (
	"errors"
	"fmt"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

// ErrInvalidPhase means the project's phase is not part of the ordering,
// which points at bad data rather than a business condition.
var ErrInvalidPhase = errors.New("project phase is invalid or not sequenced")

// QualityGateError reports every unmet requirement of the phase being left.
type QualityGateError struct {
	Phase   domain.ProjectPhase
	Missing []string
}

func (e *QualityGateError) Error() string {
	return e.Message()
}

func (e *QualityGateError) Message() string {
	return fmt.Sprintf("quality gate for phase '%s' failed", e.Phase)
}

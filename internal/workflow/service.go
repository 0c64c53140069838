// Package workflow decides project phase advancement. It is a pure function
// of a project's phase and its documents: callers fetch the inputs and own
// persistence, audit and notification side effects.
package workflow

import (
	"fmt"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

type Service struct {
	rules GateRules
	order []domain.ProjectPhase
}

func NewService(rules GateRules) *Service {
	return &Service{
		rules: rules,
		order: append([]domain.ProjectPhase(nil), domain.PhaseOrder...),
	}
}

// GateReport is the evaluation of the current phase's gate without advancing.
type GateReport struct {
	Phase        domain.ProjectPhase  `json:"phase"`
	NextPhase    *domain.ProjectPhase `json:"next_phase,omitempty"`
	Terminal     bool                 `json:"terminal"`
	Invalid      bool                 `json:"invalid,omitempty"`
	Passed       bool                 `json:"passed"`
	Requirements []RequirementCheck   `json:"requirements"`
	Missing      []string             `json:"missing"`
}

type RequirementCheck struct {
	Requirement
	Satisfied bool `json:"satisfied"`
}

// AdvancePhase moves the project exactly one phase forward when the gate of
// its current phase is satisfied. Only Phase is changed on the returned copy.
func (s *Service) AdvancePhase(project domain.Project, documents []domain.Document) (domain.Project, error) {
	if s.isTerminal(project.Phase) {
		return project, nil
	}

	if missing := s.missingRequirements(project.Phase, documents); len(missing) > 0 {
		return project, &QualityGateError{Phase: project.Phase, Missing: missing}
	}

	next, ok := s.nextPhase(project.Phase)
	if !ok {
		return project, fmt.Errorf("advance %q: %w", project.Phase, ErrInvalidPhase)
	}
	project.Phase = next
	return project, nil
}

// EvaluateGate applies the same matching rules as AdvancePhase and reports
// each requirement individually.
func (s *Service) EvaluateGate(project domain.Project, documents []domain.Document) GateReport {
	report := GateReport{
		Phase:        project.Phase,
		Terminal:     s.isTerminal(project.Phase),
		Requirements: make([]RequirementCheck, 0),
		Missing:      make([]string, 0),
	}
	if report.Terminal {
		report.Passed = true
		return report
	}

	next, ok := s.nextPhase(project.Phase)
	if !ok {
		// AdvancePhase rejects the same project with ErrInvalidPhase.
		report.Invalid = true
		return report
	}
	report.NextPhase = &next

	reqs, _ := s.rules.Requirements(project.Phase)
	for _, req := range reqs {
		satisfied := hasEvidence(documents, req)
		report.Requirements = append(report.Requirements, RequirementCheck{Requirement: req, Satisfied: satisfied})
		if !satisfied {
			report.Missing = append(report.Missing, req.String())
		}
	}
	report.Passed = len(report.Missing) == 0
	return report
}

func (s *Service) isTerminal(phase domain.ProjectPhase) bool {
	return phase == domain.PhaseClose
}

func (s *Service) missingRequirements(phase domain.ProjectPhase, documents []domain.Document) []string {
	reqs, ok := s.rules.Requirements(phase)
	if !ok {
		return nil
	}
	missing := make([]string, 0)
	for _, req := range reqs {
		if !hasEvidence(documents, req) {
			missing = append(missing, req.String())
		}
	}
	return missing
}

func (s *Service) nextPhase(phase domain.ProjectPhase) (domain.ProjectPhase, bool) {
	for i, p := range s.order {
		if p != phase {
			continue
		}
		if i+1 < len(s.order) {
			return s.order[i+1], true
		}
		return p, true
	}
	return "", false
}

func hasEvidence(documents []domain.Document, req Requirement) bool {
	for _, doc := range documents {
		if doc.Type == req.DocumentType && doc.Status == req.Status {
			return true
		}
	}
	return false
}

package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

// Requirement is a piece of document evidence needed to leave a phase.
type Requirement struct {
	DocumentType string                `yaml:"type" json:"document_type"`
	Status       domain.DocumentStatus `yaml:"status" json:"status"`
}

func (r Requirement) String() string {
	return fmt.Sprintf("required document: type '%s' with status '%s'", r.DocumentType, r.Status)
}

// GateRules maps a phase to the requirements for leaving it. A phase with no
// entry has free passage. The zero value has no rules at all.
type GateRules struct {
	rules map[domain.ProjectPhase][]Requirement
}

func NewGateRules(rules map[domain.ProjectPhase][]Requirement) GateRules {
	copied := make(map[domain.ProjectPhase][]Requirement, len(rules))
	for phase, reqs := range rules {
		copied[phase] = append([]Requirement(nil), reqs...)
	}
	return GateRules{rules: copied}
}

func DefaultGateRules() GateRules {
	return NewGateRules(map[domain.ProjectPhase][]Requirement{
		domain.PhaseDefinition: {
			{DocumentType: "BRD", Status: domain.DocumentApproved},
		},
		domain.PhaseBuilt: {
			{DocumentType: "LLD", Status: domain.DocumentApproved},
		},
	})
}

// Requirements reports the requirements for leaving phase and whether the
// phase has an entry at all. The returned slice is a copy.
func (g GateRules) Requirements(phase domain.ProjectPhase) ([]Requirement, bool) {
	reqs, ok := g.rules[phase]
	if !ok {
		return nil, false
	}
	return append([]Requirement(nil), reqs...), true
}

// Phases lists the gated phases in lifecycle order.
func (g GateRules) Phases() []domain.ProjectPhase {
	out := make([]domain.ProjectPhase, 0, len(g.rules))
	for _, phase := range domain.PhaseOrder {
		if _, ok := g.rules[phase]; ok {
			out = append(out, phase)
		}
	}
	return out
}

type gateFile struct {
	Gates map[string][]Requirement `yaml:"gates"`
}

// LoadGateRules reads a rule table such as:
//
//	gates:
//	  definition:
//	    - {type: BRD, status: approved}
func LoadGateRules(path string) (GateRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GateRules{}, fmt.Errorf("read gate rules: %w", err)
	}
	return ParseGateRules(raw)
}

func ParseGateRules(raw []byte) (GateRules, error) {
	var file gateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return GateRules{}, fmt.Errorf("parse gate rules: %w", err)
	}

	rules := make(map[domain.ProjectPhase][]Requirement, len(file.Gates))
	for name, reqs := range file.Gates {
		phase := domain.ProjectPhase(name)
		if !phase.Valid() {
			return GateRules{}, fmt.Errorf("gate rules: unknown phase %q", name)
		}
		for i, req := range reqs {
			if req.DocumentType == "" {
				return GateRules{}, fmt.Errorf("gate rules: phase %q requirement %d has no document type", name, i)
			}
			if !req.Status.Valid() {
				return GateRules{}, fmt.Errorf("gate rules: phase %q requirement %d has unknown status %q", name, i, req.Status)
			}
		}
		rules[phase] = reqs
	}
	return NewGateRules(rules), nil
}

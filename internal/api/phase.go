package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
	"github.com/BrunoXDR/project-manager-v2/internal/workflow"
)

const dispatchTimeout = 5 * time.Second

type qualityGateDetail struct {
	Message string   `json:"message"`
	Missing []string `json:"missing"`
}

// AdvancePhase asks the workflow engine for the next phase and persists the
// decision. A project already in the terminal phase is returned unchanged.
func (h *Handler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	project, documents, ok := h.loadProjectEvidence(ctx, w, r, projectID)
	if !ok {
		return
	}

	advanced, err := h.engine.AdvancePhase(project, documents)
	if err != nil {
		var gateErr *workflow.QualityGateError
		switch {
		case errors.As(err, &gateErr):
			writeDetail(w, http.StatusBadRequest, qualityGateDetail{
				Message: gateErr.Message(),
				Missing: gateErr.Missing,
			})
		case errors.Is(err, workflow.ErrInvalidPhase):
			writeDetail(w, http.StatusBadRequest, err.Error())
		default:
			h.writeStoreError(w, r, "Project", err)
		}
		return
	}
	if advanced.Phase == project.Phase {
		writeJSON(w, http.StatusOK, advanced)
		return
	}

	actor := currentUser(r)
	saved, created, err := h.store.AdvanceProjectPhase(ctx, advanced, project.Phase, actor.ID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}

	h.logger.Info("project phase advanced",
		zap.String("project_id", saved.ID),
		zap.String("from", string(project.Phase)),
		zap.String("to", string(saved.Phase)),
		zap.Int("template_tasks", len(created)),
		zap.String("actor_id", actor.ID),
	)
	h.dispatchPhaseAdvanced(r.Context(), appTemporal.PhaseAdvancedInput{
		ProjectID:   saved.ID,
		ProjectName: saved.Name,
		FromPhase:   project.Phase,
		ToPhase:     saved.Phase,
		ActorID:     actor.ID,
	})

	writeJSON(w, http.StatusOK, saved)
}

// dispatchPhaseAdvanced never fails the request; the phase change is already
// committed.
func (h *Handler) dispatchPhaseAdvanced(parent context.Context, input appTemporal.PhaseAdvancedInput) {
	if h.workflows == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), dispatchTimeout)
	defer cancel()

	workflowID, err := h.workflows.PhaseAdvanced(ctx, input)
	if err != nil {
		h.logger.Error("start phase notification workflow",
			zap.String("project_id", input.ProjectID),
			zap.String("phase", string(input.ToPhase)),
			zap.Error(err),
		)
		return
	}
	h.logger.Info("phase notification workflow started", zap.String("workflow_id", workflowID))
}

func (h *Handler) QualityGate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	project, documents, ok := h.loadProjectEvidence(ctx, w, r, projectID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.EvaluateGate(project, documents))
}

func (h *Handler) loadProjectEvidence(ctx context.Context, w http.ResponseWriter, r *http.Request, projectID string) (domain.Project, []domain.Document, bool) {
	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return domain.Project{}, nil, false
	}
	documents, err := h.store.ListDocuments(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return domain.Project{}, nil, false
	}
	return project, documents, true
}

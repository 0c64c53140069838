package api

import (
	"context"
	"net/http"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListProjects(ctx)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var in domain.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if failed := domain.ValidateProjectInput(in); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}

	project, err := h.store.CreateProject(ctx, in, currentUser(r).ID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject applies a partial update. The phase is not writable here;
// it only moves through advance-phase.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var patch domain.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}

	current, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	if failed := domain.ValidateProjectPatch(current, patch); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}

	updated, err := h.store.UpdateProject(ctx, domain.ApplyProjectPatch(current, patch))
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	if err := h.store.DeleteProject(ctx, projectID, currentUser(r).ID); err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

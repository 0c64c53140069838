package api

import (
	"context"
	"net/http"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const taskSubject = "Task"

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListTasks(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var in domain.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if failed := domain.ValidateTaskInput(in); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}
	if _, err := h.store.GetProject(ctx, projectID); err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}

	task, err := h.store.CreateTask(ctx, projectID, in)
	if err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	task, err := h.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var patch domain.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if failed := domain.ValidateTaskPatch(patch); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}

	current, err := h.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	task, err := h.store.UpdateTask(ctx, current, domain.ApplyTaskPatch(current, patch))
	if err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	if err := h.store.DeleteTask(ctx, projectID, taskID); err != nil {
		h.writeStoreError(w, r, taskSubject, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return "", "", false
	}
	taskID, ok := pathID(w, r, "taskID", taskSubject)
	if !ok {
		return "", "", false
	}
	return projectID, taskID, true
}

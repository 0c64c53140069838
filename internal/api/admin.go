package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxAuditPage    = 1_000_000
)

func (h *Handler) MyNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListUnreadNotifications(ctx, currentUser(r).ID)
	if err != nil {
		h.writeStoreError(w, r, "Notification", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkNotificationRead answers 404 for notifications of other users.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := pathID(w, r, "notificationID", "Notification")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	n, err := h.store.MarkNotificationRead(ctx, notificationID, currentUser(r).ID)
	if err != nil {
		h.writeStoreError(w, r, "Notification", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) ListTaskTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListTaskTemplates(ctx)
	if err != nil {
		h.writeStoreError(w, r, "Task template", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateTaskTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var tmpl domain.TaskTemplate
	if err := decodeJSON(r, &tmpl); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if failed := domain.ValidateTemplate(tmpl); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}

	created, err := h.store.CreateTaskTemplate(ctx, tmpl)
	if err != nil {
		h.writeStoreError(w, r, "Task template", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 || page > maxAuditPage {
		writeDetail(w, http.StatusUnprocessableEntity, "page must be between 1 and 1000000")
		return
	}
	size, ok := queryInt(r, "size", defaultPageSize)
	if !ok || size < 1 || size > maxPageSize {
		writeDetail(w, http.StatusUnprocessableEntity, "size must be between 1 and 100")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	out, err := h.store.ListAuditLogs(ctx, page, size)
	if err != nil {
		h.writeStoreError(w, r, "Audit log", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (h *Handler) ProjectsBy(grouping storage.ProjectGrouping) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
		defer cancel()

		stats, err := h.store.CountProjectsBy(ctx, grouping)
		if err != nil {
			h.writeStoreError(w, r, "Project", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (h *Handler) OverdueProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListOverdueProjects(ctx)
	if err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

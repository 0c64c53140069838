package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/auth"
	"github.com/BrunoXDR/project-manager-v2/internal/config"
	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
	"github.com/BrunoXDR/project-manager-v2/internal/workflow"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 15 * time.Second
)

type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string, role domain.UserRole) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	RecordLogin(ctx context.Context, user domain.User) error
}

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	CreateProject(ctx context.Context, in domain.ProjectInput, actorID string) (domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id, actorID string) error
	AdvanceProjectPhase(ctx context.Context, advanced domain.Project, from domain.ProjectPhase, actorID string) (domain.Project, []domain.Task, error)
}

type DocumentStore interface {
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)
	GetDocument(ctx context.Context, projectID, documentID string) (domain.Document, error)
	CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error)
	UpdateDocument(ctx context.Context, projectID, documentID string, patch domain.DocumentPatch, actorID string) (domain.Document, error)
	DeleteDocument(ctx context.Context, projectID, documentID, actorID string) (domain.Document, error)
}

type TaskStore interface {
	ListTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	GetTask(ctx context.Context, projectID, taskID string) (domain.Task, error)
	CreateTask(ctx context.Context, projectID string, in domain.TaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, previous, next domain.Task) (domain.Task, error)
	DeleteTask(ctx context.Context, projectID, taskID string) error
}

type AdminStore interface {
	ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (domain.Notification, error)
	ListTaskTemplates(ctx context.Context) ([]domain.TaskTemplate, error)
	CreateTaskTemplate(ctx context.Context, tmpl domain.TaskTemplate) (domain.TaskTemplate, error)
	ListAuditLogs(ctx context.Context, page, size int) (storage.AuditPage, error)
	CountProjectsBy(ctx context.Context, grouping storage.ProjectGrouping) ([]domain.AnalyticsStat, error)
	ListOverdueProjects(ctx context.Context) ([]domain.Project, error)
}

type Store interface {
	Ping(ctx context.Context) error
	UserStore
	ProjectStore
	DocumentStore
	TaskStore
	AdminStore
}

type BlobStore interface {
	PutDocument(ctx context.Context, projectID, documentID, filename, contentType string, content []byte) (string, error)
	GetDocument(ctx context.Context, objectKey string) ([]byte, error)
	RemoveDocument(ctx context.Context, objectKey string) error
}

// WorkflowDispatcher hands post-commit side effects to Temporal.
type WorkflowDispatcher interface {
	PhaseAdvanced(ctx context.Context, input appTemporal.PhaseAdvancedInput) (string, error)
	DocumentReviewed(ctx context.Context, documentID string, signal appTemporal.DocumentReviewSignal) error
}

type Handler struct {
	cfg       config.Config
	store     Store
	blob      BlobStore
	workflows WorkflowDispatcher
	engine    *workflow.Service
	tokens    *auth.TokenIssuer
	logger    *zap.Logger
}

func NewHandler(cfg config.Config, store Store, blob BlobStore, workflows WorkflowDispatcher, engine *workflow.Service, tokens *auth.TokenIssuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:       cfg,
		store:     store,
		blob:      blob,
		workflows: workflows,
		engine:    engine,
		tokens:    tokens,
		logger:    logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

type validationDetail struct {
	Message     string   `json:"message"`
	FailedRules []string `json:"failed_rules"`
}

func writeValidation(w http.ResponseWriter, failed []string) {
	writeDetail(w, http.StatusUnprocessableEntity, validationDetail{
		Message:     "validation failed",
		FailedRules: failed,
	})
}

// writeStoreError maps storage sentinels onto HTTP; subject names the
// resource in the 404 message.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, subject string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeDetail(w, http.StatusNotFound, subject+" not found")
	case errors.Is(err, storage.ErrVersionConflict):
		writeDetail(w, http.StatusConflict, subject+" was modified by another request, reload and retry")
	case errors.Is(err, storage.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, context.DeadlineExceeded):
		writeDetail(w, http.StatusGatewayTimeout, "request timed out")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID reads a UUID route parameter. A malformed id cannot name a stored
// row, so it is answered like a missing one.
func pathID(w http.ResponseWriter, r *http.Request, param, subject string) (string, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeDetail(w, http.StatusNotFound, subject+" not found")
		return "", false
	}
	return id.String(), true
}

func currentUser(r *http.Request) domain.User {
	user, _ := auth.UserFrom(r.Context())
	return user
}

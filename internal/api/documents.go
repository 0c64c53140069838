package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
)

const documentSubject = "Document"

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	items, err := h.store.ListDocuments(ctx, projectID)
	if err != nil {
		h.writeStoreError(w, r, documentSubject, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// UploadDocument records the document row first and then writes the object,
// so the bucket notification for the object always finds its row.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.AllowedUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.cfg.AllowedUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file form field is required")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.cfg.AllowedUploadBytes+1))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(body)) > h.cfg.AllowedUploadBytes {
		writeDetail(w, http.StatusRequestEntityTooLarge, "file exceeds size limit")
		return
	}
	if len(body) == 0 {
		writeDetail(w, http.StatusBadRequest, "file is empty")
		return
	}
	filename, ok := sanitizeFilename(header.Filename)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid file name")
		return
	}

	if _, err := h.store.GetProject(ctx, projectID); err != nil {
		h.writeStoreError(w, r, "Project", err)
		return
	}

	documentID := uuid.NewString()
	contentType := resolveContentType(header.Header.Get("Content-Type"), body)
	doc, err := h.store.CreateDocument(ctx, domain.Document{
		ID:        documentID,
		ProjectID: projectID,
		Name:      filename,
		Type:      strings.TrimSpace(r.FormValue("type")),
		FileType:  contentType,
		ObjectKey: storage.DocumentObjectKey(projectID, documentID, filename),
		Status:    domain.DocumentUploaded,
	})
	if err != nil {
		h.writeStoreError(w, r, documentSubject, err)
		return
	}

	if _, err := h.blob.PutDocument(ctx, projectID, documentID, filename, contentType, body); err != nil {
		h.logger.Error("store document object", zap.String("document_id", documentID), zap.Error(err))
		if _, rollbackErr := h.store.DeleteDocument(context.WithoutCancel(ctx), projectID, documentID, currentUser(r).ID); rollbackErr != nil {
			h.logger.Error("discard document row", zap.String("document_id", documentID), zap.Error(rollbackErr))
		}
		writeDetail(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	documentID, ok := pathID(w, r, "documentID", documentSubject)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var patch domain.DocumentPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if failed := domain.ValidateDocumentPatch(patch); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}

	actor := currentUser(r)
	doc, err := h.store.UpdateDocument(ctx, projectID, documentID, patch, actor.ID)
	if err != nil {
		h.writeStoreError(w, r, documentSubject, err)
		return
	}

	if patch.Status != nil && h.workflows != nil {
		signal := appTemporal.DocumentReviewSignal{Status: doc.Status, ReviewerID: actor.ID}
		signalCtx, signalCancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer signalCancel()
		if err := h.workflows.DocumentReviewed(signalCtx, documentID, signal); err != nil {
			h.logger.Warn("signal document review", zap.String("document_id", documentID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	documentID, ok := pathID(w, r, "documentID", documentSubject)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	doc, err := h.store.DeleteDocument(ctx, projectID, documentID, currentUser(r).ID)
	if err != nil {
		h.writeStoreError(w, r, documentSubject, err)
		return
	}
	if err := h.blob.RemoveDocument(ctx, doc.ObjectKey); err != nil {
		h.logger.Warn("remove document object", zap.String("object_key", doc.ObjectKey), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	documentID, ok := pathID(w, r, "documentID", documentSubject)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	doc, err := h.store.GetDocument(ctx, projectID, documentID)
	if err != nil {
		h.writeStoreError(w, r, documentSubject, err)
		return
	}
	content, err := h.blob.GetDocument(ctx, doc.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Document file not found")
			return
		}
		h.writeStoreError(w, r, documentSubject, err)
		return
	}

	w.Header().Set("Content-Type", doc.FileType)
	w.Header().Set("Content-Length", fmt.Sprint(len(content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

package storage

import (
	"context"
	"fmt"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const documentColumns = `id, project_id, name, type, file_type, object_key, version, status, created_at, updated_at`

func scanDocument(row scanner) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Type, &d.FileType, &d.ObjectKey,
		&d.Version, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *PostgresStore) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetDocument returns the document only when it belongs to projectID.
func (s *PostgresStore) GetDocument(ctx context.Context, projectID, documentID string) (domain.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = $1 AND project_id = $2
	`, documentID, projectID))
	if err != nil {
		return domain.Document{}, notFound(err, "get document")
	}
	return d, nil
}

func (s *PostgresStore) GetDocumentByID(ctx context.Context, documentID string) (domain.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, documentID))
	if err != nil {
		return domain.Document{}, notFound(err, "get document")
	}
	return d, nil
}

// CreateDocument stores metadata for an object already written to the blob
// store. Re-uploading a name within a project bumps the version.
func (s *PostgresStore) CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if doc.Status == "" {
		doc.Status = domain.DocumentUploaded
	}
	d, err := scanDocument(s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, project_id, name, type, file_type, object_key, version, status)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM documents WHERE project_id = $2 AND name = $3),
			$7)
		RETURNING `+documentColumns,
		doc.ID, doc.ProjectID, doc.Name, doc.Type, doc.FileType, doc.ObjectKey, doc.Status))
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, projectID, documentID string, patch domain.DocumentPatch, actorID string) (domain.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Document{}, err
	}
	defer func() { _ = tx.Rollback() }()

	d, err := scanDocument(tx.QueryRowContext(ctx, `
		UPDATE documents
		SET name = COALESCE($3, name),
		    type = COALESCE($4, type),
		    status = COALESCE($5, status),
		    updated_at = NOW()
		WHERE id = $1 AND project_id = $2
		RETURNING `+documentColumns,
		documentID, projectID, patch.Name, patch.Type, patch.Status))
	if err != nil {
		return domain.Document{}, notFound(err, "update document")
	}
	if patch.Status != nil {
		if err := insertAudit(ctx, tx, &actorID, domain.AuditDocumentReviewed, map[string]string{
			"project_id":  projectID,
			"document_id": documentID,
			"status":      string(d.Status),
		}); err != nil {
			return domain.Document{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

// DeleteDocument removes the row and returns it so the caller can drop the
// stored object.
func (s *PostgresStore) DeleteDocument(ctx context.Context, projectID, documentID, actorID string) (domain.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Document{}, err
	}
	defer func() { _ = tx.Rollback() }()

	d, err := scanDocument(tx.QueryRowContext(ctx, `
		DELETE FROM documents WHERE id = $1 AND project_id = $2
		RETURNING `+documentColumns,
		documentID, projectID))
	if err != nil {
		return domain.Document{}, notFound(err, "delete document")
	}
	if err := insertAudit(ctx, tx, &actorID, domain.AuditDocumentDeleted, map[string]string{
		"project_id":  projectID,
		"document_id": documentID,
		"name":        d.Name,
	}); err != nil {
		return domain.Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

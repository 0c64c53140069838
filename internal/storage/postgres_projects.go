package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const projectColumns = `id, name, client, order_value, proposal, pct, phase, status,
	start_date, estimated_end_date, project_manager_id, technical_lead_id, version, created_at, updated_at`

func scanProject(row scanner) (domain.Project, error) {
	var (
		p                           domain.Project
		orderValue, proposal, pct   sql.NullString
		managerID, leadID           sql.NullString
		startDate, estimatedEndDate time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Client, &orderValue, &proposal, &pct, &p.Phase, &p.Status,
		&startDate, &estimatedEndDate, &managerID, &leadID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.OrderValue = nullableString(orderValue)
	p.Proposal = nullableString(proposal)
	p.PCT = nullableString(pct)
	p.ProjectManagerID = nullableString(managerID)
	p.TechnicalLeadID = nullableString(leadID)
	p.StartDate = startDate.Format(domain.DateLayout)
	p.EstimatedEndDate = estimatedEndDate.Format(domain.DateLayout)
	return p, nil
}

func collectProjects(rows *sql.Rows) ([]domain.Project, error) {
	defer rows.Close()
	items := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return collectProjects(rows)
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return domain.Project{}, notFound(err, "get project")
	}
	return p, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, in domain.ProjectInput, actorID string) (domain.Project, error) {
	phase := in.Phase
	if phase == "" {
		phase = domain.PhaseInception
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectActive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProject(tx.QueryRowContext(ctx, `
		INSERT INTO projects (id, name, client, order_value, proposal, pct, phase, status,
			start_date, estimated_end_date, project_manager_id, technical_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+projectColumns,
		newID(), in.Name, in.Client, in.OrderValue, in.Proposal, in.PCT, phase, status,
		in.StartDate, in.EstimatedEndDate, in.ProjectManagerID, in.TechnicalLeadID))
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	if err := insertAudit(ctx, tx, &actorID, domain.AuditProjectCreated, map[string]string{
		"project_id": p.ID,
		"name":       p.Name,
	}); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// UpdateProject writes every mutable field except phase. The caller's
// Version must match the stored one.
func (s *PostgresStore) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	updated, err := scanProject(s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET name = $3, client = $4, order_value = $5, proposal = $6, pct = $7, status = $8,
		    start_date = $9, estimated_end_date = $10, project_manager_id = $11, technical_lead_id = $12,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING `+projectColumns,
		p.ID, p.Version, p.Name, p.Client, p.OrderValue, p.Proposal, p.PCT, p.Status,
		p.StartDate, p.EstimatedEndDate, p.ProjectManagerID, p.TechnicalLeadID))
	if err == nil {
		return updated, nil
	}
	if err != sql.ErrNoRows {
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	return domain.Project{}, s.missingOrConflict(ctx, s.db, p.ID)
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id, actorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete project: %w", ErrNotFound)
	}
	if err := insertAudit(ctx, tx, &actorID, domain.AuditProjectDeleted, map[string]string{"project_id": id}); err != nil {
		return err
	}
	return tx.Commit()
}

// AdvanceProjectPhase persists an engine decision. The phase update is
// checked against advanced.Version, the audit entry and the tasks from every
// template bound to the new phase are written in the same transaction.
func (s *PostgresStore) AdvanceProjectPhase(ctx context.Context, advanced domain.Project, from domain.ProjectPhase, actorID string) (domain.Project, []domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	saved, err := scanProject(tx.QueryRowContext(ctx, `
		UPDATE projects
		SET phase = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING `+projectColumns,
		advanced.ID, advanced.Version, advanced.Phase))
	if err == sql.ErrNoRows {
		return domain.Project{}, nil, s.missingOrConflict(ctx, tx, advanced.ID)
	}
	if err != nil {
		return domain.Project{}, nil, fmt.Errorf("advance project phase: %w", err)
	}

	if err := insertAudit(ctx, tx, &actorID, domain.AuditPhaseAdvanced, map[string]string{
		"project_id": saved.ID,
		"from":       string(from),
		"to":         string(saved.Phase),
	}); err != nil {
		return domain.Project{}, nil, err
	}

	templates, err := listTemplates(ctx, tx, &saved.Phase)
	if err != nil {
		return domain.Project{}, nil, err
	}
	created := make([]domain.Task, 0)
	for _, tmpl := range templates {
		for _, item := range tmpl.Items {
			priority := item.Priority
			if priority == "" {
				priority = domain.PriorityMedium
			}
			task, err := insertTask(ctx, tx, saved.ID, domain.TaskInput{
				Title:       item.Title,
				Description: item.Description,
				Status:      domain.TaskTodo,
				Priority:    priority,
			})
			if err != nil {
				return domain.Project{}, nil, err
			}
			created = append(created, task)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Project{}, nil, err
	}
	return saved, created, nil
}

func (s *PostgresStore) missingOrConflict(ctx context.Context, q queryer, id string) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("project %s: %w", id, ErrVersionConflict)
}

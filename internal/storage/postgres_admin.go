package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

// Task templates

func listTemplates(ctx context.Context, q queryer, phase *domain.ProjectPhase) ([]domain.TaskTemplate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, applies_to_phase, items, created_at
		FROM task_templates
		WHERE $1::text IS NULL OR applies_to_phase = $1
		ORDER BY created_at ASC
	`, phase)
	if err != nil {
		return nil, fmt.Errorf("list task templates: %w", err)
	}
	defer rows.Close()

	items := make([]domain.TaskTemplate, 0)
	for rows.Next() {
		var (
			tmpl domain.TaskTemplate
			raw  []byte
		)
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.AppliesToPhase, &raw, &tmpl.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &tmpl.Items); err != nil {
			return nil, fmt.Errorf("decode template %s items: %w", tmpl.ID, err)
		}
		items = append(items, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) ListTaskTemplates(ctx context.Context) ([]domain.TaskTemplate, error) {
	return listTemplates(ctx, s.db, nil)
}

func (s *PostgresStore) CreateTaskTemplate(ctx context.Context, tmpl domain.TaskTemplate) (domain.TaskTemplate, error) {
	items, err := json.Marshal(tmpl.Items)
	if err != nil {
		return domain.TaskTemplate{}, fmt.Errorf("encode template items: %w", err)
	}
	tmpl.ID = newID()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO task_templates (id, name, applies_to_phase, items)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING created_at
	`, tmpl.ID, tmpl.Name, tmpl.AppliesToPhase, string(items))
	if err := row.Scan(&tmpl.CreatedAt); err != nil {
		return domain.TaskTemplate{}, fmt.Errorf("create task template: %w", err)
	}
	return tmpl, nil
}

// Notifications

func insertNotification(ctx context.Context, q queryer, userID, message string, link *string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, message, link)
		VALUES ($1, $2, $3, $4)
	`, newID(), userID, message, link)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CreateNotification inserts a notification at most once per non-empty
// deliveryKey; repeats of a delivered key are ignored.
func (s *PostgresStore) CreateNotification(ctx context.Context, deliveryKey, userID, message string, link *string) error {
	if deliveryKey == "" {
		return insertNotification(ctx, s.db, userID, message, link)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, message, link, delivery_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (delivery_key) WHERE delivery_key IS NOT NULL DO NOTHING
	`, newID(), userID, message, link, deliveryKey)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND NOT is_read
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead only touches notifications owned by userID; any other
// id reports ErrNotFound.
func (s *PostgresStore) MarkNotificationRead(ctx context.Context, notificationID, userID string) (domain.Notification, error) {
	var n domain.Notification
	err := s.db.QueryRowContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, message, link, is_read, created_at
	`, notificationID, userID).Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return domain.Notification{}, notFound(err, "mark notification read")
	}
	return n, nil
}

// Audit log

type AuditPage struct {
	Items []domain.AuditLog `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Pages int               `json:"pages"`
}

func (s *PostgresStore) ListAuditLogs(ctx context.Context, page, size int) (AuditPage, error) {
	out := AuditPage{Items: make([]domain.AuditLog, 0), Page: page, Size: size}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&out.Total); err != nil {
		return AuditPage{}, fmt.Errorf("count audit logs: %w", err)
	}
	out.Pages = 1
	if out.Total > 0 && size > 0 {
		out.Pages = int((out.Total + int64(size) - 1) / int64(size))
	}
	if out.Total == 0 || page < 1 || size < 1 || page > out.Pages {
		return out, nil
	}
	offset := int64(page-1) * int64(size)

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, u.email, a.action, a.details, a.timestamp
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.timestamp DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`, size, offset)
	if err != nil {
		return AuditPage{}, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.AuditLog
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserEmail, &entry.Action, &details, &entry.Timestamp); err != nil {
			return AuditPage{}, err
		}
		entry.Details = details
		out.Items = append(out.Items, entry)
	}
	if err := rows.Err(); err != nil {
		return AuditPage{}, err
	}
	return out, nil
}

// Analytics

type ProjectGrouping string

const (
	GroupByStatus         ProjectGrouping = "status"
	GroupByPhase          ProjectGrouping = "phase"
	GroupByClient         ProjectGrouping = "client"
	GroupByProjectManager ProjectGrouping = "pm"
	GroupByTechnicalLead  ProjectGrouping = "tl"
)

const unassigned = "Unassigned"

var groupingQueries = map[ProjectGrouping]string{
	GroupByStatus: `SELECT status, COUNT(*) FROM projects GROUP BY status ORDER BY status`,
	GroupByPhase:  `SELECT phase, COUNT(*) FROM projects GROUP BY phase ORDER BY phase`,
	GroupByClient: `SELECT client, COUNT(*) FROM projects GROUP BY client ORDER BY client`,
	GroupByProjectManager: `
		SELECT COALESCE(u.email, '` + unassigned + `'), COUNT(*)
		FROM projects p LEFT JOIN users u ON u.id = p.project_manager_id
		GROUP BY 1 ORDER BY 1`,
	GroupByTechnicalLead: `
		SELECT COALESCE(u.email, '` + unassigned + `'), COUNT(*)
		FROM projects p LEFT JOIN users u ON u.id = p.technical_lead_id
		GROUP BY 1 ORDER BY 1`,
}

func (s *PostgresStore) CountProjectsBy(ctx context.Context, grouping ProjectGrouping) ([]domain.AnalyticsStat, error) {
	query, ok := groupingQueries[grouping]
	if !ok {
		return nil, fmt.Errorf("unknown project grouping %q", grouping)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count projects by %s: %w", grouping, err)
	}
	defer rows.Close()

	stats := make([]domain.AnalyticsStat, 0)
	for rows.Next() {
		var stat domain.AnalyticsStat
		if err := rows.Scan(&stat.Category, &stat.Count); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListOverdueProjects returns active or held projects whose estimated end
// date has passed.
func (s *PostgresStore) ListOverdueProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE estimated_end_date < $1::date AND status = ANY($2)
		ORDER BY estimated_end_date ASC
	`, s.now().Format(domain.DateLayout), pq.Array([]string{string(domain.ProjectActive), string(domain.ProjectHold)}))
	if err != nil {
		return nil, fmt.Errorf("list overdue projects: %w", err)
	}
	return collectProjects(rows)
}

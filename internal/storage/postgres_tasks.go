package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

const taskColumns = `id, project_id, title, description, status, priority, due_date, assigned_to_id, created_at, updated_at`

func scanTask(row scanner) (domain.Task, error) {
	var (
		t          domain.Task
		dueDate    sql.NullTime
		assignedTo sql.NullString
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&dueDate, &assignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	t.DueDate = nullableDate(dueDate)
	t.AssignedToID = nullableString(assignedTo)
	return t, nil
}

func insertTask(ctx context.Context, q queryer, projectID string, in domain.TaskInput) (domain.Task, error) {
	status := in.Status
	if status == "" {
		status = domain.TaskTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	t, err := scanTask(q.QueryRowContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, due_date, assigned_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		newID(), projectID, in.Title, in.Description, status, priority, in.DueDate, in.AssignedToID))
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) GetTask(ctx context.Context, projectID, taskID string) (domain.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND project_id = $2
	`, taskID, projectID))
	if err != nil {
		return domain.Task{}, notFound(err, "get task")
	}
	return t, nil
}

// CreateTask inserts the task and, when it has an assignee, the assignment
// notification in one transaction.
func (s *PostgresStore) CreateTask(ctx context.Context, projectID string, in domain.TaskInput) (domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := insertTask(ctx, tx, projectID, in)
	if err != nil {
		return domain.Task{}, err
	}
	if t.AssignedToID != nil {
		if err := insertNotification(ctx, tx, *t.AssignedToID, domain.AssignmentMessage(t.Title), domain.TaskLink(t)); err != nil {
			return domain.Task{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// UpdateTask writes the full task row. A changed assignee is notified.
func (s *PostgresStore) UpdateTask(ctx context.Context, previous, next domain.Task) (domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTask(tx.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, due_date = $7,
		    assigned_to_id = $8, updated_at = NOW()
		WHERE id = $1 AND project_id = $2
		RETURNING `+taskColumns,
		next.ID, next.ProjectID, next.Title, next.Description, next.Status, next.Priority, next.DueDate, next.AssignedToID))
	if err != nil {
		return domain.Task{}, notFound(err, "update task")
	}
	if domain.AssigneeChanged(previous, t) {
		if err := insertNotification(ctx, tx, *t.AssignedToID, domain.AssignmentMessage(t.Title), domain.TaskLink(t)); err != nil {
			return domain.Task{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, projectID, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND project_id = $2`, taskID, projectID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrEmailTaken      = errors.New("email already registered")
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func insertAudit(ctx context.Context, q queryer, userID *string, action domain.AuditAction, details any) error {
	payload := []byte("{}")
	switch v := details.(type) {
	case nil:
	case json.RawMessage:
		payload = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		payload = b
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, details)
		VALUES ($1, $2, $3::jsonb)
	`, userID, action, string(payload))
	if err != nil {
		return fmt.Errorf("insert audit %s: %w", action, err)
	}
	return nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func nullableDate(v sql.NullTime) *string {
	if !v.Valid {
		return nil
	}
	out := v.Time.Format(domain.DateLayout)
	return &out
}

func newID() string {
	return uuid.NewString()
}

// Users

const userColumns = `id, email, hashed_password, role, created_at`

func scanUser(row scanner) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &user.Role, &user.CreatedAt)
	return user, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, hashedPassword string, role domain.UserRole) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, hashed_password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		newID(), email, hashedPassword, role)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return domain.User{}, notFound(err, "get user by email")
	}
	return user, nil
}

func (s *PostgresStore) RecordLogin(ctx context.Context, user domain.User) error {
	return insertAudit(ctx, s.db, &user.ID, domain.AuditUserLogin, map[string]string{"email": user.Email})
}

// InsertAudit appends an audit entry outside of any other write.
func (s *PostgresStore) InsertAudit(ctx context.Context, userID *string, action domain.AuditAction, details any) error {
	return insertAudit(ctx, s.db, userID, action, details)
}

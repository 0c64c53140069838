package domain

import (
	"encoding/json"
	"time"
)

const DateLayout = "2006-01-02"

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Client           string        `json:"client"`
	OrderValue       *string       `json:"orderValue,omitempty"`
	Proposal         *string       `json:"proposal,omitempty"`
	PCT              *string       `json:"pct,omitempty"`
	Phase            ProjectPhase  `json:"phase"`
	Status           ProjectStatus `json:"status"`
	StartDate        string        `json:"startDate"`
	EstimatedEndDate string        `json:"estimatedEndDate"`
	ProjectManagerID *string       `json:"project_manager_id,omitempty"`
	TechnicalLeadID  *string       `json:"technical_lead_id,omitempty"`
	Version          int64         `json:"version"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Stakeholders returns the distinct user ids attached to the project.
func (p Project) Stakeholders() []string {
	out := make([]string, 0, 2)
	if p.ProjectManagerID != nil && *p.ProjectManagerID != "" {
		out = append(out, *p.ProjectManagerID)
	}
	if p.TechnicalLeadID != nil && *p.TechnicalLeadID != "" {
		if len(out) == 0 || out[0] != *p.TechnicalLeadID {
			out = append(out, *p.TechnicalLeadID)
		}
	}
	return out
}

type Document struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	FileType  string         `json:"file_type"`
	ObjectKey string         `json:"object_key"`
	Version   int            `json:"version"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Task struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"project_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *string      `json:"dueDate,omitempty"`
	AssignedToID *string      `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type TaskTemplateItem struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
}

type TaskTemplate struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	AppliesToPhase ProjectPhase       `json:"applies_to_phase"`
	Items          []TaskTemplateItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID        int64           `json:"id"`
	UserID    *string         `json:"user_id,omitempty"`
	UserEmail *string         `json:"user_email,omitempty"`
	Action    AuditAction     `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type AnalyticsStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ProjectInput is the create payload; ProjectPatch carries partial updates.
type ProjectInput struct {
	Name             string        `json:"name"`
	Client           string        `json:"client"`
	StartDate        string        `json:"startDate"`
	EstimatedEndDate string        `json:"estimatedEndDate"`
	OrderValue       *string       `json:"orderValue,omitempty"`
	Proposal         *string       `json:"proposal,omitempty"`
	PCT              *string       `json:"pct,omitempty"`
	Phase            ProjectPhase  `json:"phase,omitempty"`
	Status           ProjectStatus `json:"status,omitempty"`
	ProjectManagerID *string       `json:"project_manager_id,omitempty"`
	TechnicalLeadID  *string       `json:"technical_lead_id,omitempty"`
}

type ProjectPatch struct {
	Name             *string        `json:"name,omitempty"`
	Client           *string        `json:"client,omitempty"`
	StartDate        *string        `json:"startDate,omitempty"`
	EstimatedEndDate *string        `json:"estimatedEndDate,omitempty"`
	OrderValue       *string        `json:"orderValue,omitempty"`
	Proposal         *string        `json:"proposal,omitempty"`
	PCT              *string        `json:"pct,omitempty"`
	Status           *ProjectStatus `json:"status,omitempty"`
	ProjectManagerID *string        `json:"project_manager_id,omitempty"`
	TechnicalLeadID  *string        `json:"technical_lead_id,omitempty"`
}

type DocumentPatch struct {
	Name   *string         `json:"name,omitempty"`
	Type   *string         `json:"type,omitempty"`
	Status *DocumentStatus `json:"status,omitempty"`
}

type TaskInput struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	DueDate      *string      `json:"dueDate,omitempty"`
	AssignedToID *string      `json:"assigned_to_id,omitempty"`
}

type TaskPatch struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Status       *TaskStatus   `json:"status,omitempty"`
	Priority     *TaskPriority `json:"priority,omitempty"`
	DueDate      *string       `json:"dueDate,omitempty"`
	AssignedToID *string       `json:"assigned_to_id,omitempty"`
}

type UserInput struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role,omitempty"`
}

package domain

type ProjectPhase string

const (
	PhaseInception  ProjectPhase = "inception"
	PhaseDefinition ProjectPhase = "definition"
	PhaseBuilt      ProjectPhase = "built"
	PhaseDeploy     ProjectPhase = "deploy"
	PhaseClose      ProjectPhase = "close"
)

// PhaseOrder is the only legal direction of advancement.
var PhaseOrder = []ProjectPhase{
	PhaseInception,
	PhaseDefinition,
	PhaseBuilt,
	PhaseDeploy,
	PhaseClose,
}

func (p ProjectPhase) Valid() bool {
	for _, known := range PhaseOrder {
		if p == known {
			return true
		}
	}
	return false
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectHold      ProjectStatus = "hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploaded, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskHold       TaskStatus = "hold"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskHold:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

type AuditAction string

const (
	AuditUserLogin             AuditAction = "USER_LOGIN"
	AuditProjectCreated        AuditAction = "PROJECT_CREATED"
	AuditProjectDeleted        AuditAction = "PROJECT_DELETED"
	AuditPhaseAdvanced         AuditAction = "PROJECT_PHASE_ADVANCED"
	AuditPhaseNotificationSent AuditAction = "PHASE_NOTIFICATIONS_SENT"
	AuditDocumentUploaded      AuditAction = "DOCUMENT_UPLOADED"
	AuditDocumentReviewed      AuditAction = "DOCUMENT_REVIEWED"
	AuditDocumentDeleted       AuditAction = "DOCUMENT_DELETED"
)

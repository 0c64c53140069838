package domain

import (
	"net/mail"
	"strings"
	"time"
)

const minPasswordLength = 6

func ValidateProjectInput(v ProjectInput) []string {
	failed := make([]string, 0)

	if strings.TrimSpace(v.Name) == "" {
		failed = append(failed, "project.name_required")
	}
	if strings.TrimSpace(v.Client) == "" {
		failed = append(failed, "project.client_required")
	}
	start, startErr := time.Parse(DateLayout, v.StartDate)
	end, endErr := time.Parse(DateLayout, v.EstimatedEndDate)
	if startErr != nil || endErr != nil {
		failed = append(failed, "project.dates_parseable")
	} else if end.Before(start) {
		failed = append(failed, "project.end_not_before_start")
	}
	if v.Phase != "" && !v.Phase.Valid() {
		failed = append(failed, "project.phase_known")
	}
	if v.Status != "" && !v.Status.Valid() {
		failed = append(failed, "project.status_known")
	}

	return failed
}

// ValidateProjectPatch checks a partial update against the project it will be
// applied to, so date ordering covers a patch touching only one of the dates.
func ValidateProjectPatch(current Project, v ProjectPatch) []string {
	failed := make([]string, 0)

	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		failed = append(failed, "project.name_required")
	}
	if v.Client != nil && strings.TrimSpace(*v.Client) == "" {
		failed = append(failed, "project.client_required")
	}
	startDate, endDate := current.StartDate, current.EstimatedEndDate
	if v.StartDate != nil {
		startDate = *v.StartDate
	}
	if v.EstimatedEndDate != nil {
		endDate = *v.EstimatedEndDate
	}
	start, startErr := time.Parse(DateLayout, startDate)
	end, endErr := time.Parse(DateLayout, endDate)
	if startErr != nil || endErr != nil {
		failed = append(failed, "project.dates_parseable")
	} else if end.Before(start) {
		failed = append(failed, "project.end_not_before_start")
	}
	if v.Status != nil && !v.Status.Valid() {
		failed = append(failed, "project.status_known")
	}

	return failed
}

func ValidateDocumentPatch(v DocumentPatch) []string {
	failed := make([]string, 0)

	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		failed = append(failed, "document.name_required")
	}
	if v.Type != nil && strings.TrimSpace(*v.Type) == "" {
		failed = append(failed, "document.type_required")
	}
	if v.Status != nil && !v.Status.Valid() {
		failed = append(failed, "document.status_known")
	}

	return failed
}

func ValidateTaskInput(v TaskInput) []string {
	failed := make([]string, 0)

	if strings.TrimSpace(v.Title) == "" {
		failed = append(failed, "task.title_required")
	}
	if v.Status != "" && !v.Status.Valid() {
		failed = append(failed, "task.status_known")
	}
	if v.Priority != "" && !v.Priority.Valid() {
		failed = append(failed, "task.priority_known")
	}
	if v.DueDate != nil {
		if _, err := time.Parse(DateLayout, *v.DueDate); err != nil {
			failed = append(failed, "task.due_date_parseable")
		}
	}

	return failed
}

func ValidateTaskPatch(v TaskPatch) []string {
	failed := make([]string, 0)

	if v.Title != nil && strings.TrimSpace(*v.Title) == "" {
		failed = append(failed, "task.title_required")
	}
	if v.Status != nil && !v.Status.Valid() {
		failed = append(failed, "task.status_known")
	}
	if v.Priority != nil && !v.Priority.Valid() {
		failed = append(failed, "task.priority_known")
	}
	if v.DueDate != nil {
		if _, err := time.Parse(DateLayout, *v.DueDate); err != nil {
			failed = append(failed, "task.due_date_parseable")
		}
	}

	return failed
}

func ValidateUserInput(v UserInput) []string {
	failed := make([]string, 0)

	if _, err := mail.ParseAddress(v.Email); err != nil {
		failed = append(failed, "user.email_valid")
	}
	if len(v.Password) < minPasswordLength {
		failed = append(failed, "user.password_min_length")
	}
	if v.Role != "" && !v.Role.Valid() {
		failed = append(failed, "user.role_known")
	}

	return failed
}

func ValidateTemplate(v TaskTemplate) []string {
	failed := make([]string, 0)

	if strings.TrimSpace(v.Name) == "" {
		failed = append(failed, "template.name_required")
	}
	if !v.AppliesToPhase.Valid() {
		failed = append(failed, "template.phase_known")
	}
	if len(v.Items) == 0 {
		failed = append(failed, "template.items_required")
	}
	for _, item := range v.Items {
		if strings.TrimSpace(item.Title) == "" {
			failed = append(failed, "template.item_title_required")
			break
		}
	}
	for _, item := range v.Items {
		if item.Priority != "" && !item.Priority.Valid() {
			failed = append(failed, "template.item_priority_known")
			break
		}
	}

	return failed
}

func ValidationPassed(failed []string) bool {
	return len(failed) == 0
}

package domain

import "fmt"

// ApplyProjectPatch returns p with every non-nil patch field applied. An
// empty manager or lead id clears the assignment.
func ApplyProjectPatch(p Project, patch ProjectPatch) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Client != nil {
		p.Client = *patch.Client
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.EstimatedEndDate != nil {
		p.EstimatedEndDate = *patch.EstimatedEndDate
	}
	if patch.OrderValue != nil {
		p.OrderValue = patch.OrderValue
	}
	if patch.Proposal != nil {
		p.Proposal = patch.Proposal
	}
	if patch.PCT != nil {
		p.PCT = patch.PCT
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.ProjectManagerID != nil {
		p.ProjectManagerID = optionalID(*patch.ProjectManagerID)
	}
	if patch.TechnicalLeadID != nil {
		p.TechnicalLeadID = optionalID(*patch.TechnicalLeadID)
	}
	return p
}

func ApplyTaskPatch(t Task, patch TaskPatch) Task {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = optionalID(*patch.DueDate)
	}
	if patch.AssignedToID != nil {
		t.AssignedToID = optionalID(*patch.AssignedToID)
	}
	return t
}

func optionalID(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// AssigneeChanged reports whether next has an assignee that previous did not.
func AssigneeChanged(previous, next Task) bool {
	if next.AssignedToID == nil {
		return false
	}
	return previous.AssignedToID == nil || *previous.AssignedToID != *next.AssignedToID
}

func AssignmentMessage(title string) string {
	return fmt.Sprintf("You were assigned to task '%s'", title)
}

func TaskLink(t Task) *string {
	link := fmt.Sprintf("/projects/%s/tasks/%s", t.ProjectID, t.ID)
	return &link
}

func ProjectLink(projectID string) *string {
	link := "/projects/" + projectID
	return &link
}

func PhaseAdvancedMessage(projectName string, from, to ProjectPhase) string {
	return fmt.Sprintf("Project '%s' advanced from %s to %s", projectName, from, to)
}

func DocumentAwaitingReviewMessage(documentName string) string {
	return fmt.Sprintf("Document '%s' awaits review", documentName)
}

func DocumentReviewedMessage(documentName string, status DocumentStatus) string {
	return fmt.Sprintf("Document '%s' was %s", documentName, status)
}

package domain

import "strings"

// Ticket is a TargetProcess assignable (user story, bug, task).
type Ticket struct {
	Project      *ProjectRef `json:"project,omitempty"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	ResourceType string      `json:"resource_type"`
	EntityType   NamedRef    `json:"entity_type"`
	EntityState  NamedRef    `json:"entity_state"`
	ID           int         `json:"id"`
}

// NamedRef is an id/name pair as returned by TargetProcess.
type NamedRef struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// ProjectRef identifies a TargetProcess project.
type ProjectRef struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	ID           int    `json:"id"`
}

// Display returns the label used when picking a project.
func (p ProjectRef) Display() string {
	if p.Abbreviation == "" {
		return p.Name
	}
	return p.Abbreviation + " - " + p.Name
}

// IsBug returns true if the ticket is a bug.
func (t *Ticket) IsBug() bool {
	return strings.EqualFold(t.kind(), "bug")
}

// IsUserStory returns true if the ticket is a user story.
func (t *Ticket) IsUserStory() bool {
	return strings.EqualFold(t.kind(), "userstory")
}

func (t *Ticket) kind() string {
	if t.EntityType.Name != "" {
		return t.EntityType.Name
	}
	return t.ResourceType
}

// State returns the ticket's workflow state.
func (t *Ticket) State() (EntityState, error) {
	return EntityStateFromCode(t.EntityState.ID)
}

// BranchName returns the ticket branch name without the git-flow prefix.
func (t *Ticket) BranchName() string {
	return TicketBranchName(t.ID, t.Name)
}

// CommitType returns the conventional commit type for the ticket.
func (t *Ticket) CommitType() string {
	if t.IsBug() {
		return "fix"
	}
	return "feat"
}

// Label returns the picker label for the ticket.
func (t *Ticket) Label() string {
	return strings.TrimSpace(t.Name)
}

// User is the TargetProcess user owning the access token.
type User struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Login     string   `json:"login"`
	Email     string   `json:"email"`
	Role      NamedRef `json:"role"`
	ID        int      `json:"id"`
	IsActive  bool     `json:"is_active"`
}

// FullName returns "<first> <last>".
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

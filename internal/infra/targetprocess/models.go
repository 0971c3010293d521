package targetprocess

import "github.com/runoshun/tpaws/internal/domain"

// v1 resources use PascalCase fields.

type namedV1 struct {
	Name string `json:"Name"`
	ID   int    `json:"Id"`
}

type projectV1 struct {
	Name         string `json:"Name"`
	Abbreviation string `json:"Abbreviation"`
	ID           int    `json:"Id"`
}

type assignableV1 struct {
	Project      *projectV1 `json:"Project"`
	ResourceType string     `json:"ResourceType"`
	Name         string     `json:"Name"`
	Description  *string    `json:"Description"`
	EntityState  namedV1    `json:"EntityState"`
	EntityType   namedV1    `json:"EntityType"`
	ID           int        `json:"Id"`
}

func (a *assignableV1) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:           a.ID,
		Name:         a.Name,
		ResourceType: a.ResourceType,
		EntityType:   domain.NamedRef{ID: a.EntityType.ID, Name: a.EntityType.Name},
		EntityState:  domain.NamedRef{ID: a.EntityState.ID, Name: a.EntityState.Name},
	}
	if a.Description != nil {
		t.Description = *a.Description
	}
	if t.EntityType.Name == "" {
		t.EntityType.Name = a.ResourceType
	}
	if a.Project != nil {
		t.Project = &domain.ProjectRef{ID: a.Project.ID, Name: a.Project.Name, Abbreviation: a.Project.Abbreviation}
	}
	return t
}

type userV1 struct {
	FirstName string  `json:"FirstName"`
	LastName  string  `json:"LastName"`
	Login     string  `json:"Login"`
	Email     string  `json:"Email"`
	Role      namedV1 `json:"Role"`
	ID        int     `json:"Id"`
	IsActive  bool    `json:"IsActive"`
}

func (u *userV1) toDomain() *domain.User {
	return &domain.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Login:     u.Login,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Role:      domain.NamedRef{ID: u.Role.ID, Name: u.Role.Name},
	}
}

type idRef struct {
	ID int `json:"Id"`
}

type assignment struct {
	GeneralUser idRef `json:"GeneralUser"`
	Role        idRef `json:"Role"`
}

type assignPayload struct {
	Assignments []assignment `json:"Assignments"`
}

type statePayload struct {
	EntityState idRef `json:"EntityState"`
	ID          int   `json:"Id"`
}

// v2 resources use camelCase fields.

type listV2[T any] struct {
	Items []T `json:"items"`
}

type namedV2 struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type projectV2 struct {
	Name         string  `json:"name"`
	Abbreviation *string `json:"abbreviation"`
	ID           int     `json:"id"`
}

func (p projectV2) toDomain() domain.ProjectRef {
	ref := domain.ProjectRef{ID: p.ID, Name: p.Name}
	if p.Abbreviation != nil {
		ref.Abbreviation = *p.Abbreviation
	}
	return ref
}

type assignableV2 struct {
	Project      *projectV2 `json:"project"`
	Description  *string    `json:"description"`
	Name         string     `json:"name"`
	ResourceType string     `json:"resourceType"`
	EntityState  namedV2    `json:"entityState"`
	EntityType   namedV2    `json:"entityType"`
	ID           int        `json:"id"`
}

func (a assignableV2) toDomain() domain.Ticket {
	t := domain.Ticket{
		ID:           a.ID,
		Name:         a.Name,
		ResourceType: a.ResourceType,
		EntityType:   domain.NamedRef{ID: a.EntityType.ID, Name: a.EntityType.Name},
		EntityState:  domain.NamedRef{ID: a.EntityState.ID, Name: a.EntityState.Name},
	}
	if a.Description != nil {
		t.Description = *a.Description
	}
	if a.Project != nil {
		p := a.Project.toDomain()
		t.Project = &p
	}
	return t
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"huddle/api/internal/rbac"
	"huddle/api/internal/search"
	"huddle/api/internal/store"
	"huddle/api/internal/util"
)

type ClientInput struct {
	Name         string `json:"name"`
	Company      string `json:"company"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Notes        string `json:"notes"`
}

func (s *Service) ListClients(ctx context.Context) ([]store.Client, error) {
	return s.store.ListClients(ctx)
}

func (s *Service) GetClient(ctx context.Context, id string) (store.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Client{}, errNotFound("Client not found")
	}
	return client, err
}

func (s *Service) CreateClient(ctx context.Context, session Session, in ClientInput) (store.Client, error) {
	if !s.Can(session.Role, rbac.ActionManage) {
		return store.Client{}, errForbidden("Only managers can create clients")
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Client{}, errValidation("Client name is required")
	}

	client := store.Client{
		ID:           util.NewID("cl"),
		Name:         strings.TrimSpace(in.Name),
		Company:      strings.TrimSpace(in.Company),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Notes:        in.Notes,
	}
	if err := s.store.InsertClient(ctx, client); err != nil {
		return store.Client{}, err
	}
	if s.search != nil {
		s.search.IndexClient(search.ClientRecord{
			ID: client.ID, Name: client.Name, Company: client.Company, Email: client.ContactEmail,
		})
	}
	return s.store.GetClient(ctx, client.ID)
}

func (s *Service) UpdateClient(ctx context.Context, session Session, id string, in ClientInput) (store.Client, error) {
	if !s.Can(session.Role, rbac.ActionManage) {
		return store.Client{}, errForbidden("Only managers can update clients")
	}
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return store.Client{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Client{}, errValidation("Client name is required")
	}

	client.Name = strings.TrimSpace(in.Name)
	client.Company = strings.TrimSpace(in.Company)
	client.ContactEmail = strings.TrimSpace(in.ContactEmail)
	client.ContactPhone = strings.TrimSpace(in.ContactPhone)
	client.Notes = in.Notes
	if err := s.store.UpdateClient(ctx, client); err != nil {
		return store.Client{}, err
	}
	if s.search != nil {
		s.search.IndexClient(search.ClientRecord{
			ID: client.ID, Name: client.Name, Company: client.Company, Email: client.ContactEmail,
		})
	}
	return s.store.GetClient(ctx, id)
}

func (s *Service) DeleteClient(ctx context.Context, session Session, id string) error {
	if !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only managers can delete clients")
	}
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteClient(id)
	}
	return nil
}

type ProjectInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ClientID    *string `json:"clientId"`
	Status      string  `json:"status"`
}

func (s *Service) ListProjects(ctx context.Context, status string) ([]store.Project, error) {
	switch status {
	case "", "active", "archived":
	default:
		return nil, errValidation("Status must be active or archived")
	}
	return s.store.ListProjects(ctx, status)
}

func (s *Service) GetProject(ctx context.Context, id string) (store.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Project{}, errNotFound("Project not found")
	}
	return project, err
}

func (s *Service) CreateProject(ctx context.Context, session Session, in ProjectInput) (store.Project, error) {
	if !s.Can(session.Role, rbac.ActionWrite) {
		return store.Project{}, errForbidden("Not allowed to create projects")
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Project{}, errValidation("Project name is required")
	}
	if in.ClientID != nil {
		if _, err := s.GetClient(ctx, *in.ClientID); err != nil {
			return store.Project{}, err
		}
	}

	project := store.Project{
		ID:          util.NewID("prj"),
		ClientID:    in.ClientID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      "active",
		CreatedBy:   session.UserID,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return store.Project{}, err
	}
	// the creator is always the first member
	if err := s.store.AddProjectMember(ctx, project.ID, session.UserID, "owner"); err != nil {
		return store.Project{}, err
	}
	s.indexProject(project)
	return s.store.GetProject(ctx, project.ID)
}

func (s *Service) UpdateProject(ctx context.Context, session Session, id string, in ProjectInput) (store.Project, error) {
	if !s.Can(session.Role, rbac.ActionWrite) {
		return store.Project{}, errForbidden("Not allowed to update projects")
	}
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return store.Project{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Project{}, errValidation("Project name is required")
	}
	if in.Status != "" && in.Status != "active" && in.Status != "archived" {
		return store.Project{}, errValidation("Status must be active or archived")
	}
	if in.ClientID != nil {
		if _, err := s.GetClient(ctx, *in.ClientID); err != nil {
			return store.Project{}, err
		}
	}

	project.Name = strings.TrimSpace(in.Name)
	project.Description = in.Description
	project.ClientID = in.ClientID
	if in.Status != "" {
		project.Status = in.Status
	}
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return store.Project{}, err
	}
	s.indexProject(project)
	return s.store.GetProject(ctx, id)
}

func (s *Service) indexProject(p store.Project) {
	if s.search == nil {
		return
	}
	clientID := ""
	if p.ClientID != nil {
		clientID = *p.ClientID
	}
	s.search.IndexProject(search.ProjectRecord{
		ID: p.ID, Name: p.Name, Description: p.Description, Status: p.Status, ClientID: clientID,
	})
}

func (s *Service) ListProjectMembers(ctx context.Context, projectID string) ([]store.ProjectMember, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListProjectMembers(ctx, projectID)
}

func (s *Service) AddProjectMember(ctx context.Context, session Session, projectID, userID, role string) error {
	if !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only managers can change project membership")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound("User not found")
		}
		return err
	}
	if role == "" {
		role = "member"
	}
	return s.store.AddProjectMember(ctx, projectID, userID, role)
}

func (s *Service) RemoveProjectMember(ctx context.Context, session Session, projectID, userID string) error {
	if !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only managers can change project membership")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}
	return s.store.RemoveProjectMember(ctx, projectID, userID)
}

// isProjectMember reports whether the user belongs to the project. Admins
// and managers see every project.
func (s *Service) isProjectMember(ctx context.Context, session Session, projectID string) (bool, error) {
	if s.Can(session.Role, rbac.ActionManage) {
		return true, nil
	}
	members, err := s.store.ListProjectMembers(ctx, projectID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.UserID == session.UserID {
			return true, nil
		}
	}
	return false, nil
}

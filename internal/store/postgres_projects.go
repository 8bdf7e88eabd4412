package store

import (
	"context"
	"fmt"
)

// Clients

const clientColumns = `id, name, company, contact_email, contact_phone, notes, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.ContactEmail, &c.ContactPhone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, clientID string) (Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, clientID)
	return scanClient(row)
}

func (s *PostgresStore) InsertClient(ctx context.Context, c Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, company, contact_email, contact_phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Company, c.ContactEmail, c.ContactPhone, c.Notes)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, c Client) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name=$2, company=$3, contact_email=$4, contact_phone=$5, notes=$6, updated_at=NOW()
		WHERE id=$1
	`, c.ID, c.Name, c.Company, c.ContactEmail, c.ContactPhone, c.Notes)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, clientID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id=$1`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// Projects

const projectColumns = `id, client_id, name, description, status, created_by, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *PostgresStore) ListProjects(ctx context.Context, status string) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, projectID)
	return scanProject(row)
}

func (s *PostgresStore) InsertProject(ctx context.Context, p Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, client_id, name, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.ClientID, p.Name, p.Description, p.Status, p.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p Project) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET client_id=$2, name=$3, description=$4, status=$5, updated_at=NOW()
		WHERE id=$1
	`, p.ID, p.ClientID, p.Name, p.Description, p.Status)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pm.project_id, pm.user_id, pm.role, pm.added_at, u.display_name, u.email
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id=$1
		ORDER BY u.display_name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	items := make([]ProjectMember, 0)
	for rows.Next() {
		var m ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.AddedAt, &m.DisplayName, &m.Email); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) AddProjectMember(ctx context.Context, projectID, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role=EXCLUDED.role
	`, projectID, userID, role)
	if err != nil {
		return fmt.Errorf("add project member: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM project_members WHERE project_id=$1 AND user_id=$2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	return nil
}

// Workload aggregation. The cohort is everyone who belongs to at least one
// active project; each query tallies one activity category per user.

func (s *PostgresStore) ActiveProjectMembers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT u.id, u.display_name
		FROM project_members pm
		JOIN projects p ON p.id = pm.project_id AND p.status = 'active'
		JOIN users u ON u.id = pm.user_id AND u.deactivated_at IS NULL
		ORDER BY u.display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("active project members: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CountProjectMessagesByAuthor(ctx context.Context) ([]ActivityCount, error) {
	return s.queryCounts(ctx, `
		SELECT m.author_id, COUNT(*)
		FROM messages m
		JOIN projects p ON p.id = m.room_id AND p.status = 'active'
		WHERE m.room_type = 'project'
		GROUP BY m.author_id
	`)
}

// CountFilesByUploader tallies uploads workspace-wide when projectScoped is
// false, matching the shipped workload behavior; see workload.FileScope.
func (s *PostgresStore) CountFilesByUploader(ctx context.Context, projectScoped bool) ([]ActivityCount, error) {
	if projectScoped {
		return s.queryCounts(ctx, `
			SELECT f.uploader_id, COUNT(*)
			FROM files f
			JOIN projects p ON p.id = f.project_id AND p.status = 'active'
			GROUP BY f.uploader_id
		`)
	}
	return s.queryCounts(ctx, `
		SELECT uploader_id, COUNT(*) FROM files GROUP BY uploader_id
	`)
}

func (s *PostgresStore) CountTodosByAssignee(ctx context.Context) ([]ActivityCount, error) {
	return s.queryCounts(ctx, `
		SELECT t.assignee_id, COUNT(*)
		FROM todos t
		JOIN projects p ON p.id = t.project_id AND p.status = 'active'
		GROUP BY t.assignee_id
	`)
}

func (s *PostgresStore) CountEventsByOwner(ctx context.Context) ([]ActivityCount, error) {
	return s.queryCounts(ctx, `
		SELECT e.owner_id, COUNT(*)
		FROM events e
		JOIN projects p ON p.id = e.project_id AND p.status = 'active'
		GROUP BY e.owner_id
	`)
}

func (s *PostgresStore) queryCounts(ctx context.Context, query string) ([]ActivityCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()

	items := make([]ActivityCount, 0)
	for rows.Next() {
		var c ActivityCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return items, nil
}

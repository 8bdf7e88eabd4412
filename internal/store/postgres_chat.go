package store

import (
	"context"
	"fmt"
)

// Messages

const messageColumns = `m.id, m.room_id, m.room_type, m.author_id, m.kind, m.body, m.payload, m.created_at, u.display_name`

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.RoomType, &m.AuthorID, &m.Kind, &m.Body, &m.Payload, &m.CreatedAt, &m.AuthorName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListRoomMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.room_id=$1
		ORDER BY m.created_at DESC
		LIMIT $2
	`, roomID, limit)
}

// ListDirectMessages returns every dm-room message in the workspace; the
// constellation model does its own per-pair tallying.
func (s *PostgresStore) ListDirectMessages(ctx context.Context) ([]Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.room_type='dm'
		ORDER BY m.created_at
	`)
}

func (s *PostgresStore) InsertMessage(ctx context.Context, m Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, room_type, author_id, kind, body, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.RoomID, m.RoomType, m.AuthorID, m.Kind, m.Body, m.Payload)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, messageID string) (Message, error) {
	var m Message
	err := s.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.id=$1
	`, messageID).Scan(&m.ID, &m.RoomID, &m.RoomType, &m.AuthorID, &m.Kind, &m.Body, &m.Payload, &m.CreatedAt, &m.AuthorName)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// Poll votes

func (s *PostgresStore) CastPollVote(ctx context.Context, messageID, userID string, optionIndex int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_votes (message_id, user_id, option_index)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO UPDATE SET option_index=EXCLUDED.option_index, created_at=NOW()
	`, messageID, userID, optionIndex)
	if err != nil {
		return fmt.Errorf("cast poll vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPollVotes(ctx context.Context, messageID string) ([]PollVote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, user_id, option_index, created_at
		FROM poll_votes
		WHERE message_id=$1
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("list poll votes: %w", err)
	}
	defer rows.Close()

	items := make([]PollVote, 0)
	for rows.Next() {
		var v PollVote
		if err := rows.Scan(&v.MessageID, &v.UserID, &v.OptionIndex, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan poll vote: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll votes: %w", err)
	}
	return items, nil
}

// Files

const fileColumns = `id, project_id, uploader_id, name, object_key, content_type, size_bytes, created_at`

func scanFile(row interface{ Scan(...any) error }) (File, error) {
	var f File
	err := row.Scan(&f.ID, &f.ProjectID, &f.UploaderID, &f.Name, &f.ObjectKey, &f.ContentType, &f.SizeBytes, &f.CreatedAt)
	return f, err
}

func (s *PostgresStore) InsertFile(ctx context.Context, f File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, project_id, uploader_id, name, object_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.ProjectID, f.UploaderID, f.Name, f.ObjectKey, f.ContentType, f.SizeBytes)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFile(ctx context.Context, fileID string) (File, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id=$1`, fileID)
	return scanFile(row)
}

func (s *PostgresStore) DeleteFile(ctx context.Context, fileID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProjectFiles(ctx context.Context, projectID string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fileColumns+` FROM files WHERE project_id=$1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}
	defer rows.Close()

	items := make([]File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return items, nil
}

// Todos

const todoColumns = `id, project_id, assignee_id, title, notes, done, due_at, created_at, updated_at`

func scanTodo(row interface{ Scan(...any) error }) (Todo, error) {
	var t Todo
	err := row.Scan(&t.ID, &t.ProjectID, &t.AssigneeID, &t.Title, &t.Notes, &t.Done, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *PostgresStore) ListTodosByAssignee(ctx context.Context, assigneeID string) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE assignee_id=$1
		ORDER BY done, due_at NULLS LAST, created_at DESC
	`, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	items := make([]Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetTodo(ctx context.Context, todoID string) (Todo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id=$1`, todoID)
	return scanTodo(row)
}

func (s *PostgresStore) InsertTodo(ctx context.Context, t Todo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (id, project_id, assignee_id, title, notes, done, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.ProjectID, t.AssigneeID, t.Title, t.Notes, t.Done, t.DueAt)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTodo(ctx context.Context, t Todo) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET project_id=$2, title=$3, notes=$4, done=$5, due_at=$6, updated_at=NOW()
		WHERE id=$1
	`, t.ID, t.ProjectID, t.Title, t.Notes, t.Done, t.DueAt)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteTodo(ctx context.Context, todoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id=$1`, todoID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// Calendar events

const eventColumns = `id, project_id, owner_id, title, location, starts_at, ends_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.ProjectID, &e.OwnerID, &e.Title, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *PostgresStore) ListEventsForUser(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE owner_id=$1
		ORDER BY starts_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, eventID string) (Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, eventID)
	return scanEvent(row)
}

func (s *PostgresStore) InsertEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, project_id, owner_id, title, location, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.ProjectID, e.OwnerID, e.Title, e.Location, e.StartsAt, e.EndsAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET project_id=$2, title=$3, location=$4, starts_at=$5, ends_at=$6, updated_at=NOW()
		WHERE id=$1
	`, e.ID, e.ProjectID, e.Title, e.Location, e.StartsAt, e.EndsAt)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, eventID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

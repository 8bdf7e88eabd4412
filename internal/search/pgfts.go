package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across projects, clients, and project
// messages using plainto_tsquery and ts_rank, with ts_headline for snippets.
// Direct messages are excluded at the SQL level.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultProject {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'project'::text AS type, p.id, p.name AS title,
				ts_headline('english', coalesce(p.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				p.id AS project_id,
				''::text AS author_id,
				ts_rank(p.fts, %s) AS rank
			FROM projects p
			WHERE p.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultClient {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'client'::text AS type, c.id, c.name AS title,
				ts_headline('english', coalesce(c.company, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				''::text AS project_id,
				''::text AS author_id,
				ts_rank(c.fts, %s) AS rank
			FROM clients c
			WHERE c.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultMessage {
		msgWhere := fmt.Sprintf("m.fts @@ %s AND m.room_type = 'project'", tsQuery)
		if q.FilterProjectID != "" {
			msgWhere += fmt.Sprintf(" AND m.room_id = $%d", argN)
			args = append(args, q.FilterProjectID)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'message'::text AS type, m.id, ''::text AS title,
				ts_headline('english', coalesce(m.body, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				m.room_id AS project_id,
				m.author_id,
				ts_rank(m.fts, %s) AS rank
			FROM messages m
			WHERE %s`, tsQuery, tsQuery, msgWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, project_id, author_id
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.ProjectID, &r.AuthorID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ProjectRecord, []ClientRecord, []MessageRecord, error) {
	projectRows, err := p.db.QueryContext(ctx, `
		SELECT id, name, description, status, coalesce(client_id, '')
		FROM projects
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load projects: %w", err)
	}
	defer projectRows.Close()

	projects := make([]ProjectRecord, 0)
	for projectRows.Next() {
		var pr ProjectRecord
		if err := projectRows.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Status, &pr.ClientID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, pr)
	}
	if err := projectRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate projects: %w", err)
	}

	clientRows, err := p.db.QueryContext(ctx, `
		SELECT id, name, company, contact_email
		FROM clients
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load clients: %w", err)
	}
	defer clientRows.Close()

	clients := make([]ClientRecord, 0)
	for clientRows.Next() {
		var cr ClientRecord
		if err := clientRows.Scan(&cr.ID, &cr.Name, &cr.Company, &cr.Email); err != nil {
			return nil, nil, nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, cr)
	}
	if err := clientRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate clients: %w", err)
	}

	messageRows, err := p.db.QueryContext(ctx, `
		SELECT id, body, room_id, author_id
		FROM messages
		WHERE room_type = 'project'
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load messages: %w", err)
	}
	defer messageRows.Close()

	messages := make([]MessageRecord, 0)
	for messageRows.Next() {
		var mr MessageRecord
		if err := messageRows.Scan(&mr.ID, &mr.Body, &mr.ProjectID, &mr.AuthorID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, mr)
	}
	if err := messageRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate messages: %w", err)
	}

	return projects, clients, messages, nil
}

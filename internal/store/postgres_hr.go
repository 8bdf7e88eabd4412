package store

import (
	"context"
	"fmt"
)

// Employees

func (s *PostgresStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.user_id, e.department, e.job_title, e.salary_cents, e.start_date, e.created_at, e.updated_at,
			u.display_name, u.email
		FROM employees e
		JOIN users u ON u.id = e.user_id
		ORDER BY u.display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	items := make([]Employee, 0)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.UserID, &e.Department, &e.JobTitle, &e.SalaryCents, &e.StartDate,
			&e.CreatedAt, &e.UpdatedAt, &e.DisplayName, &e.Email); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetEmployee(ctx context.Context, userID string) (Employee, error) {
	var e Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT e.user_id, e.department, e.job_title, e.salary_cents, e.start_date, e.created_at, e.updated_at,
			u.display_name, u.email
		FROM employees e
		JOIN users u ON u.id = e.user_id
		WHERE e.user_id=$1
	`, userID).Scan(&e.UserID, &e.Department, &e.JobTitle, &e.SalaryCents, &e.StartDate,
		&e.CreatedAt, &e.UpdatedAt, &e.DisplayName, &e.Email)
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *PostgresStore) UpsertEmployee(ctx context.Context, e Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (user_id, department, job_title, salary_cents, start_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET department=EXCLUDED.department, job_title=EXCLUDED.job_title,
			salary_cents=EXCLUDED.salary_cents, start_date=EXCLUDED.start_date, updated_at=NOW()
	`, e.UserID, e.Department, e.JobTitle, e.SalaryCents, e.StartDate)
	if err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	return nil
}

// Payroll

func (s *PostgresStore) InsertPayrollRun(ctx context.Context, run PayrollRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_runs (id, period_start, period_end, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.PeriodStart, run.PeriodEnd, run.Status, run.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert payroll run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPayrollRun(ctx context.Context, runID string) (PayrollRun, error) {
	var run PayrollRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, period_start, period_end, status, created_by, created_at
		FROM payroll_runs WHERE id=$1
	`, runID).Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Status, &run.CreatedBy, &run.CreatedAt)
	if err != nil {
		return PayrollRun{}, err
	}
	return run, nil
}

func (s *PostgresStore) ListPayrollRuns(ctx context.Context) ([]PayrollRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period_start, period_end, status, created_by, created_at
		FROM payroll_runs ORDER BY period_start DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	defer rows.Close()

	items := make([]PayrollRun, 0)
	for rows.Next() {
		var run PayrollRun
		if err := rows.Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Status, &run.CreatedBy, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payroll run: %w", err)
		}
		items = append(items, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payroll runs: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertPayrollEntry(ctx context.Context, entry PayrollEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_entries (id, run_id, user_id, gross_cents, tax_cents, net_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.RunID, entry.UserID, entry.GrossCents, entry.TaxCents, entry.NetCents)
	if err != nil {
		return fmt.Errorf("insert payroll entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPayrollEntries(ctx context.Context, runID string) ([]PayrollEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pe.id, pe.run_id, pe.user_id, pe.gross_cents, pe.tax_cents, pe.net_cents,
			u.display_name, e.department, e.job_title
		FROM payroll_entries pe
		JOIN users u ON u.id = pe.user_id
		JOIN employees e ON e.user_id = pe.user_id
		WHERE pe.run_id=$1
		ORDER BY u.display_name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list payroll entries: %w", err)
	}
	defer rows.Close()

	items := make([]PayrollEntry, 0)
	for rows.Next() {
		var entry PayrollEntry
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.UserID, &entry.GrossCents, &entry.TaxCents,
			&entry.NetCents, &entry.DisplayName, &entry.Department, &entry.JobTitle); err != nil {
			return nil, fmt.Errorf("scan payroll entry: %w", err)
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payroll entries: %w", err)
	}
	return items, nil
}

// Call records

const callColumns = `id, user_id, contact_name, contact_number, duration_seconds, transcript, summary, created_at`

func scanCall(row interface{ Scan(...any) error }) (CallRecord, error) {
	var c CallRecord
	err := row.Scan(&c.ID, &c.UserID, &c.ContactName, &c.ContactNumber, &c.DurationSeconds, &c.Transcript, &c.Summary, &c.CreatedAt)
	return c, err
}

func (s *PostgresStore) InsertCallRecord(ctx context.Context, c CallRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_records (id, user_id, contact_name, contact_number, duration_seconds, transcript, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.UserID, c.ContactName, c.ContactNumber, c.DurationSeconds, c.Transcript, c.Summary)
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCallRecord(ctx context.Context, callID string) (CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM call_records WHERE id=$1`, callID)
	return scanCall(row)
}

func (s *PostgresStore) ListCallRecords(ctx context.Context, userID string) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+` FROM call_records WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list call records: %w", err)
	}
	defer rows.Close()

	items := make([]CallRecord, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call records: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateCallSummary(ctx context.Context, callID, summary string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE call_records SET summary=$2 WHERE id=$1`, callID, summary)
	if err != nil {
		return fmt.Errorf("update call summary: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertCallSuggestion(ctx context.Context, sug CallSuggestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_suggestions (id, call_id, kind, body, status)
		VALUES ($1, $2, $3, $4, $5)
	`, sug.ID, sug.CallID, sug.Kind, sug.Body, sug.Status)
	if err != nil {
		return fmt.Errorf("insert call suggestion: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCallSuggestions(ctx context.Context, callID string) ([]CallSuggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, call_id, kind, body, status, created_at
		FROM call_suggestions WHERE call_id=$1 ORDER BY created_at
	`, callID)
	if err != nil {
		return nil, fmt.Errorf("list call suggestions: %w", err)
	}
	defer rows.Close()

	items := make([]CallSuggestion, 0)
	for rows.Next() {
		var sug CallSuggestion
		if err := rows.Scan(&sug.ID, &sug.CallID, &sug.Kind, &sug.Body, &sug.Status, &sug.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call suggestion: %w", err)
		}
		items = append(items, sug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call suggestions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateCallSuggestionStatus(ctx context.Context, suggestionID, status string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE call_suggestions SET status=$2 WHERE id=$1`, suggestionID, status)
	if err != nil {
		return false, fmt.Errorf("update suggestion status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("suggestion rows affected: %w", err)
	}
	return affected > 0, nil
}

// Email triage

const triageColumns = `id, user_id, from_address, subject, body, status, suggested_reply, received_at, updated_at`

func scanTriage(row interface{ Scan(...any) error }) (TriageItem, error) {
	var t TriageItem
	err := row.Scan(&t.ID, &t.UserID, &t.FromAddress, &t.Subject, &t.Body, &t.Status, &t.SuggestedReply, &t.ReceivedAt, &t.UpdatedAt)
	return t, err
}

func (s *PostgresStore) InsertTriageItem(ctx context.Context, t TriageItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO triage_items (id, user_id, from_address, subject, body, status, suggested_reply, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.UserID, t.FromAddress, t.Subject, t.Body, t.Status, t.SuggestedReply, t.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert triage item: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTriageItem(ctx context.Context, itemID string) (TriageItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+triageColumns+` FROM triage_items WHERE id=$1`, itemID)
	return scanTriage(row)
}

func (s *PostgresStore) ListTriageItems(ctx context.Context, userID, status string) ([]TriageItem, error) {
	query := `SELECT ` + triageColumns + ` FROM triage_items WHERE user_id=$1`
	args := []any{userID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY received_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list triage items: %w", err)
	}
	defer rows.Close()

	items := make([]TriageItem, 0)
	for rows.Next() {
		t, err := scanTriage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan triage item: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateTriageStatus(ctx context.Context, itemID, status string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE triage_items SET status=$2, updated_at=NOW() WHERE id=$1
	`, itemID, status)
	if err != nil {
		return false, fmt.Errorf("update triage status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("triage rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) SaveTriageDraft(ctx context.Context, itemID, draft string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE triage_items SET suggested_reply=$2, updated_at=NOW() WHERE id=$1
	`, itemID, draft)
	if err != nil {
		return fmt.Errorf("save triage draft: %w", err)
	}
	return nil
}

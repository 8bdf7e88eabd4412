package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"huddle/api/internal/assist"
	"huddle/api/internal/export"
	"huddle/api/internal/rbac"
	"huddle/api/internal/store"
	"huddle/api/internal/util"
)

type EmployeeInput struct {
	UserID      string    `json:"userId"`
	Department  string    `json:"department"`
	JobTitle    string    `json:"jobTitle"`
	SalaryCents int64     `json:"salaryCents"`
	StartDate   time.Time `json:"startDate"`
}

func (s *Service) ListEmployees(ctx context.Context, session Session) ([]store.Employee, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return nil, errForbidden("HR records require admin access")
	}
	return s.store.ListEmployees(ctx)
}

func (s *Service) UpsertEmployee(ctx context.Context, session Session, in EmployeeInput) (store.Employee, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return store.Employee{}, errForbidden("HR records require admin access")
	}
	if in.UserID == "" {
		return store.Employee{}, errValidation("User ID is required")
	}
	if _, err := s.store.GetUserByID(ctx, in.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Employee{}, errNotFound("User not found")
		}
		return store.Employee{}, err
	}
	if in.SalaryCents < 0 {
		return store.Employee{}, errValidation("Salary cannot be negative")
	}
	if in.StartDate.IsZero() {
		return store.Employee{}, errValidation("Start date is required")
	}

	employee := store.Employee{
		UserID:      in.UserID,
		Department:  strings.TrimSpace(in.Department),
		JobTitle:    strings.TrimSpace(in.JobTitle),
		SalaryCents: in.SalaryCents,
		StartDate:   in.StartDate,
	}
	if err := s.store.UpsertEmployee(ctx, employee); err != nil {
		return store.Employee{}, err
	}
	return s.store.GetEmployee(ctx, in.UserID)
}

type PayrollRunInput struct {
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

type PayrollRunDetail struct {
	Run     store.PayrollRun     `json:"run"`
	Entries []store.PayrollEntry `json:"entries"`
	TaxRate float64              `json:"taxRate"`
}

func (s *Service) ListPayrollRuns(ctx context.Context, session Session) ([]store.PayrollRun, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return nil, errForbidden("Payroll requires admin access")
	}
	return s.store.ListPayrollRuns(ctx)
}

func (s *Service) GetPayrollRun(ctx context.Context, session Session, runID string) (PayrollRunDetail, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return PayrollRunDetail{}, errForbidden("Payroll requires admin access")
	}
	run, err := s.store.GetPayrollRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return PayrollRunDetail{}, errNotFound("Payroll run not found")
	}
	if err != nil {
		return PayrollRunDetail{}, err
	}
	entries, err := s.store.ListPayrollEntries(ctx, runID)
	if err != nil {
		return PayrollRunDetail{}, err
	}
	return PayrollRunDetail{Run: run, Entries: entries, TaxRate: s.cfg.PayrollTaxRate}, nil
}

// CreatePayrollRun computes one month of pay for every employee on the
// books before the period ends. Gross is one twelfth of annual salary;
// tax is the configured flat rate, rounded half up.
func (s *Service) CreatePayrollRun(ctx context.Context, session Session, in PayrollRunInput) (PayrollRunDetail, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return PayrollRunDetail{}, errForbidden("Payroll requires admin access")
	}
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return PayrollRunDetail{}, errValidation("Payroll period start and end are required")
	}
	if !in.PeriodEnd.After(in.PeriodStart) {
		return PayrollRunDetail{}, errValidation("Payroll period must end after it starts")
	}

	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return PayrollRunDetail{}, err
	}

	run := store.PayrollRun{
		ID:          util.NewID("pr"),
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Status:      "draft",
		CreatedBy:   session.UserID,
	}
	if err := s.store.InsertPayrollRun(ctx, run); err != nil {
		return PayrollRunDetail{}, err
	}

	for _, emp := range employees {
		if emp.StartDate.After(in.PeriodEnd) {
			continue
		}
		gross, tax, net := computePay(emp.SalaryCents, s.cfg.PayrollTaxRate)
		entry := store.PayrollEntry{
			ID:         util.NewID("pe"),
			RunID:      run.ID,
			UserID:     emp.UserID,
			GrossCents: gross,
			TaxCents:   tax,
			NetCents:   net,
		}
		if err := s.store.InsertPayrollEntry(ctx, entry); err != nil {
			return PayrollRunDetail{}, err
		}
	}
	return s.GetPayrollRun(ctx, session, run.ID)
}

func computePay(annualSalaryCents int64, taxRatePercent float64) (gross, tax, net int64) {
	gross = annualSalaryCents / 12
	tax = int64(math.Round(float64(gross) * taxRatePercent / 100))
	net = gross - tax
	return gross, tax, net
}

// ExportPayrollRun renders the run as a downloadable report.
func (s *Service) ExportPayrollRun(ctx context.Context, session Session, runID string, format export.Format) (*export.Result, error) {
	if !s.Can(session.Role, rbac.ActionAdmin) {
		return nil, errForbidden("Payroll requires admin access")
	}
	if s.export == nil {
		return nil, domainError(503, "EXPORT_UNAVAILABLE", "Export service is not configured", nil)
	}
	if _, err := s.GetPayrollRun(ctx, session, runID); err != nil {
		return nil, err
	}
	return s.export.Export(ctx, runID, format)
}

// payrollExportStore adapts the app data store to the export service.
type payrollExportStore struct {
	store   dataStore
	taxRate float64
}

// NewPayrollExportStore wires payroll data into the export service.
func NewPayrollExportStore(dataStore *store.PostgresStore, taxRate float64) export.DataStore {
	return payrollExportStore{store: dataStore, taxRate: taxRate}
}

func (p payrollExportStore) GetPayrollRun(ctx context.Context, runID string) (export.RunInfo, error) {
	run, err := p.store.GetPayrollRun(ctx, runID)
	if err != nil {
		return export.RunInfo{}, err
	}
	return export.RunInfo{
		ID:          run.ID,
		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		Status:      run.Status,
		TaxRate:     p.taxRate,
	}, nil
}

func (p payrollExportStore) ListPayrollLines(ctx context.Context, runID string) ([]export.Line, error) {
	entries, err := p.store.ListPayrollEntries(ctx, runID)
	if err != nil {
		return nil, err
	}
	lines := make([]export.Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, export.Line{
			EmployeeName: e.DisplayName,
			Department:   e.Department,
			JobTitle:     e.JobTitle,
			GrossCents:   e.GrossCents,
			TaxCents:     e.TaxCents,
			NetCents:     e.NetCents,
		})
	}
	return lines, nil
}

type CallInput struct {
	ContactName     string `json:"contactName"`
	ContactNumber   string `json:"contactNumber"`
	DurationSeconds int    `json:"durationSeconds"`
	Transcript      string `json:"transcript"`
}

type CallDetail struct {
	Call        store.CallRecord       `json:"call"`
	Suggestions []store.CallSuggestion `json:"suggestions"`
}

func (s *Service) ListCalls(ctx context.Context, session Session) ([]store.CallRecord, error) {
	return s.store.ListCallRecords(ctx, session.UserID)
}

func (s *Service) GetCall(ctx context.Context, session Session, callID string) (CallDetail, error) {
	call, err := s.store.GetCallRecord(ctx, callID)
	if errors.Is(err, sql.ErrNoRows) {
		return CallDetail{}, errNotFound("Call not found")
	}
	if err != nil {
		return CallDetail{}, err
	}
	if call.UserID != session.UserID && !s.Can(session.Role, rbac.ActionAdmin) {
		return CallDetail{}, errForbidden("Not your call record")
	}
	suggestions, err := s.store.ListCallSuggestions(ctx, callID)
	if err != nil {
		return CallDetail{}, err
	}
	return CallDetail{Call: call, Suggestions: suggestions}, nil
}

// CreateCall stores a captured call and, when a transcript is present,
// summarizes it and proposes follow-up suggestions.
func (s *Service) CreateCall(ctx context.Context, session Session, in CallInput) (CallDetail, error) {
	if strings.TrimSpace(in.ContactName) == "" && strings.TrimSpace(in.ContactNumber) == "" {
		return CallDetail{}, errValidation("Contact name or number is required")
	}
	if in.DurationSeconds < 0 {
		return CallDetail{}, errValidation("Duration cannot be negative")
	}

	call := store.CallRecord{
		ID:              util.NewID("call"),
		UserID:          session.UserID,
		ContactName:     strings.TrimSpace(in.ContactName),
		ContactNumber:   strings.TrimSpace(in.ContactNumber),
		DurationSeconds: in.DurationSeconds,
		Transcript:      in.Transcript,
	}
	if err := s.store.InsertCallRecord(ctx, call); err != nil {
		return CallDetail{}, err
	}
	if strings.TrimSpace(in.Transcript) != "" {
		if err := s.summarizeCall(ctx, call.ID, in.Transcript); err != nil {
			log.Printf("call summarize failed: call=%s err=%v", call.ID, err)
		}
	}
	return s.GetCall(ctx, session, call.ID)
}

// SummarizeCall re-runs summarization on demand.
func (s *Service) SummarizeCall(ctx context.Context, session Session, callID string) (CallDetail, error) {
	detail, err := s.GetCall(ctx, session, callID)
	if err != nil {
		return CallDetail{}, err
	}
	if strings.TrimSpace(detail.Call.Transcript) == "" {
		return CallDetail{}, errValidation("Call has no transcript to summarize")
	}
	if err := s.summarizeCall(ctx, callID, detail.Call.Transcript); err != nil {
		return CallDetail{}, err
	}
	return s.GetCall(ctx, session, callID)
}

func (s *Service) summarizeCall(ctx context.Context, callID, transcript string) error {
	if s.assist == nil {
		return nil
	}
	summary, err := s.assist.SummarizeCall(ctx, transcript)
	if err != nil {
		return err
	}
	if err := s.store.UpdateCallSummary(ctx, callID, summary.Summary); err != nil {
		return err
	}
	for _, text := range summary.Suggestions {
		suggestion := store.CallSuggestion{
			ID:     util.NewID("cs"),
			CallID: callID,
			Kind:   suggestionKind(text),
			Body:   text,
			Status: "proposed",
		}
		if err := s.store.InsertCallSuggestion(ctx, suggestion); err != nil {
			return err
		}
	}
	return nil
}

func suggestionKind(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "schedule") || strings.Contains(lower, "meeting"):
		return "schedule"
	case strings.Contains(lower, "todo") || strings.Contains(lower, "task"):
		return "todo"
	default:
		return "followup"
	}
}

// ResolveCallSuggestion accepts or dismisses a suggestion. Accepting a
// followup or todo suggestion creates a todo for the caller.
func (s *Service) ResolveCallSuggestion(ctx context.Context, session Session, callID, suggestionID, status string) (CallDetail, error) {
	if status != "accepted" && status != "dismissed" {
		return CallDetail{}, errValidation("Status must be accepted or dismissed")
	}
	detail, err := s.GetCall(ctx, session, callID)
	if err != nil {
		return CallDetail{}, err
	}

	var target *store.CallSuggestion
	for i := range detail.Suggestions {
		if detail.Suggestions[i].ID == suggestionID {
			target = &detail.Suggestions[i]
			break
		}
	}
	if target == nil {
		return CallDetail{}, errNotFound("Suggestion not found")
	}

	updated, err := s.store.UpdateCallSuggestionStatus(ctx, suggestionID, status)
	if err != nil {
		return CallDetail{}, err
	}
	if !updated {
		return CallDetail{}, errNotFound("Suggestion not found")
	}

	if status == "accepted" && (target.Kind == "followup" || target.Kind == "todo") {
		todo := store.Todo{
			ID:         util.NewID("td"),
			AssigneeID: session.UserID,
			Title:      target.Body,
			Notes:      "From call with " + detail.Call.ContactName,
		}
		if err := s.store.InsertTodo(ctx, todo); err != nil {
			return CallDetail{}, err
		}
	}
	return s.GetCall(ctx, session, callID)
}

type TriageInput struct {
	FromAddress string    `json:"fromAddress"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

func (s *Service) ListTriageItems(ctx context.Context, session Session, status string) ([]store.TriageItem, error) {
	switch status {
	case "", "inbox", "needs_reply", "archived", "done":
	default:
		return nil, errValidation("Unknown triage status: " + status)
	}
	return s.store.ListTriageItems(ctx, session.UserID, status)
}

func (s *Service) CreateTriageItem(ctx context.Context, session Session, in TriageInput) (store.TriageItem, error) {
	if strings.TrimSpace(in.FromAddress) == "" {
		return store.TriageItem{}, errValidation("From address is required")
	}
	if strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Body) == "" {
		return store.TriageItem{}, errValidation("Subject or body is required")
	}
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}

	item := store.TriageItem{
		ID:          util.NewID("tri"),
		UserID:      session.UserID,
		FromAddress: strings.TrimSpace(in.FromAddress),
		Subject:     strings.TrimSpace(in.Subject),
		Body:        in.Body,
		Status:      "inbox",
		ReceivedAt:  receivedAt,
	}
	if err := s.store.InsertTriageItem(ctx, item); err != nil {
		return store.TriageItem{}, err
	}
	return s.store.GetTriageItem(ctx, item.ID)
}

func (s *Service) UpdateTriageStatus(ctx context.Context, session Session, itemID, status string) (store.TriageItem, error) {
	switch status {
	case "inbox", "needs_reply", "archived", "done":
	default:
		return store.TriageItem{}, errValidation("Unknown triage status: " + status)
	}
	if _, err := s.getOwnTriageItem(ctx, session, itemID); err != nil {
		return store.TriageItem{}, err
	}
	updated, err := s.store.UpdateTriageStatus(ctx, itemID, status)
	if err != nil {
		return store.TriageItem{}, err
	}
	if !updated {
		return store.TriageItem{}, errNotFound("Triage item not found")
	}
	return s.store.GetTriageItem(ctx, itemID)
}

// DraftTriageReply generates a suggested reply for a triage item and saves
// it on the item.
func (s *Service) DraftTriageReply(ctx context.Context, session Session, itemID string) (store.TriageItem, error) {
	if s.assist == nil {
		return store.TriageItem{}, domainError(503, "ASSIST_UNAVAILABLE", "Assist functions not configured", nil)
	}
	item, err := s.getOwnTriageItem(ctx, session, itemID)
	if err != nil {
		return store.TriageItem{}, err
	}
	reply, err := s.assist.DraftReply(ctx, senderName(item.FromAddress), item.Subject, item.Body)
	if err != nil {
		return store.TriageItem{}, err
	}
	if err := s.store.SaveTriageDraft(ctx, itemID, reply); err != nil {
		return store.TriageItem{}, err
	}
	return s.store.GetTriageItem(ctx, itemID)
}

func (s *Service) getOwnTriageItem(ctx context.Context, session Session, itemID string) (store.TriageItem, error) {
	item, err := s.store.GetTriageItem(ctx, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TriageItem{}, errNotFound("Triage item not found")
	}
	if err != nil {
		return store.TriageItem{}, err
	}
	if item.UserID != session.UserID {
		return store.TriageItem{}, errForbidden("Not your triage item")
	}
	return item, nil
}

// senderName extracts a display name from an email address for reply
// greetings ("maria.lopez@acme.com" -> "maria.lopez").
func senderName(address string) string {
	if i := strings.Index(address, "@"); i > 0 {
		return address[:i]
	}
	return address
}

// DailyDigest assembles today's todos, events and pending triage into a
// short personal briefing.
func (s *Service) DailyDigest(ctx context.Context, session Session) (map[string]any, error) {
	if s.assist == nil {
		return nil, domainError(503, "ASSIST_UNAVAILABLE", "Assist functions not configured", nil)
	}
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	todos, err := s.store.ListTodosByAssignee(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	var todosDue []string
	for _, t := range todos {
		if t.Done {
			continue
		}
		if t.DueAt != nil && t.DueAt.Before(dayEnd) {
			todosDue = append(todosDue, t.Title)
		}
	}

	events, err := s.store.ListEventsForUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	var eventsToday []string
	for _, e := range events {
		if e.StartsAt.Before(dayEnd) && e.EndsAt.After(dayStart) {
			eventsToday = append(eventsToday, e.Title+" at "+e.StartsAt.Format("15:04"))
		}
	}

	pending, err := s.store.ListTriageItems(ctx, session.UserID, "needs_reply")
	if err != nil {
		return nil, err
	}

	digest, err := s.assist.DailyDigest(ctx, assist.DigestInput{
		UserName:      session.UserName,
		TodosDue:      todosDue,
		EventsToday:   eventsToday,
		TriagePending: len(pending),
	})
	if err != nil {
		return nil, err
	}

	// best effort: mail the digest when SMTP is configured
	if s.SMTPConfigured() {
		if user, err := s.store.GetUserByID(ctx, session.UserID); err == nil {
			if err := s.email.SendDigestEmail(user.Email, user.DisplayName, digest); err != nil {
				log.Printf("digest email failed: user=%s err=%v", user.ID, err)
			}
		}
	}
	return map[string]any{"digest": digest}, nil
}

package app

import (
	"encoding/json"
	"time"

	"huddle/api/internal/store"
)

// View mappers shape store rows into API payloads.

func clientView(c store.Client) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"company":      c.Company,
		"contactEmail": c.ContactEmail,
		"contactPhone": c.ContactPhone,
		"notes":        c.Notes,
		"createdAt":    c.CreatedAt,
		"updatedAt":    c.UpdatedAt,
	}
}

func clientViews(items []store.Client) []map[string]any {
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, clientView(item))
	}
	return views
}

func projectView(p store.Project) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"clientId":    p.ClientID,
		"name":        p.Name,
		"description": p.Description,
		"status":      p.Status,
		"createdBy":   p.CreatedBy,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}

func projectViews(items []store.Project) []map[string]any {
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, projectView(item))
	}
	return views
}

func memberView(m store.ProjectMember) map[string]any {
	return map[string]any{
		"userId":      m.UserID,
		"role":        m.Role,
		"displayName": m.DisplayName,
		"email":       m.Email,
		"addedAt":     m.AddedAt,
	}
}

func messageView(m store.Message) map[string]any {
	view := map[string]any{
		"id":         m.ID,
		"roomId":     m.RoomID,
		"roomType":   m.RoomType,
		"authorId":   m.AuthorID,
		"authorName": m.AuthorName,
		"kind":       m.Kind,
		"body":       m.Body,
		"createdAt":  m.CreatedAt,
	}
	if len(m.Payload) > 0 {
		view["payload"] = json.RawMessage(m.Payload)
	}
	return view
}

func messageViews(items []store.Message) []map[string]any {
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, messageView(item))
	}
	return views
}

func voteView(v store.PollVote) map[string]any {
	return map[string]any{
		"messageId":   v.MessageID,
		"userId":      v.UserID,
		"optionIndex": v.OptionIndex,
		"createdAt":   v.CreatedAt,
	}
}

func fileView(f store.File) map[string]any {
	return map[string]any{
		"id":          f.ID,
		"projectId":   f.ProjectID,
		"uploaderId":  f.UploaderID,
		"name":        f.Name,
		"contentType": f.ContentType,
		"sizeBytes":   f.SizeBytes,
		"createdAt":   f.CreatedAt,
	}
}

func todoView(t store.Todo) map[string]any {
	return map[string]any{
		"id":         t.ID,
		"projectId":  t.ProjectID,
		"assigneeId": t.AssigneeID,
		"title":      t.Title,
		"notes":      t.Notes,
		"done":       t.Done,
		"dueAt":      t.DueAt,
		"createdAt":  t.CreatedAt,
		"updatedAt":  t.UpdatedAt,
	}
}

func eventView(e store.Event) map[string]any {
	return map[string]any{
		"id":        e.ID,
		"projectId": e.ProjectID,
		"ownerId":   e.OwnerID,
		"title":     e.Title,
		"location":  e.Location,
		"startsAt":  e.StartsAt,
		"endsAt":    e.EndsAt,
		"createdAt": e.CreatedAt,
		"updatedAt": e.UpdatedAt,
	}
}

func employeeView(e store.Employee) map[string]any {
	return map[string]any{
		"userId":      e.UserID,
		"displayName": e.DisplayName,
		"email":       e.Email,
		"department":  e.Department,
		"jobTitle":    e.JobTitle,
		"salaryCents": e.SalaryCents,
		"startDate":   e.StartDate.Format("2006-01-02"),
	}
}

func payrollRunView(r store.PayrollRun) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"periodStart": r.PeriodStart.Format("2006-01-02"),
		"periodEnd":   r.PeriodEnd.Format("2006-01-02"),
		"status":      r.Status,
		"createdBy":   r.CreatedBy,
		"createdAt":   r.CreatedAt,
	}
}

func payrollEntryView(e store.PayrollEntry) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"userId":      e.UserID,
		"displayName": e.DisplayName,
		"department":  e.Department,
		"jobTitle":    e.JobTitle,
		"grossCents":  e.GrossCents,
		"taxCents":    e.TaxCents,
		"netCents":    e.NetCents,
	}
}

func payrollDetailView(d PayrollRunDetail) map[string]any {
	entries := make([]map[string]any, 0, len(d.Entries))
	for _, entry := range d.Entries {
		entries = append(entries, payrollEntryView(entry))
	}
	return map[string]any{
		"run":     payrollRunView(d.Run),
		"entries": entries,
		"taxRate": d.TaxRate,
	}
}

func callView(c store.CallRecord) map[string]any {
	return map[string]any{
		"id":              c.ID,
		"contactName":     c.ContactName,
		"contactNumber":   c.ContactNumber,
		"durationSeconds": c.DurationSeconds,
		"transcript":      c.Transcript,
		"summary":         c.Summary,
		"createdAt":       c.CreatedAt,
	}
}

func suggestionView(s store.CallSuggestion) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"kind":      s.Kind,
		"body":      s.Body,
		"status":    s.Status,
		"createdAt": s.CreatedAt,
	}
}

func callDetailView(d CallDetail) map[string]any {
	suggestions := make([]map[string]any, 0, len(d.Suggestions))
	for _, suggestion := range d.Suggestions {
		suggestions = append(suggestions, suggestionView(suggestion))
	}
	view := callView(d.Call)
	view["suggestions"] = suggestions
	return view
}

func triageView(t store.TriageItem) map[string]any {
	return map[string]any{
		"id":             t.ID,
		"fromAddress":    t.FromAddress,
		"subject":        t.Subject,
		"body":           t.Body,
		"status":         t.Status,
		"suggestedReply": t.SuggestedReply,
		"receivedAt":     t.ReceivedAt.Format(time.RFC3339),
	}
}

package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"huddle/api/internal/assist"
	"huddle/api/internal/auth"
	"huddle/api/internal/config"
	"huddle/api/internal/store"
)

func newAssistServerAndToken(t *testing.T, fs *fakeStore, role string) (*HTTPServer, string) {
	t.Helper()
	if fs.getUserByIDFn == nil {
		fs.getUserByIDFn = func(_ context.Context, id string) (store.User, error) {
			return store.User{ID: id, DisplayName: "Test User", Role: role}, nil
		}
	}
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		FileUploadScope: "global",
		PayrollTaxRate:  22.0,
	}
	svc := New(cfg, fs, Deps{Assist: assist.NewService(nil)})
	server := NewHTTPServer(svc, "*")

	token, err := auth.IssueToken([]byte(cfg.JWTSecret), auth.Claims{
		Sub:  "u_" + role,
		Name: "Test User",
		Role: role,
		JTI:  "jti-" + role,
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return server, token
}

func TestCreateCallStoresSummaryAndSuggestions(t *testing.T) {
	var saved store.CallRecord
	var summary string
	var suggestions []store.CallSuggestion
	fs := &fakeStore{
		insertCallRecordFn: func(_ context.Context, call store.CallRecord) error {
			saved = call
			return nil
		},
		getCallRecordFn: func(_ context.Context, id string) (store.CallRecord, error) {
			if id == saved.ID {
				call := saved
				call.Summary = summary
				return call, nil
			}
			return store.CallRecord{}, sql.ErrNoRows
		},
		updateCallSummaryFn: func(_ context.Context, _, s string) error {
			summary = s
			return nil
		},
		insertCallSuggestionFn: func(_ context.Context, s store.CallSuggestion) error {
			suggestions = append(suggestions, s)
			return nil
		},
		listCallSuggestionsFn: func(context.Context, string) ([]store.CallSuggestion, error) {
			return suggestions, nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	body := `{"contactName":"Dana","durationSeconds":300,"transcript":"Thanks for the call. I'll send the revised proposal tomorrow. We need to schedule a review with the design team."}`
	rr := doJSON(t, server, http.MethodPost, "/api/calls", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if summary == "" {
		t.Fatal("expected a summary to be stored")
	}
	if len(suggestions) == 0 {
		t.Fatal("expected follow-up suggestions")
	}
	for _, s := range suggestions {
		if s.Status != "proposed" {
			t.Fatalf("new suggestion status = %q, want proposed", s.Status)
		}
	}
}

func TestResolveAcceptedSuggestionCreatesTodo(t *testing.T) {
	suggestion := store.CallSuggestion{
		ID: "cs_1", CallID: "call_1", Kind: "followup",
		Body: "Follow up: send the revised proposal", Status: "proposed",
	}
	var createdTodo store.Todo
	fs := &fakeStore{
		getCallRecordFn: func(_ context.Context, id string) (store.CallRecord, error) {
			return store.CallRecord{ID: id, UserID: "u_member", ContactName: "Dana"}, nil
		},
		listCallSuggestionsFn: func(context.Context, string) ([]store.CallSuggestion, error) {
			return []store.CallSuggestion{suggestion}, nil
		},
		updateCallSuggestionStatusFn: func(_ context.Context, _, status string) (bool, error) {
			suggestion.Status = status
			return true, nil
		},
		insertTodoFn: func(_ context.Context, todo store.Todo) error {
			createdTodo = todo
			return nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	rr := doJSON(t, server, http.MethodPost, "/api/calls/call_1/suggestions/cs_1", token, `{"status":"accepted"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if suggestion.Status != "accepted" {
		t.Fatalf("suggestion status = %q", suggestion.Status)
	}
	if createdTodo.Title != suggestion.Body {
		t.Fatalf("todo title = %q", createdTodo.Title)
	}
	if createdTodo.AssigneeID != "u_member" {
		t.Fatalf("todo assignee = %q", createdTodo.AssigneeID)
	}
	if !strings.Contains(createdTodo.Notes, "Dana") {
		t.Fatalf("todo notes = %q", createdTodo.Notes)
	}
}

func TestDismissedSuggestionDoesNotCreateTodo(t *testing.T) {
	fs := &fakeStore{
		getCallRecordFn: func(_ context.Context, id string) (store.CallRecord, error) {
			return store.CallRecord{ID: id, UserID: "u_member"}, nil
		},
		listCallSuggestionsFn: func(context.Context, string) ([]store.CallSuggestion, error) {
			return []store.CallSuggestion{{ID: "cs_1", Kind: "followup", Status: "proposed"}}, nil
		},
		updateCallSuggestionStatusFn: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
		insertTodoFn: func(context.Context, store.Todo) error {
			t.Fatal("dismissing a suggestion must not create a todo")
			return nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	rr := doJSON(t, server, http.MethodPost, "/api/calls/call_1/suggestions/cs_1", token, `{"status":"dismissed"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTriageLifecycle(t *testing.T) {
	items := map[string]store.TriageItem{}
	fs := &fakeStore{
		insertTriageItemFn: func(_ context.Context, item store.TriageItem) error {
			items[item.ID] = item
			return nil
		},
		getTriageItemFn: func(_ context.Context, id string) (store.TriageItem, error) {
			if item, ok := items[id]; ok {
				return item, nil
			}
			return store.TriageItem{}, sql.ErrNoRows
		},
		updateTriageStatusFn: func(_ context.Context, id, status string) (bool, error) {
			item, ok := items[id]
			if !ok {
				return false, nil
			}
			item.Status = status
			items[id] = item
			return true, nil
		},
		saveTriageDraftFn: func(_ context.Context, id, reply string) error {
			item := items[id]
			item.SuggestedReply = reply
			items[id] = item
			return nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	rr := doJSON(t, server, http.MethodPost, "/api/triage", token,
		`{"fromAddress":"dana@client.test","subject":"Contract question","body":"Can we extend the deadline?"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if created["status"] != "inbox" {
		t.Fatalf("new item status = %v", created["status"])
	}
	itemID := created["id"].(string)

	rr = doJSON(t, server, http.MethodPost, "/api/triage/"+itemID+"/status", token, `{"status":"sorted"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad status should 422, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodPost, "/api/triage/"+itemID+"/status", token, `{"status":"needs_reply"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status update = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/triage/"+itemID+"/draft", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("draft status = %d body=%s", rr.Code, rr.Body.String())
	}
	var drafted map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &drafted); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	reply, _ := drafted["suggestedReply"].(string)
	if !strings.Contains(reply, "Contract question") {
		t.Fatalf("draft reply = %q", reply)
	}
}

func TestTriageItemsArePrivate(t *testing.T) {
	fs := &fakeStore{
		getTriageItemFn: func(_ context.Context, id string) (store.TriageItem, error) {
			return store.TriageItem{ID: id, UserID: "u_someone_else", Status: "inbox"}, nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	rr := doJSON(t, server, http.MethodPost, "/api/triage/tri_1/status", token, `{"status":"done"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDailyDigestComposes(t *testing.T) {
	due := time.Now().Add(2 * time.Hour)
	fs := &fakeStore{
		listTodosByAssigneeFn: func(context.Context, string) ([]store.Todo, error) {
			return []store.Todo{{ID: "td_1", Title: "Send invoice", DueAt: &due}}, nil
		},
		listEventsForUserFn: func(context.Context, string) ([]store.Event, error) {
			return []store.Event{{
				ID: "ev_1", Title: "Design review",
				StartsAt: time.Now().Add(time.Hour), EndsAt: time.Now().Add(2 * time.Hour),
			}}, nil
		},
		listTriageItemsFn: func(context.Context, string, string) ([]store.TriageItem, error) {
			return []store.TriageItem{{ID: "tri_1", Status: "needs_reply"}}, nil
		},
	}
	server, token := newAssistServerAndToken(t, fs, "member")

	rr := doJSON(t, server, http.MethodGet, "/api/digest", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("digest status = %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	digest, _ := payload["digest"].(string)
	if !strings.Contains(digest, "Send invoice") {
		t.Fatalf("digest missing todo: %q", digest)
	}
	if !strings.Contains(digest, "Design review") {
		t.Fatalf("digest missing event: %q", digest)
	}
}

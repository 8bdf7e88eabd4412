package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"huddle/api/internal/config"
	"huddle/api/internal/constellation"
	"huddle/api/internal/store"
	"huddle/api/internal/workload"
)

type fakeStore struct {
	getUserByIDFn                func(context.Context, string) (store.User, error)
	listUsersFn                  func(context.Context) ([]store.User, error)
	activeProjectMembersFn       func(context.Context) ([]store.User, error)
	countProjectMessagesFn       func(context.Context) ([]store.ActivityCount, error)
	countFilesByUploaderFn       func(context.Context, bool) ([]store.ActivityCount, error)
	countTodosByAssigneeFn       func(context.Context) ([]store.ActivityCount, error)
	countEventsByOwnerFn         func(context.Context) ([]store.ActivityCount, error)
	listDirectMessagesFn         func(context.Context) ([]store.Message, error)
	listRoomMessagesFn           func(context.Context, string, int) ([]store.Message, error)
	insertMessageFn              func(context.Context, store.Message) error
	getMessageFn                 func(context.Context, string) (store.Message, error)
	castPollVoteFn               func(context.Context, string, string, int) error
	listPollVotesFn              func(context.Context, string) ([]store.PollVote, error)
	getClientFn                  func(context.Context, string) (store.Client, error)
	insertClientFn               func(context.Context, store.Client) error
	getProjectFn                 func(context.Context, string) (store.Project, error)
	insertProjectFn              func(context.Context, store.Project) error
	listProjectMembersFn         func(context.Context, string) ([]store.ProjectMember, error)
	addProjectMemberFn           func(context.Context, string, string, string) error
	listEmployeesFn              func(context.Context) ([]store.Employee, error)
	insertPayrollRunFn           func(context.Context, store.PayrollRun) error
	getPayrollRunFn              func(context.Context, string) (store.PayrollRun, error)
	insertPayrollEntryFn         func(context.Context, store.PayrollEntry) error
	listPayrollEntriesFn         func(context.Context, string) ([]store.PayrollEntry, error)
	insertCallRecordFn           func(context.Context, store.CallRecord) error
	getCallRecordFn              func(context.Context, string) (store.CallRecord, error)
	updateCallSummaryFn          func(context.Context, string, string) error
	insertCallSuggestionFn       func(context.Context, store.CallSuggestion) error
	listCallSuggestionsFn        func(context.Context, string) ([]store.CallSuggestion, error)
	updateCallSuggestionStatusFn func(context.Context, string, string) (bool, error)
	insertTodoFn                 func(context.Context, store.Todo) error
	getTodoFn                    func(context.Context, string) (store.Todo, error)
	listTodosByAssigneeFn        func(context.Context, string) ([]store.Todo, error)
	listEventsForUserFn          func(context.Context, string) ([]store.Event, error)
	getTriageItemFn              func(context.Context, string) (store.TriageItem, error)
	listTriageItemsFn            func(context.Context, string, string) ([]store.TriageItem, error)
	insertTriageItemFn           func(context.Context, store.TriageItem) error
	updateTriageStatusFn         func(context.Context, string, string) (bool, error)
	saveTriageDraftFn            func(context.Context, string, string) error
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, id)
	}
	return store.User{ID: id, DisplayName: "Test User", Role: "member"}, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]store.User, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) SaveRefreshSession(context.Context, string, string, time.Time) error { return nil }
func (f *fakeStore) LookupRefreshSession(context.Context, string) (store.User, error) {
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) RevokeRefreshSession(context.Context, string) error          { return nil }
func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error  { return nil }
func (f *fakeStore) IsAccessTokenRevoked(context.Context, string) (bool, error)  { return false, nil }

func (f *fakeStore) ListClients(context.Context) ([]store.Client, error) { return nil, nil }
func (f *fakeStore) GetClient(ctx context.Context, id string) (store.Client, error) {
	if f.getClientFn != nil {
		return f.getClientFn(ctx, id)
	}
	return store.Client{}, sql.ErrNoRows
}
func (f *fakeStore) InsertClient(ctx context.Context, c store.Client) error {
	if f.insertClientFn != nil {
		return f.insertClientFn(ctx, c)
	}
	return nil
}
func (f *fakeStore) UpdateClient(context.Context, store.Client) error { return nil }
func (f *fakeStore) DeleteClient(context.Context, string) error       { return nil }

func (f *fakeStore) ListProjects(context.Context, string) ([]store.Project, error) { return nil, nil }
func (f *fakeStore) GetProject(ctx context.Context, id string) (store.Project, error) {
	if f.getProjectFn != nil {
		return f.getProjectFn(ctx, id)
	}
	return store.Project{}, sql.ErrNoRows
}
func (f *fakeStore) InsertProject(ctx context.Context, p store.Project) error {
	if f.insertProjectFn != nil {
		return f.insertProjectFn(ctx, p)
	}
	return nil
}
func (f *fakeStore) UpdateProject(context.Context, store.Project) error { return nil }
func (f *fakeStore) ListProjectMembers(ctx context.Context, projectID string) ([]store.ProjectMember, error) {
	if f.listProjectMembersFn != nil {
		return f.listProjectMembersFn(ctx, projectID)
	}
	return nil, nil
}
func (f *fakeStore) AddProjectMember(ctx context.Context, projectID, userID, role string) error {
	if f.addProjectMemberFn != nil {
		return f.addProjectMemberFn(ctx, projectID, userID, role)
	}
	return nil
}
func (f *fakeStore) RemoveProjectMember(context.Context, string, string) error { return nil }

func (f *fakeStore) ActiveProjectMembers(ctx context.Context) ([]store.User, error) {
	if f.activeProjectMembersFn != nil {
		return f.activeProjectMembersFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) CountProjectMessagesByAuthor(ctx context.Context) ([]store.ActivityCount, error) {
	if f.countProjectMessagesFn != nil {
		return f.countProjectMessagesFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) CountFilesByUploader(ctx context.Context, projectScoped bool) ([]store.ActivityCount, error) {
	if f.countFilesByUploaderFn != nil {
		return f.countFilesByUploaderFn(ctx, projectScoped)
	}
	return nil, nil
}
func (f *fakeStore) CountTodosByAssignee(ctx context.Context) ([]store.ActivityCount, error) {
	if f.countTodosByAssigneeFn != nil {
		return f.countTodosByAssigneeFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) CountEventsByOwner(ctx context.Context) ([]store.ActivityCount, error) {
	if f.countEventsByOwnerFn != nil {
		return f.countEventsByOwnerFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) ListRoomMessages(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if f.listRoomMessagesFn != nil {
		return f.listRoomMessagesFn(ctx, roomID, limit)
	}
	return nil, nil
}
func (f *fakeStore) ListDirectMessages(ctx context.Context) ([]store.Message, error) {
	if f.listDirectMessagesFn != nil {
		return f.listDirectMessagesFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) InsertMessage(ctx context.Context, m store.Message) error {
	if f.insertMessageFn != nil {
		return f.insertMessageFn(ctx, m)
	}
	return nil
}
func (f *fakeStore) GetMessage(ctx context.Context, id string) (store.Message, error) {
	if f.getMessageFn != nil {
		return f.getMessageFn(ctx, id)
	}
	return store.Message{}, sql.ErrNoRows
}
func (f *fakeStore) CastPollVote(ctx context.Context, messageID, userID string, optionIndex int) error {
	if f.castPollVoteFn != nil {
		return f.castPollVoteFn(ctx, messageID, userID, optionIndex)
	}
	return nil
}
func (f *fakeStore) ListPollVotes(ctx context.Context, messageID string) ([]store.PollVote, error) {
	if f.listPollVotesFn != nil {
		return f.listPollVotesFn(ctx, messageID)
	}
	return nil, nil
}

func (f *fakeStore) InsertFile(context.Context, store.File) error { return nil }
func (f *fakeStore) GetFile(context.Context, string) (store.File, error) {
	return store.File{}, sql.ErrNoRows
}
func (f *fakeStore) DeleteFile(context.Context, string) error { return nil }
func (f *fakeStore) ListProjectFiles(context.Context, string) ([]store.File, error) {
	return nil, nil
}

func (f *fakeStore) ListTodosByAssignee(ctx context.Context, userID string) ([]store.Todo, error) {
	if f.listTodosByAssigneeFn != nil {
		return f.listTodosByAssigneeFn(ctx, userID)
	}
	return nil, nil
}
func (f *fakeStore) GetTodo(ctx context.Context, id string) (store.Todo, error) {
	if f.getTodoFn != nil {
		return f.getTodoFn(ctx, id)
	}
	return store.Todo{}, sql.ErrNoRows
}
func (f *fakeStore) InsertTodo(ctx context.Context, todo store.Todo) error {
	if f.insertTodoFn != nil {
		return f.insertTodoFn(ctx, todo)
	}
	return nil
}
func (f *fakeStore) UpdateTodo(context.Context, store.Todo) error { return nil }
func (f *fakeStore) DeleteTodo(context.Context, string) error     { return nil }

func (f *fakeStore) ListEventsForUser(ctx context.Context, userID string) ([]store.Event, error) {
	if f.listEventsForUserFn != nil {
		return f.listEventsForUserFn(ctx, userID)
	}
	return nil, nil
}
func (f *fakeStore) GetEvent(context.Context, string) (store.Event, error) {
	return store.Event{}, sql.ErrNoRows
}
func (f *fakeStore) InsertEvent(context.Context, store.Event) error { return nil }
func (f *fakeStore) UpdateEvent(context.Context, store.Event) error { return nil }
func (f *fakeStore) DeleteEvent(context.Context, string) error      { return nil }

func (f *fakeStore) ListEmployees(ctx context.Context) ([]store.Employee, error) {
	if f.listEmployeesFn != nil {
		return f.listEmployeesFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) GetEmployee(context.Context, string) (store.Employee, error) {
	return store.Employee{}, sql.ErrNoRows
}
func (f *fakeStore) UpsertEmployee(context.Context, store.Employee) error { return nil }
func (f *fakeStore) InsertPayrollRun(ctx context.Context, run store.PayrollRun) error {
	if f.insertPayrollRunFn != nil {
		return f.insertPayrollRunFn(ctx, run)
	}
	return nil
}
func (f *fakeStore) GetPayrollRun(ctx context.Context, runID string) (store.PayrollRun, error) {
	if f.getPayrollRunFn != nil {
		return f.getPayrollRunFn(ctx, runID)
	}
	return store.PayrollRun{}, sql.ErrNoRows
}
func (f *fakeStore) ListPayrollRuns(context.Context) ([]store.PayrollRun, error) { return nil, nil }
func (f *fakeStore) InsertPayrollEntry(ctx context.Context, entry store.PayrollEntry) error {
	if f.insertPayrollEntryFn != nil {
		return f.insertPayrollEntryFn(ctx, entry)
	}
	return nil
}
func (f *fakeStore) ListPayrollEntries(ctx context.Context, runID string) ([]store.PayrollEntry, error) {
	if f.listPayrollEntriesFn != nil {
		return f.listPayrollEntriesFn(ctx, runID)
	}
	return nil, nil
}

func (f *fakeStore) InsertCallRecord(ctx context.Context, call store.CallRecord) error {
	if f.insertCallRecordFn != nil {
		return f.insertCallRecordFn(ctx, call)
	}
	return nil
}
func (f *fakeStore) GetCallRecord(ctx context.Context, id string) (store.CallRecord, error) {
	if f.getCallRecordFn != nil {
		return f.getCallRecordFn(ctx, id)
	}
	return store.CallRecord{}, sql.ErrNoRows
}
func (f *fakeStore) ListCallRecords(context.Context, string) ([]store.CallRecord, error) {
	return nil, nil
}
func (f *fakeStore) UpdateCallSummary(ctx context.Context, id, summary string) error {
	if f.updateCallSummaryFn != nil {
		return f.updateCallSummaryFn(ctx, id, summary)
	}
	return nil
}
func (f *fakeStore) InsertCallSuggestion(ctx context.Context, s store.CallSuggestion) error {
	if f.insertCallSuggestionFn != nil {
		return f.insertCallSuggestionFn(ctx, s)
	}
	return nil
}
func (f *fakeStore) ListCallSuggestions(ctx context.Context, callID string) ([]store.CallSuggestion, error) {
	if f.listCallSuggestionsFn != nil {
		return f.listCallSuggestionsFn(ctx, callID)
	}
	return nil, nil
}
func (f *fakeStore) UpdateCallSuggestionStatus(ctx context.Context, id, status string) (bool, error) {
	if f.updateCallSuggestionStatusFn != nil {
		return f.updateCallSuggestionStatusFn(ctx, id, status)
	}
	return false, nil
}

func (f *fakeStore) InsertTriageItem(ctx context.Context, item store.TriageItem) error {
	if f.insertTriageItemFn != nil {
		return f.insertTriageItemFn(ctx, item)
	}
	return nil
}
func (f *fakeStore) GetTriageItem(ctx context.Context, id string) (store.TriageItem, error) {
	if f.getTriageItemFn != nil {
		return f.getTriageItemFn(ctx, id)
	}
	return store.TriageItem{}, sql.ErrNoRows
}
func (f *fakeStore) ListTriageItems(ctx context.Context, userID, status string) ([]store.TriageItem, error) {
	if f.listTriageItemsFn != nil {
		return f.listTriageItemsFn(ctx, userID, status)
	}
	return nil, nil
}
func (f *fakeStore) UpdateTriageStatus(ctx context.Context, id, status string) (bool, error) {
	if f.updateTriageStatusFn != nil {
		return f.updateTriageStatusFn(ctx, id, status)
	}
	return false, nil
}
func (f *fakeStore) SaveTriageDraft(ctx context.Context, id, reply string) error {
	if f.saveTriageDraftFn != nil {
		return f.saveTriageDraftFn(ctx, id, reply)
	}
	return nil
}

func newTestService(fs *fakeStore) *Service {
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		FileUploadScope: "global",
		PayrollTaxRate:  22.0,
	}
	return New(cfg, fs, Deps{})
}

func TestTeamWorkloadScoresBatch(t *testing.T) {
	fs := &fakeStore{
		activeProjectMembersFn: func(context.Context) ([]store.User, error) {
			return []store.User{
				{ID: "u_ana", DisplayName: "Ana"},
				{ID: "u_bo", DisplayName: "Bo"},
			}, nil
		},
		countProjectMessagesFn: func(context.Context) ([]store.ActivityCount, error) {
			return []store.ActivityCount{{UserID: "u_ana", Count: 10}, {UserID: "u_bo", Count: 5}}, nil
		},
		countFilesByUploaderFn: func(_ context.Context, projectScoped bool) ([]store.ActivityCount, error) {
			if projectScoped {
				t.Fatal("global file scope must not request project-scoped counts")
			}
			return []store.ActivityCount{{UserID: "u_ana", Count: 4}}, nil
		},
		countTodosByAssigneeFn: func(context.Context) ([]store.ActivityCount, error) {
			return []store.ActivityCount{{UserID: "u_bo", Count: 8}}, nil
		},
		countEventsByOwnerFn: func(context.Context) ([]store.ActivityCount, error) {
			return []store.ActivityCount{{UserID: "u_ana", Count: 2}, {UserID: "u_bo", Count: 2}}, nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.TeamWorkload(context.Background())
	if err != nil {
		t.Fatalf("TeamWorkload: %v", err)
	}
	scores, ok := payload["scores"].([]map[string]any)
	if !ok {
		t.Fatalf("expected scores slice, got %T", payload["scores"])
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}

	byUser := map[string]float64{}
	for _, entry := range scores {
		byUser[entry["userId"].(string)] = entry["loadScore"].(float64)
	}
	// ana: chat 10/10*.25 + files 4/4*.20 + todos 0 + events 2/2*.15 = 0.60 -> 60
	if got := byUser["u_ana"]; got != 60 {
		t.Fatalf("ana load = %v, want 60", got)
	}
	// bo: chat 5/10*.25 + files 0 + todos 8/8*.40 + events 2/2*.15 = 0.675 -> 67.5
	if got := byUser["u_bo"]; got != 67.5 {
		t.Fatalf("bo load = %v, want 67.5", got)
	}
}

func TestTeamWorkloadEmptyTeam(t *testing.T) {
	svc := newTestService(&fakeStore{})
	payload, err := svc.TeamWorkload(context.Background())
	if err != nil {
		t.Fatalf("TeamWorkload: %v", err)
	}
	scores, ok := payload["scores"].([]workload.Score)
	if !ok {
		t.Fatalf("expected empty score slice, got %T", payload["scores"])
	}
	if len(scores) != 0 {
		t.Fatalf("expected no scores, got %v", scores)
	}
}

func TestConstellationOrdersByRecentActivity(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	self := "u_self"
	fs := &fakeStore{
		listUsersFn: func(context.Context) ([]store.User, error) {
			return []store.User{
				{ID: self, DisplayName: "Self"},
				{ID: "u_busy", DisplayName: "Busy"},
				{ID: "u_quiet", DisplayName: "Quiet"},
			}, nil
		},
		listDirectMessagesFn: func(context.Context) ([]store.Message, error) {
			pair := func(peer string) string { return constellation.PairRoomID(self, peer) }
			msgs := []store.Message{
				{AuthorID: "u_quiet", RoomType: "dm", RoomID: pair("u_quiet"), CreatedAt: now.Add(-time.Hour)},
			}
			for i := 0; i < 5; i++ {
				msgs = append(msgs, store.Message{
					AuthorID: "u_busy", RoomType: "dm", RoomID: pair("u_busy"),
					CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
				})
			}
			return msgs, nil
		},
	}
	svc := newTestService(fs)
	svc.now = func() time.Time { return now }
	svc.rnd = func() float64 { return 0.5 }

	payload, err := svc.Constellation(context.Background(), self)
	if err != nil {
		t.Fatalf("Constellation: %v", err)
	}
	if payload["self"] != self {
		t.Fatalf("self = %v", payload["self"])
	}
	placements, ok := payload["placements"].([]constellation.Placement)
	if !ok {
		t.Fatalf("expected placements slice, got %T", payload["placements"])
	}
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	if placements[0].UserID != "u_busy" {
		t.Fatalf("most active contact should come first, got %s", placements[0].UserID)
	}
	if placements[0].Distance >= placements[1].Distance {
		t.Fatalf("busier contact should sit closer: %v vs %v", placements[0].Distance, placements[1].Distance)
	}
}

func TestComputePay(t *testing.T) {
	tests := []struct {
		name    string
		annual  int64
		rate    float64
		gross   int64
		tax     int64
		net     int64
	}{
		{name: "even salary", annual: 12000000, rate: 22.0, gross: 1000000, tax: 220000, net: 780000},
		{name: "rounds tax half up", annual: 1200000, rate: 22.5, gross: 100000, tax: 22500, net: 77500},
		{name: "zero salary", annual: 0, rate: 22.0, gross: 0, tax: 0, net: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gross, tax, net := computePay(tc.annual, tc.rate)
			if gross != tc.gross || tax != tc.tax || net != tc.net {
				t.Fatalf("computePay(%d, %v) = (%d, %d, %d), want (%d, %d, %d)",
					tc.annual, tc.rate, gross, tax, net, tc.gross, tc.tax, tc.net)
			}
		})
	}
}

func TestCreatePayrollRunSkipsFutureHires(t *testing.T) {
	periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	var entries []store.PayrollEntry
	var savedRun store.PayrollRun
	fs := &fakeStore{
		listEmployeesFn: func(context.Context) ([]store.Employee, error) {
			return []store.Employee{
				{UserID: "u_old", SalaryCents: 12000000, StartDate: periodStart.AddDate(-1, 0, 0)},
				{UserID: "u_new", SalaryCents: 9000000, StartDate: periodEnd.AddDate(0, 1, 0)},
			}, nil
		},
		insertPayrollRunFn: func(_ context.Context, run store.PayrollRun) error {
			savedRun = run
			return nil
		},
		insertPayrollEntryFn: func(_ context.Context, entry store.PayrollEntry) error {
			entries = append(entries, entry)
			return nil
		},
		getPayrollRunFn: func(_ context.Context, runID string) (store.PayrollRun, error) {
			if runID == savedRun.ID {
				return savedRun, nil
			}
			return store.PayrollRun{}, sql.ErrNoRows
		},
		listPayrollEntriesFn: func(context.Context, string) ([]store.PayrollEntry, error) {
			return entries, nil
		},
	}
	svc := newTestService(fs)
	admin := Session{UserID: "u_admin", Role: "admin"}

	detail, err := svc.CreatePayrollRun(context.Background(), admin, PayrollRunInput{
		PeriodStart: periodStart, PeriodEnd: periodEnd,
	})
	if err != nil {
		t.Fatalf("CreatePayrollRun: %v", err)
	}
	if len(detail.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(detail.Entries))
	}
	entry := detail.Entries[0]
	if entry.UserID != "u_old" {
		t.Fatalf("expected entry for u_old, got %s", entry.UserID)
	}
	if entry.GrossCents != 1000000 || entry.TaxCents != 220000 || entry.NetCents != 780000 {
		t.Fatalf("unexpected pay: gross=%d tax=%d net=%d", entry.GrossCents, entry.TaxCents, entry.NetCents)
	}
	if detail.Run.Status != "draft" {
		t.Fatalf("new run status = %q, want draft", detail.Run.Status)
	}
}

func TestCreatePayrollRunRequiresAdmin(t *testing.T) {
	svc := newTestService(&fakeStore{})
	member := Session{UserID: "u_m", Role: "member"}

	_, err := svc.CreatePayrollRun(context.Background(), member, PayrollRunInput{
		PeriodStart: time.Now(), PeriodEnd: time.Now().AddDate(0, 1, 0),
	})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestSuggestionKind(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Follow up: send the revised quote", "followup"},
		{"Schedule a kickoff meeting", "schedule"},
		{"Add a task to update the contract", "todo"},
	}
	for _, tc := range tests {
		if got := suggestionKind(tc.text); got != tc.want {
			t.Fatalf("suggestionKind(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestSessionIssueAndParse(t *testing.T) {
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, id string) (store.User, error) {
			return store.User{ID: id, DisplayName: "Maria", Role: "manager"}, nil
		},
	}
	svc := newTestService(fs)

	session, err := svc.CreateSession(context.Background(), "u_maria")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Token == "" || session.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if session.Role != "manager" {
		t.Fatalf("session role = %q", session.Role)
	}

	parsed, err := svc.SessionFromToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserID != "u_maria" || parsed.UserName != "Maria" {
		t.Fatalf("parsed session = %+v", parsed)
	}
}


package app

import (
	"context"
	"io"
	"math/rand"
	"time"

	"huddle/api/internal/assist"
	"huddle/api/internal/auth"
	"huddle/api/internal/authpw"
	"huddle/api/internal/config"
	"huddle/api/internal/constellation"
	"huddle/api/internal/email"
	"huddle/api/internal/export"
	"huddle/api/internal/metrics"
	"huddle/api/internal/rbac"
	"huddle/api/internal/realtime"
	"huddle/api/internal/search"
	"huddle/api/internal/store"
	"huddle/api/internal/util"
	"huddle/api/internal/workload"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// dataStore is the persistence surface the service needs. PostgresStore
// implements all of it; tests supply a fake.
type dataStore interface {
	Ping(ctx context.Context) error

	// users and credentials
	GetUserByID(context.Context, string) (store.User, error)
	ListUsers(context.Context) ([]store.User, error)
	SaveRefreshSession(context.Context, string, string, time.Time) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeRefreshSession(context.Context, string) error
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	// clients and projects
	ListClients(context.Context) ([]store.Client, error)
	GetClient(context.Context, string) (store.Client, error)
	InsertClient(context.Context, store.Client) error
	UpdateClient(context.Context, store.Client) error
	DeleteClient(context.Context, string) error
	ListProjects(context.Context, string) ([]store.Project, error)
	GetProject(context.Context, string) (store.Project, error)
	InsertProject(context.Context, store.Project) error
	UpdateProject(context.Context, store.Project) error
	ListProjectMembers(context.Context, string) ([]store.ProjectMember, error)
	AddProjectMember(context.Context, string, string, string) error
	RemoveProjectMember(context.Context, string, string) error

	// workload aggregation
	ActiveProjectMembers(context.Context) ([]store.User, error)
	CountProjectMessagesByAuthor(context.Context) ([]store.ActivityCount, error)
	CountFilesByUploader(context.Context, bool) ([]store.ActivityCount, error)
	CountTodosByAssignee(context.Context) ([]store.ActivityCount, error)
	CountEventsByOwner(context.Context) ([]store.ActivityCount, error)

	// chat
	ListRoomMessages(context.Context, string, int) ([]store.Message, error)
	ListDirectMessages(context.Context) ([]store.Message, error)
	InsertMessage(context.Context, store.Message) error
	GetMessage(context.Context, string) (store.Message, error)
	CastPollVote(context.Context, string, string, int) error
	ListPollVotes(context.Context, string) ([]store.PollVote, error)

	// files
	InsertFile(context.Context, store.File) error
	GetFile(context.Context, string) (store.File, error)
	DeleteFile(context.Context, string) error
	ListProjectFiles(context.Context, string) ([]store.File, error)

	// todos and events
	ListTodosByAssignee(context.Context, string) ([]store.Todo, error)
	GetTodo(context.Context, string) (store.Todo, error)
	InsertTodo(context.Context, store.Todo) error
	UpdateTodo(context.Context, store.Todo) error
	DeleteTodo(context.Context, string) error
	ListEventsForUser(context.Context, string) ([]store.Event, error)
	GetEvent(context.Context, string) (store.Event, error)
	InsertEvent(context.Context, store.Event) error
	UpdateEvent(context.Context, store.Event) error
	DeleteEvent(context.Context, string) error

	// HR and payroll
	ListEmployees(context.Context) ([]store.Employee, error)
	GetEmployee(context.Context, string) (store.Employee, error)
	UpsertEmployee(context.Context, store.Employee) error
	InsertPayrollRun(context.Context, store.PayrollRun) error
	GetPayrollRun(context.Context, string) (store.PayrollRun, error)
	ListPayrollRuns(context.Context) ([]store.PayrollRun, error)
	InsertPayrollEntry(context.Context, store.PayrollEntry) error
	ListPayrollEntries(context.Context, string) ([]store.PayrollEntry, error)

	// calls
	InsertCallRecord(context.Context, store.CallRecord) error
	GetCallRecord(context.Context, string) (store.CallRecord, error)
	ListCallRecords(context.Context, string) ([]store.CallRecord, error)
	UpdateCallSummary(context.Context, string, string) error
	InsertCallSuggestion(context.Context, store.CallSuggestion) error
	ListCallSuggestions(context.Context, string) ([]store.CallSuggestion, error)
	UpdateCallSuggestionStatus(context.Context, string, string) (bool, error)

	// email triage
	InsertTriageItem(context.Context, store.TriageItem) error
	GetTriageItem(context.Context, string) (store.TriageItem, error)
	ListTriageItems(context.Context, string, string) ([]store.TriageItem, error)
	UpdateTriageStatus(context.Context, string, string) (bool, error)
	SaveTriageDraft(context.Context, string, string) error
}

// sessionStore holds refresh tokens. Redis when configured, Postgres
// otherwise.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// fileStore is the object storage surface for uploads.
type fileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

// Deps bundles the optional collaborator services. Any of them may be nil;
// the corresponding features degrade or turn off.
type Deps struct {
	AuthPW   *authpw.Service
	Email    *email.Service
	Search   *search.Service
	Assist   *assist.Service
	Export   *export.Service
	Broker   *realtime.Broker
	Files    fileStore
	Metrics  *metrics.Manager
	Sessions sessionStore
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	authpw   *authpw.Service
	email    *email.Service
	search   *search.Service
	assist   *assist.Service
	export   *export.Service
	broker   *realtime.Broker
	files    fileStore
	metrics  *metrics.Manager

	now func() time.Time
	rnd func() float64
}

func New(cfg config.Config, st dataStore, deps Deps) *Service {
	s := &Service{
		cfg:      cfg,
		store:    st,
		sessions: deps.Sessions,
		authpw:   deps.AuthPW,
		email:    deps.Email,
		search:   deps.Search,
		assist:   deps.Assist,
		export:   deps.Export,
		broker:   deps.Broker,
		files:    deps.Files,
		metrics:  deps.Metrics,
		now:      time.Now,
		rnd:      rand.Float64,
	}
	if s.sessions == nil {
		s.sessions = st
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Bootstrap warms dependent systems after startup. Errors are reported,
// not fatal; the API works without a warm search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.search != nil {
		s.search.ReindexAllFromPG(ctx)
	}
	return nil
}

// AuthPasswordService exposes the email/password flows to the HTTP layer.
func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

// SMTPConfigured reports whether outbound email can be sent.
func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

// MailVerification sends the email verification link. No-op when SMTP is
// not configured; callers fall back to dev tokens.
func (s *Service) MailVerification(to, userName, token string) error {
	if !s.SMTPConfigured() {
		return nil
	}
	return s.email.SendVerificationEmail(to, userName, s.cfg.AppBaseURL+"/verify-email?token="+token)
}

// MailPasswordReset sends the password reset link.
func (s *Service) MailPasswordReset(to, userName, token string) error {
	if !s.SMTPConfigured() {
		return nil
	}
	return s.email.SendPasswordResetEmail(to, userName, s.cfg.AppBaseURL+"/reset-password?token="+token)
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

// CreateSession issues access and refresh tokens for an authenticated user.
func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	// the redis session store only carries the user ID; load the full row
	if user.DisplayName == "" {
		if full, err := s.store.GetUserByID(ctx, user.ID); err == nil {
			user = full
		}
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		Role: user.Role,
		JTI:  jti,
		Iat:  now.Unix(),
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Role:      user.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]map[string]any, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(users))
	for _, user := range users {
		items = append(items, map[string]any{
			"id":          user.ID,
			"displayName": user.DisplayName,
			"email":       user.Email,
			"role":        user.Role,
		})
	}
	return items, nil
}

// TeamWorkload computes the current load score for every member of an
// active project.
func (s *Service) TeamWorkload(ctx context.Context) (map[string]any, error) {
	members, err := s.store.ActiveProjectMembers(ctx)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return map[string]any{"scores": []workload.Score{}}, nil
	}

	scope := workload.ParseFileScope(s.cfg.FileUploadScope)

	messageCounts, err := s.store.CountProjectMessagesByAuthor(ctx)
	if err != nil {
		return nil, err
	}
	fileCounts, err := s.store.CountFilesByUploader(ctx, scope == workload.FileScopeProject)
	if err != nil {
		return nil, err
	}
	todoCounts, err := s.store.CountTodosByAssignee(ctx)
	if err != nil {
		return nil, err
	}
	eventCounts, err := s.store.CountEventsByOwner(ctx)
	if err != nil {
		return nil, err
	}

	messagesBy := countsByUser(messageCounts)
	filesBy := countsByUser(fileCounts)
	todosBy := countsByUser(todoCounts)
	eventsBy := countsByUser(eventCounts)

	batch := make([]workload.Activity, 0, len(members))
	names := make(map[string]string, len(members))
	for _, member := range members {
		names[member.ID] = member.DisplayName
		batch = append(batch, workload.Activity{
			UserID:         member.ID,
			ChatMessages:   messagesBy[member.ID],
			FileUploads:    filesBy[member.ID],
			AssignedTodos:  todosBy[member.ID],
			CalendarEvents: eventsBy[member.ID],
		})
	}

	scores, err := workload.Calculate(batch, workload.DefaultWeights)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordWorkloadCalculation()
	}

	items := make([]map[string]any, 0, len(scores))
	for _, score := range scores {
		items = append(items, map[string]any{
			"userId":      score.UserID,
			"displayName": names[score.UserID],
			"loadScore":   score.Load,
		})
	}
	return map[string]any{"scores": items, "fileScope": string(scope)}, nil
}

// Constellation builds the relationship map around one user from their
// direct message history.
func (s *Service) Constellation(ctx context.Context, selfID string) (map[string]any, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ListDirectMessages(ctx)
	if err != nil {
		return nil, err
	}

	peers := make([]constellation.User, 0, len(users))
	for _, user := range users {
		peers = append(peers, constellation.User{ID: user.ID, Name: user.DisplayName})
	}
	history := make([]constellation.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, constellation.Message{
			AuthorID:  m.AuthorID,
			RoomType:  m.RoomType,
			RoomID:    m.RoomID,
			CreatedAt: m.CreatedAt,
		})
	}

	cfg := constellation.DefaultConfig()
	cfg.StrictPairing = true
	placements := constellation.Map(selfID, peers, history, s.now(), s.rnd, cfg)
	if s.metrics != nil {
		s.metrics.RecordConstellationBuild()
	}

	return map[string]any{"self": selfID, "placements": placements}, nil
}

func countsByUser(counts []store.ActivityCount) map[string]int {
	byUser := make(map[string]int, len(counts))
	for _, c := range counts {
		byUser[c.UserID] = c.Count
	}
	return byUser
}

// publish pushes a realtime event, dropping it silently when the broker is
// not configured.
func (s *Service) publish(ctx context.Context, ev realtime.Event) {
	if s.broker == nil {
		return
	}
	_ = s.broker.Publish(ctx, ev)
}

// Search proxies to the search facade.
func (s *Service) Search(ctx context.Context, q, filterType, projectID string, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q}, nil
	}
	return s.search.Search(search.Query{
		Text:            q,
		FilterType:      search.ResultType(filterType),
		FilterProjectID: projectID,
		Limit:           limit,
		Offset:          offset,
	}), nil
}

// Invoke dispatches a named assist function.
func (s *Service) Invoke(ctx context.Context, name string, args []byte) (any, error) {
	if s.assist == nil {
		return nil, domainError(503, "ASSIST_UNAVAILABLE", "Assist functions not configured", nil)
	}
	started := s.now()
	result, err := s.assist.Invoke(ctx, name, args)
	if s.metrics != nil && err == nil {
		s.metrics.RecordAssistInvocation(name, time.Since(started))
	}
	return result, err
}

// Broker exposes the realtime broker to the HTTP layer for SSE.
func (s *Service) Broker() *realtime.Broker {
	return s.broker
}

// Metrics exposes the metrics manager to the HTTP layer.
func (s *Service) Metrics() *metrics.Manager {
	return s.metrics
}

// access to export service for the payroll report endpoint
func (s *Service) ExportService() *export.Service {
	return s.export
}

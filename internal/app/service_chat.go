package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"huddle/api/internal/constellation"
	"huddle/api/internal/rbac"
	"huddle/api/internal/realtime"
	"huddle/api/internal/search"
	"huddle/api/internal/store"
	"huddle/api/internal/util"
)

const defaultMessagePage = 50

type MessageInput struct {
	Kind    string          `json:"kind"`
	Body    string          `json:"body"`
	Payload json.RawMessage `json:"payload"`
}

type locationPayload struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

type schedulePayload struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type pollPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func validateMessageInput(in MessageInput) error {
	switch in.Kind {
	case "", "text":
		if strings.TrimSpace(in.Body) == "" {
			return errValidation("Message body is required")
		}
	case "location":
		var p locationPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return errValidation("Location payload is invalid")
		}
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return errValidation("Location coordinates out of range")
		}
	case "schedule":
		var p schedulePayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return errValidation("Schedule payload is invalid")
		}
		if strings.TrimSpace(p.Title) == "" {
			return errValidation("Schedule title is required")
		}
		if !p.EndsAt.After(p.StartsAt) {
			return errValidation("Schedule must end after it starts")
		}
	case "poll":
		var p pollPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return errValidation("Poll payload is invalid")
		}
		if strings.TrimSpace(p.Question) == "" {
			return errValidation("Poll question is required")
		}
		if len(p.Options) < 2 {
			return errValidation("Poll needs at least two options")
		}
		for _, opt := range p.Options {
			if strings.TrimSpace(opt) == "" {
				return errValidation("Poll options must not be empty")
			}
		}
	default:
		return errValidation("Unknown message kind: " + in.Kind)
	}
	return nil
}

func (s *Service) ListProjectMessages(ctx context.Context, session Session, projectID string, limit int) ([]store.Message, error) {
	ok, err := s.isProjectMember(ctx, session, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errForbidden("Not a member of this project")
	}
	if limit <= 0 || limit > 200 {
		limit = defaultMessagePage
	}
	return s.store.ListRoomMessages(ctx, projectID, limit)
}

func (s *Service) PostProjectMessage(ctx context.Context, session Session, projectID string, in MessageInput) (store.Message, error) {
	ok, err := s.isProjectMember(ctx, session, projectID)
	if err != nil {
		return store.Message{}, err
	}
	if !ok {
		return store.Message{}, errForbidden("Not a member of this project")
	}
	return s.postMessage(ctx, session, projectID, "project", in)
}

// ListDMThread returns messages in the pairwise room between the caller
// and another user.
func (s *Service) ListDMThread(ctx context.Context, session Session, peerID string, limit int) ([]store.Message, error) {
	if _, err := s.store.GetUserByID(ctx, peerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound("User not found")
		}
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultMessagePage
	}
	roomID := constellation.PairRoomID(session.UserID, peerID)
	return s.store.ListRoomMessages(ctx, roomID, limit)
}

func (s *Service) PostDM(ctx context.Context, session Session, peerID string, in MessageInput) (store.Message, error) {
	if peerID == session.UserID {
		return store.Message{}, errValidation("Cannot message yourself")
	}
	if _, err := s.store.GetUserByID(ctx, peerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Message{}, errNotFound("User not found")
		}
		return store.Message{}, err
	}
	roomID := constellation.PairRoomID(session.UserID, peerID)
	return s.postMessage(ctx, session, roomID, "dm", in)
}

func (s *Service) postMessage(ctx context.Context, session Session, roomID, roomType string, in MessageInput) (store.Message, error) {
	if err := validateMessageInput(in); err != nil {
		return store.Message{}, err
	}
	kind := in.Kind
	if kind == "" {
		kind = "text"
	}
	var payload json.RawMessage
	if kind != "text" {
		payload = in.Payload
	}

	msg := store.Message{
		ID:       util.NewID("msg"),
		RoomID:   roomID,
		RoomType: roomType,
		AuthorID: session.UserID,
		Kind:     kind,
		Body:     in.Body,
		Payload:  payload,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return store.Message{}, err
	}
	saved, err := s.store.GetMessage(ctx, msg.ID)
	if err != nil {
		return store.Message{}, err
	}

	// direct messages stay private: only project chatter is searchable
	if s.search != nil && roomType == "project" {
		s.search.IndexMessage(search.MessageRecord{
			ID: saved.ID, Body: saved.Body, ProjectID: roomID, AuthorID: session.UserID,
		})
	}
	s.publish(ctx, realtime.Event{
		Topic: "chat", Action: "created", RoomID: roomID, ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"messageId": saved.ID, "kind": kind}),
	})
	return saved, nil
}

// VotePoll records the caller's vote on a poll message. Re-voting replaces
// the previous choice.
func (s *Service) VotePoll(ctx context.Context, session Session, messageID string, optionIndex int) ([]store.PollVote, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Message not found")
	}
	if err != nil {
		return nil, err
	}
	if msg.Kind != "poll" {
		return nil, errValidation("Message is not a poll")
	}
	var p pollPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode poll payload: %w", err)
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return nil, errValidation("Option index out of range")
	}
	if err := s.store.CastPollVote(ctx, messageID, session.UserID, optionIndex); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "chat", Action: "updated", RoomID: msg.RoomID, ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"messageId": messageID, "kind": "poll"}),
	})
	return s.store.ListPollVotes(ctx, messageID)
}

func (s *Service) ListPollVotes(ctx context.Context, messageID string) ([]store.PollVote, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Message not found")
	}
	if err != nil {
		return nil, err
	}
	if msg.Kind != "poll" {
		return nil, errValidation("Message is not a poll")
	}
	return s.store.ListPollVotes(ctx, messageID)
}

func (s *Service) ListProjectFiles(ctx context.Context, session Session, projectID string) ([]store.File, error) {
	ok, err := s.isProjectMember(ctx, session, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errForbidden("Not a member of this project")
	}
	return s.store.ListProjectFiles(ctx, projectID)
}

func (s *Service) UploadFile(ctx context.Context, session Session, projectID, name, contentType string, size int64, r io.Reader) (store.File, error) {
	if s.files == nil {
		return store.File{}, domainError(503, "STORAGE_UNAVAILABLE", "File storage is not configured", nil)
	}
	ok, err := s.isProjectMember(ctx, session, projectID)
	if err != nil {
		return store.File{}, err
	}
	if !ok {
		return store.File{}, errForbidden("Not a member of this project")
	}
	if strings.TrimSpace(name) == "" {
		return store.File{}, errValidation("File name is required")
	}
	if size <= 0 {
		return store.File{}, errValidation("File is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := util.NewID("f")
	key := projectID + "/" + id + "/" + name
	if err := s.files.Put(ctx, key, r, size, contentType); err != nil {
		return store.File{}, fmt.Errorf("store object: %w", err)
	}
	file := store.File{
		ID:          id,
		ProjectID:   &projectID,
		UploaderID:  session.UserID,
		Name:        name,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.store.InsertFile(ctx, file); err != nil {
		_ = s.files.Remove(ctx, key)
		return store.File{}, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "file", Action: "created", RoomID: projectID, ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"fileId": id, "name": name}),
	})
	return s.store.GetFile(ctx, id)
}

// FileDownloadURL returns a short-lived presigned URL for the stored object.
func (s *Service) FileDownloadURL(ctx context.Context, session Session, fileID string) (string, error) {
	if s.files == nil {
		return "", domainError(503, "STORAGE_UNAVAILABLE", "File storage is not configured", nil)
	}
	file, err := s.store.GetFile(ctx, fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNotFound("File not found")
	}
	if err != nil {
		return "", err
	}
	if file.ProjectID != nil {
		ok, err := s.isProjectMember(ctx, session, *file.ProjectID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errForbidden("Not a member of this project")
		}
	}
	return s.files.PresignedURL(ctx, file.ObjectKey, file.Name, 15*time.Minute)
}

func (s *Service) DeleteFile(ctx context.Context, session Session, fileID string) error {
	file, err := s.store.GetFile(ctx, fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("File not found")
	}
	if err != nil {
		return err
	}
	if file.UploaderID != session.UserID && !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only the uploader or a manager can delete a file")
	}
	if err := s.store.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	if s.files != nil {
		_ = s.files.Remove(ctx, file.ObjectKey)
	}
	return nil
}

type TodoInput struct {
	ProjectID  *string    `json:"projectId"`
	AssigneeID string     `json:"assigneeId"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Done       bool       `json:"done"`
	DueAt      *time.Time `json:"dueAt"`
}

func (s *Service) ListTodos(ctx context.Context, session Session) ([]store.Todo, error) {
	return s.store.ListTodosByAssignee(ctx, session.UserID)
}

func (s *Service) CreateTodo(ctx context.Context, session Session, in TodoInput) (store.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return store.Todo{}, errValidation("Todo title is required")
	}
	assignee := in.AssigneeID
	if assignee == "" {
		assignee = session.UserID
	}
	todo := store.Todo{
		ID:         util.NewID("td"),
		ProjectID:  in.ProjectID,
		AssigneeID: assignee,
		Title:      strings.TrimSpace(in.Title),
		Notes:      in.Notes,
		DueAt:      in.DueAt,
	}
	if err := s.store.InsertTodo(ctx, todo); err != nil {
		return store.Todo{}, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "todo", Action: "created", ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"todoId": todo.ID}),
	})
	return s.store.GetTodo(ctx, todo.ID)
}

func (s *Service) UpdateTodo(ctx context.Context, session Session, id string, in TodoInput) (store.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Todo{}, errNotFound("Todo not found")
	}
	if err != nil {
		return store.Todo{}, err
	}
	if todo.AssigneeID != session.UserID && !s.Can(session.Role, rbac.ActionManage) {
		return store.Todo{}, errForbidden("Only the assignee or a manager can update a todo")
	}
	if strings.TrimSpace(in.Title) == "" {
		return store.Todo{}, errValidation("Todo title is required")
	}

	todo.Title = strings.TrimSpace(in.Title)
	todo.Notes = in.Notes
	todo.Done = in.Done
	todo.DueAt = in.DueAt
	if in.AssigneeID != "" {
		todo.AssigneeID = in.AssigneeID
	}
	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		return store.Todo{}, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "todo", Action: "updated", ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"todoId": id}),
	})
	return s.store.GetTodo(ctx, id)
}

func (s *Service) DeleteTodo(ctx context.Context, session Session, id string) error {
	todo, err := s.store.GetTodo(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Todo not found")
	}
	if err != nil {
		return err
	}
	if todo.AssigneeID != session.UserID && !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only the assignee or a manager can delete a todo")
	}
	return s.store.DeleteTodo(ctx, id)
}

type EventInput struct {
	ProjectID *string   `json:"projectId"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
}

func (s *Service) ListEvents(ctx context.Context, session Session) ([]store.Event, error) {
	return s.store.ListEventsForUser(ctx, session.UserID)
}

func (s *Service) CreateEvent(ctx context.Context, session Session, in EventInput) (store.Event, error) {
	if err := validateEventInput(in); err != nil {
		return store.Event{}, err
	}
	event := store.Event{
		ID:        util.NewID("ev"),
		ProjectID: in.ProjectID,
		OwnerID:   session.UserID,
		Title:     strings.TrimSpace(in.Title),
		Location:  in.Location,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		return store.Event{}, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "calendar", Action: "created", ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"eventId": event.ID}),
	})
	return s.store.GetEvent(ctx, event.ID)
}

func (s *Service) UpdateEvent(ctx context.Context, session Session, id string, in EventInput) (store.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Event{}, errNotFound("Event not found")
	}
	if err != nil {
		return store.Event{}, err
	}
	if event.OwnerID != session.UserID && !s.Can(session.Role, rbac.ActionManage) {
		return store.Event{}, errForbidden("Only the owner or a manager can update an event")
	}
	if err := validateEventInput(in); err != nil {
		return store.Event{}, err
	}

	event.Title = strings.TrimSpace(in.Title)
	event.Location = in.Location
	event.ProjectID = in.ProjectID
	event.StartsAt = in.StartsAt
	event.EndsAt = in.EndsAt
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return store.Event{}, err
	}
	s.publish(ctx, realtime.Event{
		Topic: "calendar", Action: "updated", ActorID: session.UserID,
		Payload: mustJSON(map[string]string{"eventId": id}),
	})
	return s.store.GetEvent(ctx, id)
}

func (s *Service) DeleteEvent(ctx context.Context, session Session, id string) error {
	event, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Event not found")
	}
	if err != nil {
		return err
	}
	if event.OwnerID != session.UserID && !s.Can(session.Role, rbac.ActionManage) {
		return errForbidden("Only the owner or a manager can delete an event")
	}
	return s.store.DeleteEvent(ctx, id)
}

func validateEventInput(in EventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return errValidation("Event title is required")
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return errValidation("Event start and end are required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return errValidation("Event must end after it starts")
	}
	return nil
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

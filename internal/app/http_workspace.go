package app

import (
	"net/http"
	"strconv"
	"strings"
)

const maxUploadBytes = 50 << 20

// handleWorkspace routes clients, projects, chat, files, todos and events.
// Returns false when the path is not one of its routes.
func (s *HTTPServer) handleWorkspace(w http.ResponseWriter, r *http.Request, session Session) bool {
	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		return false
	}

	switch parts[1] {
	case "clients":
		return s.handleClients(w, r, session, parts)
	case "projects":
		return s.handleProjects(w, r, session, parts)
	case "dms":
		return s.handleDMs(w, r, session, parts)
	case "messages":
		return s.handleMessages(w, r, session, parts)
	case "files":
		return s.handleFiles(w, r, session, parts)
	case "todos":
		return s.handleTodos(w, r, session, parts)
	case "events":
		return s.handleEvents(w, r, session, parts)
	}
	return false
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListClients(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list clients", nil)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"clients": clientViews(items)})
			return true
		case http.MethodPost:
			var body ClientInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			client, err := s.service.CreateClient(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, clientView(client))
			return true
		}
		return false
	}

	if len(parts) == 3 {
		id := parts[2]
		switch r.Method {
		case http.MethodGet:
			client, err := s.service.GetClient(r.Context(), id)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, clientView(client))
			return true
		case http.MethodPut:
			var body ClientInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			client, err := s.service.UpdateClient(r.Context(), session, id, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, clientView(client))
			return true
		case http.MethodDelete:
			if err := s.service.DeleteClient(r.Context(), session, id); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			status := strings.TrimSpace(r.URL.Query().Get("status"))
			items, err := s.service.ListProjects(r.Context(), status)
			if err != nil {
				st, code, message, details := mapError(err)
				writeError(w, st, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"projects": projectViews(items)})
			return true
		case http.MethodPost:
			var body ProjectInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			project, err := s.service.CreateProject(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, projectView(project))
			return true
		}
		return false
	}

	if len(parts) == 3 {
		id := parts[2]
		switch r.Method {
		case http.MethodGet:
			project, err := s.service.GetProject(r.Context(), id)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, projectView(project))
			return true
		case http.MethodPut:
			var body ProjectInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			project, err := s.service.UpdateProject(r.Context(), session, id, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, projectView(project))
			return true
		}
		return false
	}

	if len(parts) == 4 && parts[3] == "members" {
		projectID := parts[2]
		switch r.Method {
		case http.MethodGet:
			members, err := s.service.ListProjectMembers(r.Context(), projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			views := make([]map[string]any, 0, len(members))
			for _, m := range members {
				views = append(views, memberView(m))
			}
			writeJSON(w, http.StatusOK, map[string]any{"members": views})
			return true
		case http.MethodPost:
			var body struct {
				UserID string `json:"userId"`
				Role   string `json:"role"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			if err := s.service.AddProjectMember(r.Context(), session, projectID, body.UserID, body.Role); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
			return true
		}
		return false
	}

	if len(parts) == 5 && parts[3] == "members" && r.Method == http.MethodDelete {
		if err := s.service.RemoveProjectMember(r.Context(), session, parts[2], parts[4]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return true
	}

	if len(parts) == 4 && parts[3] == "messages" {
		projectID := parts[2]
		switch r.Method {
		case http.MethodGet:
			limit := queryInt(r, "limit", 0)
			items, err := s.service.ListProjectMessages(r.Context(), session, projectID, limit)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"messages": messageViews(items)})
			return true
		case http.MethodPost:
			var body MessageInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			msg, err := s.service.PostProjectMessage(r.Context(), session, projectID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, messageView(msg))
			return true
		}
		return false
	}

	if len(parts) == 4 && parts[3] == "files" {
		projectID := parts[2]
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListProjectFiles(r.Context(), session, projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, f := range items {
				views = append(views, fileView(f))
			}
			writeJSON(w, http.StatusOK, map[string]any{"files": views})
			return true
		case http.MethodPost:
			s.handleFileUpload(w, r, session, projectID)
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleFileUpload(w http.ResponseWriter, r *http.Request, session Session, projectID string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Expected multipart form upload", nil)
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Missing file field", nil)
		return
	}
	defer part.Close()

	file, err := s.service.UploadFile(r.Context(), session, projectID,
		header.Filename, header.Header.Get("Content-Type"), header.Size, part)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, fileView(file))
}

func (s *HTTPServer) handleFiles(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 4 && parts[3] == "download" && r.Method == http.MethodGet {
		url, err := s.service.FileDownloadURL(r.Context(), session, parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": url})
		return true
	}
	if len(parts) == 3 && r.Method == http.MethodDelete {
		if err := s.service.DeleteFile(r.Context(), session, parts[2]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return true
	}
	return false
}

func (s *HTTPServer) handleDMs(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) != 4 || parts[3] != "messages" {
		return false
	}
	peerID := parts[2]
	switch r.Method {
	case http.MethodGet:
		limit := queryInt(r, "limit", 0)
		items, err := s.service.ListDMThread(r.Context(), session, peerID, limit)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messageViews(items)})
		return true
	case http.MethodPost:
		var body MessageInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		msg, err := s.service.PostDM(r.Context(), session, peerID, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusCreated, messageView(msg))
		return true
	}
	return false
}

func (s *HTTPServer) handleMessages(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) != 4 || parts[3] != "votes" {
		return false
	}
	messageID := parts[2]
	switch r.Method {
	case http.MethodGet:
		votes, err := s.service.ListPollVotes(r.Context(), messageID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		views := make([]map[string]any, 0, len(votes))
		for _, v := range votes {
			views = append(views, voteView(v))
		}
		writeJSON(w, http.StatusOK, map[string]any{"votes": views})
		return true
	case http.MethodPost:
		var body struct {
			OptionIndex int `json:"optionIndex"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		votes, err := s.service.VotePoll(r.Context(), session, messageID, body.OptionIndex)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		views := make([]map[string]any, 0, len(votes))
		for _, v := range votes {
			views = append(views, voteView(v))
		}
		writeJSON(w, http.StatusOK, map[string]any{"votes": views})
		return true
	}
	return false
}

func (s *HTTPServer) handleTodos(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListTodos(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list todos", nil)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, t := range items {
				views = append(views, todoView(t))
			}
			writeJSON(w, http.StatusOK, map[string]any{"todos": views})
			return true
		case http.MethodPost:
			var body TodoInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			todo, err := s.service.CreateTodo(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, todoView(todo))
			return true
		}
		return false
	}

	if len(parts) == 3 {
		id := parts[2]
		switch r.Method {
		case http.MethodPut:
			var body TodoInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			todo, err := s.service.UpdateTodo(r.Context(), session, id, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, todoView(todo))
			return true
		case http.MethodDelete:
			if err := s.service.DeleteTodo(r.Context(), session, id); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleEvents(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListEvents(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list events", nil)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, e := range items {
				views = append(views, eventView(e))
			}
			writeJSON(w, http.StatusOK, map[string]any{"events": views})
			return true
		case http.MethodPost:
			var body EventInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			event, err := s.service.CreateEvent(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, eventView(event))
			return true
		}
		return false
	}

	if len(parts) == 3 {
		id := parts[2]
		switch r.Method {
		case http.MethodPut:
			var body EventInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			event, err := s.service.UpdateEvent(r.Context(), session, id, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, eventView(event))
			return true
		case http.MethodDelete:
			if err := s.service.DeleteEvent(r.Context(), session, id); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return true
		}
	}
	return false
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

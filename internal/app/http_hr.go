package app

import (
	"net/http"
	"strings"

	"huddle/api/internal/export"
)

// handleHR routes employees, payroll, call capture, email triage and the
// daily digest. Returns false when the path is not one of its routes.
func (s *HTTPServer) handleHR(w http.ResponseWriter, r *http.Request, session Session) bool {
	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		return false
	}

	switch parts[1] {
	case "hr":
		return s.handleHRRecords(w, r, session, parts)
	case "calls":
		return s.handleCalls(w, r, session, parts)
	case "triage":
		return s.handleTriage(w, r, session, parts)
	case "digest":
		if len(parts) == 2 && r.Method == http.MethodGet {
			payload, err := s.service.DailyDigest(r.Context(), session)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, payload)
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleHRRecords(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 3 && parts[2] == "employees" {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListEmployees(r.Context(), session)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, e := range items {
				views = append(views, employeeView(e))
			}
			writeJSON(w, http.StatusOK, map[string]any{"employees": views})
			return true
		case http.MethodPut:
			var body EmployeeInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			employee, err := s.service.UpsertEmployee(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusOK, employeeView(employee))
			return true
		}
		return false
	}

	if len(parts) == 3 && parts[2] == "payroll" {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListPayrollRuns(r.Context(), session)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, run := range items {
				views = append(views, payrollRunView(run))
			}
			writeJSON(w, http.StatusOK, map[string]any{"runs": views})
			return true
		case http.MethodPost:
			var body PayrollRunInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			detail, err := s.service.CreatePayrollRun(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, payrollDetailView(detail))
			return true
		}
		return false
	}

	if len(parts) == 4 && parts[2] == "payroll" && r.Method == http.MethodGet {
		detail, err := s.service.GetPayrollRun(r.Context(), session, parts[3])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payrollDetailView(detail))
		return true
	}

	if len(parts) == 5 && parts[2] == "payroll" && parts[4] == "export" && r.Method == http.MethodGet {
		format := export.FormatPDF
		if raw := strings.TrimSpace(r.URL.Query().Get("format")); raw != "" {
			switch raw {
			case "pdf":
				format = export.FormatPDF
			case "csv":
				format = export.FormatCSV
			default:
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be pdf or csv", nil)
				return true
			}
		}
		result, err := s.service.ExportPayrollRun(r.Context(), session, parts[3], format)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		w.Header().Set("Content-Type", result.MimeType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Data)
		return true
	}
	return false
}

func (s *HTTPServer) handleCalls(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListCalls(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list calls", nil)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, call := range items {
				views = append(views, callView(call))
			}
			writeJSON(w, http.StatusOK, map[string]any{"calls": views})
			return true
		case http.MethodPost:
			var body CallInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			detail, err := s.service.CreateCall(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, callDetailView(detail))
			return true
		}
		return false
	}

	if len(parts) == 3 && r.Method == http.MethodGet {
		detail, err := s.service.GetCall(r.Context(), session, parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, callDetailView(detail))
		return true
	}

	if len(parts) == 4 && parts[3] == "summarize" && r.Method == http.MethodPost {
		detail, err := s.service.SummarizeCall(r.Context(), session, parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, callDetailView(detail))
		return true
	}

	if len(parts) == 5 && parts[3] == "suggestions" && r.Method == http.MethodPost {
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		detail, err := s.service.ResolveCallSuggestion(r.Context(), session, parts[2], parts[4], body.Status)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, callDetailView(detail))
		return true
	}
	return false
}

func (s *HTTPServer) handleTriage(w http.ResponseWriter, r *http.Request, session Session, parts []string) bool {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			status := strings.TrimSpace(r.URL.Query().Get("status"))
			items, err := s.service.ListTriageItems(r.Context(), session, status)
			if err != nil {
				st, code, message, details := mapError(err)
				writeError(w, st, code, message, details)
				return true
			}
			views := make([]map[string]any, 0, len(items))
			for _, item := range items {
				views = append(views, triageView(item))
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": views})
			return true
		case http.MethodPost:
			var body TriageInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			item, err := s.service.CreateTriageItem(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return true
			}
			writeJSON(w, http.StatusCreated, triageView(item))
			return true
		}
		return false
	}

	if len(parts) == 4 && parts[3] == "status" && r.Method == http.MethodPost {
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		item, err := s.service.UpdateTriageStatus(r.Context(), session, parts[2], body.Status)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, triageView(item))
		return true
	}

	if len(parts) == 4 && parts[3] == "draft" && r.Method == http.MethodPost {
		item, err := s.service.DraftTriageReply(r.Context(), session, parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, triageView(item))
		return true
	}
	return false
}

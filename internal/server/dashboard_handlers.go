package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrintake/internal/application"
	"hrintake/internal/dashboard"
	"hrintake/internal/errors"
	"hrintake/internal/observability"
	"hrintake/internal/types"
)

// bulkEmailRequest selects applications by id and carries the shared message
type bulkEmailRequest struct {
	IDs     []string                `json:"ids"`
	Subject string                  `json:"subject"`
	Message string                  `json:"message"`
	Status  application.EmailStatus `json:"status"`
}

// FiltersFromQuery reads the server-side filters from query parameters
func FiltersFromQuery(q url.Values) dashboard.Filters {
	return dashboard.Filters{
		ApplyingFor:         q.Get("applyingFor"),
		Gender:              q.Get("gender"),
		MaritalStatus:       q.Get("maritalStatus"),
		AreaOfInterest:      q.Get("areaOfInterest"),
		MinExperience:       q.Get("minExperience"),
		MaxExperience:       q.Get("maxExperience"),
		ApplicationType:     q.Get("applicationType"),
		SubjectOrDepartment: q.Get("subjectOrDepartment"),
		Q:                   q.Get("q"),
	}
}

// LocalFiltersFromQuery reads the page-local filters from query parameters
func LocalFiltersFromQuery(q url.Values) dashboard.LocalFilters {
	return dashboard.LocalFilters{
		NameOrEmail: q.Get("nameOrEmail"),
		Subject:     q.Get("educationSubject"),
		ExamType:    application.ExamType(q.Get("educationExamType")),
		Medium:      application.Medium(q.Get("educationMedium")),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
	}
}

// boardFor builds a request-scoped board from the query string
func (s *Server) boardFor(r *http.Request) (*dashboard.Board, error) {
	q := r.URL.Query()
	board := dashboard.NewBoard(s.Backend, s.Dashboard, nil, s.Logger)
	board.SetFilters(FiltersFromQuery(q))
	board.SetLocalFilters(LocalFiltersFromQuery(q))

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFieldValue, "limit must be a number", err).
				WithContext(errors.ContextField, "limit")
		}
		if err := board.SetLimit(limit); err != nil {
			return nil, err
		}
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFieldValue, "page must be a number", err).
				WithContext(errors.ContextField, "page")
		}
		board.SetPage(page)
	}
	return board, nil
}

func (s *Server) countsHandler(w http.ResponseWriter, r *http.Request) {
	board := dashboard.NewBoard(s.Backend, s.Dashboard, nil, s.Logger)
	counts, err := board.LoadCounts(r.Context())
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) listApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	board, err := s.boardFor(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	page, err := board.Refresh(r.Context())
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	board, err := s.boardFor(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	app, err := board.Locate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

// pdfHandler streams the generated PDF of one application
func (s *Server) pdfHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.Backend.DownloadPDF(r.Context(), id)
	s.metrics.RecordBusinessMetric(r.Context(), observability.MetricPDFDownloaded, err == nil)
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+dashboard.PDFFileName(id)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.LogError(err, "Failed to write PDF response", "application_id", id)
	}
}

// emailHandler sends one status email. Fields left empty in the body are
// prefilled from the application.
func (s *Server) emailHandler(w http.ResponseWriter, r *http.Request) {
	var req types.EmailRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	board, err := s.boardFor(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	app, err := board.Locate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	email := mergeEmail(board.DraftEmail(app), req)
	resp, err := board.SendEmail(r.Context(), email)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func mergeEmail(draft, req types.EmailRequest) types.EmailRequest {
	if req.To != "" {
		draft.To = req.To
	}
	if req.Subject != "" {
		draft.Subject = req.Subject
	}
	if req.Status != "" {
		draft.Status = req.Status
	}
	draft.Message = req.Message
	return draft
}

// bulkEmailHandler sends the same message to each selected application
func (s *Server) bulkEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkEmailRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	board, err := s.boardFor(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	missing, err := board.LocateAll(r.Context(), req.IDs)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	if len(missing) > 0 {
		s.Logger.Debug("Bulk email selection has unknown applications", "ids", missing)
	}

	result, err := board.BulkEmail(r.Context(), req.IDs, types.EmailRequest{
		Subject: req.Subject,
		Message: req.Message,
		Status:  req.Status,
	})
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

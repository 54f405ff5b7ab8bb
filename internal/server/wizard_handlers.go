package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/observability"
	"hrintake/internal/types"
	"hrintake/internal/utils"
	"hrintake/internal/wizard"
)

type sessionContextKey struct{}

// multipartMemory is how much of an upload is buffered before spilling to disk
const multipartMemory = 8 << 20

// jumpRequest selects a step by index or, for edits from the review page, by key
type jumpRequest struct {
	Index *int           `json:"index,omitempty"`
	Step  wizard.StepKey `json:"step,omitempty"`
}

// sessionMiddleware resolves {sessionID} and stores the session on the context
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		sess, ok := s.Sessions.Get(id)
		if !ok {
			s.writeAppError(w, errors.NewValidationError(errors.ErrCodeNotFound,
				fmt.Sprintf("session %s not found or expired", id), nil))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *wizard.Session {
	return r.Context().Value(sessionContextKey{}).(*wizard.Session)
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Create()
	s.writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Delete(sessionFrom(r).ID())
	w.WriteHeader(http.StatusNoContent)
}

// actionsHandler applies one action or an ordered list of actions. Dispatching
// stops at the first failure; earlier actions stay applied.
func (s *Server) actionsHandler(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := parseJSONRequest(r, &raw); err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	actions, err := decodeActions(raw)
	if err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r)
	for i, action := range actions {
		if err := sess.Dispatch(action); err != nil {
			s.Logger.Debug("Action rejected", "session_id", sess.ID(), "index", i, "type", action.Type, "path", action.Path)
			s.writeAppError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func decodeActions(raw json.RawMessage) ([]wizard.Action, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var actions []wizard.Action
		if err := json.Unmarshal(raw, &actions); err != nil {
			return nil, fmt.Errorf("failed to parse actions: %w", err)
		}
		return actions, nil
	}

	var action wizard.Action
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, fmt.Errorf("failed to parse action: %w", err)
	}
	return []wizard.Action{action}, nil
}

func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*wizard.Session).Advance)
}

func (s *Server) retreatHandler(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*wizard.Session).Retreat)
}

func (s *Server) jumpHandler(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case req.Step != "":
		s.navigate(w, r, func(sess *wizard.Session) (int, error) { return sess.Edit(req.Step) })
	case req.Index != nil:
		s.navigate(w, r, func(sess *wizard.Session) (int, error) { return sess.JumpTo(*req.Index) })
	default:
		writeErrorResponse(w, "Invalid request", "index or step is required", http.StatusBadRequest)
	}
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, move func(*wizard.Session) (int, error)) {
	sess := sessionFrom(r)
	if _, err := move(sess); err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

// attachHandler stores the multipart "file" part as the photo or resume
func (s *Server) attachHandler(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeErrorResponse(w, "Invalid request", fmt.Sprintf("multipart form expected: %v", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, "Invalid request", "file part is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !utils.IsAllowedAttachment(field, header.Filename) {
		s.writeAppError(w, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("unsupported %s file %q", field, header.Filename), nil).
			WithContext(errors.ContextField, field))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeAppError(w, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read upload", err).
			WithContext(errors.ContextField, field))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = utils.ContentTypeFor(header.Filename, data)
	}

	sess := sessionFrom(r)
	if err := sess.Attach(field, application.NewAttachment(header.Filename, contentType, data)); err != nil {
		s.writeAppError(w, err)
		return
	}
	s.Logger.Debug("Attachment stored", "session_id", sess.ID(), "field", field, "size", utils.FormatFileSize(int64(len(data))))
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) detachHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Attach(chi.URLParam(r, "field"), nil); err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

// summaryHandler renders the review page and reports whether it would submit
func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	state := sessionFrom(r).Snapshot()
	segmented := slices.Contains(state.Steps, wizard.StepType)
	s.writeJSON(w, http.StatusOK, types.NewReviewResult(
		sessionFrom(r).Summary(),
		wizard.Validate(state.Record, segmented),
	))
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	// The applicant leaving must not abort a submission the API may already have accepted
	err := sess.Submit(context.WithoutCancel(r.Context()))

	if step, failed := wizard.FailedStep(err); failed {
		s.metrics.RecordBusinessMetric(r.Context(), observability.MetricValidationFailed, false,
			attribute.String("step", string(step)))
	} else if !errors.HasCode(err, errors.ErrCodeSubmissionInProgress) {
		s.metrics.RecordBusinessMetric(r.Context(), observability.MetricApplicationSubmitted, err == nil)
	}

	if err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, types.SubmitResult{Submitted: true, Message: wizard.SubmittedMessage})
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.StartOver(); err != nil {
		s.writeAppError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionFrom(r).Notifications().List())
}

func (s *Server) dismissHandler(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r).Notifications().Dismiss(chi.URLParam(r, "entryID")) {
		writeErrorResponse(w, "NOT_FOUND", "notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

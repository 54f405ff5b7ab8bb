package wizard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/notify"
)

const (
	SubmittedMessage     = "Submitted Successfully"
	SubmitFailedFallback = "Submission failed. See console for details."
)

// Submitter posts an encoded application.
type Submitter interface {
	SubmitApplication(ctx context.Context, body io.Reader, contentType string) error
}

type SessionConfig struct {
	Steps             []StepKey
	Options           Options
	NotificationTTL   time.Duration
	MaxAttachmentSize int64
	Sink              notify.Sink
}

// Session is one applicant working through the wizard. All methods are safe
// for concurrent use.
type Session struct {
	mu sync.Mutex

	id            string
	reducer       *Reducer
	controller    *Controller
	record        application.Record
	notifications *notify.Queue
	submitter     Submitter
	logger        *errors.Logger
	maxAttachment int64

	loading   bool
	submitted bool
	touchedAt time.Time
}

// State is a point-in-time copy of a session.
type State struct {
	ID            string             `json:"id"`
	Step          StepKey            `json:"step"`
	StepIndex     int                `json:"stepIndex"`
	Steps         []StepKey          `json:"steps"`
	Record        application.Record `json:"record"`
	Photo         string             `json:"photo,omitempty"`
	Resume        string             `json:"resume,omitempty"`
	Loading       bool               `json:"loading"`
	Submitted     bool               `json:"submitted"`
	Notifications []notify.Entry     `json:"notifications"`
}

func NewSession(cfg SessionConfig, submitter Submitter, logger *errors.Logger) *Session {
	return &Session{
		id:            uuid.NewString(),
		reducer:       NewReducer(cfg.Options),
		controller:    NewController(cfg.Steps),
		record:        application.NewRecord(),
		notifications: notify.NewQueue(cfg.NotificationTTL, cfg.Sink),
		submitter:     submitter,
		logger:        logger,
		maxAttachment: cfg.MaxAttachmentSize,
		touchedAt:     time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// Notifications exposes the session's toast queue.
func (s *Session) Notifications() *notify.Queue { return s.notifications }

// TouchedAt reports the last time the session was used.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// Close releases the notification timers.
func (s *Session) Close() { s.notifications.Close() }

// lockIdle takes the lock and fails while a submission is in flight.
func (s *Session) lockIdle() error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return errors.NewValidationError(errors.ErrCodeSubmissionInProgress, "a submission is already in progress", nil)
	}
	s.touchedAt = time.Now()
	return nil
}

// Dispatch applies one action to the record.
func (s *Session) Dispatch(a Action) error {
	if err := s.lockIdle(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	next, err := s.reducer.Reduce(s.record, a)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDuplicatePhone) {
			s.notifications.Error(DuplicatePhoneMessage)
		}
		return err
	}
	s.record = next
	return nil
}

func (s *Session) Advance() (int, error) {
	if err := s.lockIdle(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return s.controller.Advance(), nil
}

func (s *Session) Retreat() (int, error) {
	if err := s.lockIdle(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return s.controller.Retreat(), nil
}

func (s *Session) JumpTo(index int) (int, error) {
	if err := s.lockIdle(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return s.controller.JumpTo(index), nil
}

// Edit jumps to the step owning a summary section.
func (s *Session) Edit(section StepKey) (int, error) {
	if err := s.lockIdle(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	index, ok := s.controller.JumpToKey(section)
	if !ok {
		return index, errors.NewValidationError(errors.ErrCodeInvalidField,
			fmt.Sprintf("step %q is not part of this form", section), nil).
			WithContext(errors.ContextStep, section)
	}
	return index, nil
}

// Attach sets or, with a nil attachment, clears the photo or resume.
func (s *Session) Attach(field string, a *application.Attachment) error {
	if err := s.lockIdle(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.maxAttachment > 0 && int64(a.Size()) > s.maxAttachment {
		return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("%s exceeds the maximum size of %d bytes", field, s.maxAttachment), nil).
			WithContext(errors.ContextField, field)
	}

	switch field {
	case "photo":
		s.record.Photo = a
	case "resume":
		s.record.Resume = a
	default:
		return invalidField(field, "not an attachment field")
	}
	return nil
}

// Summary renders the review page.
func (s *Session) Summary() []SummarySection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary(s.record, s.controller)
}

// Submit validates, encodes and posts the record. Validation failures move the
// wizard to the owning step and send nothing. On success the record and step
// are reset; on failure both are left as they were.
func (s *Session) Submit(ctx context.Context) error {
	if err := s.lockIdle(); err != nil {
		return err
	}
	s.loading = true
	rec := s.record
	_, segmented := s.controller.IndexOf(StepType)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if err := Validate(rec, segmented); err != nil {
		step, _ := FailedStep(err)
		s.mu.Lock()
		if _, ok := s.controller.JumpToKey(step); !ok {
			s.controller.Reset()
		}
		s.mu.Unlock()
		if appErr, ok := errors.As(err); ok {
			s.notifications.Error(appErr.Message)
		}
		return err
	}

	payload, err := Encode(rec)
	if err != nil {
		s.notifications.Error(SubmitFailedFallback)
		appErr := errors.NewInternalError(errors.ErrCodeSubmissionFailed, "failed to encode application", err)
		s.logger.LogError(appErr, "Submission encoding failed", "session_id", s.id)
		return appErr
	}

	if err := s.submitter.SubmitApplication(ctx, bytes.NewReader(payload.Body), payload.ContentType); err != nil {
		message := SubmitFailedFallback
		if serverMessage, ok := errors.ServerMessage(err); ok {
			message = serverMessage
		}
		s.notifications.Error(message)
		s.logger.LogError(err, "Submission failed", "session_id", s.id)
		return err
	}

	s.mu.Lock()
	s.record = application.NewRecord()
	s.controller.Reset()
	s.submitted = true
	s.mu.Unlock()

	s.notifications.Success(SubmittedMessage)
	s.logger.Info("Application submitted", "session_id", s.id, "payload_bytes", len(payload.Body))
	return nil
}

// StartOver discards the record and returns to the first step.
func (s *Session) StartOver() error {
	if err := s.lockIdle(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.record = application.NewRecord()
	s.controller.Reset()
	s.submitted = false
	return nil
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		ID:            s.id,
		Step:          s.controller.Current(),
		StepIndex:     s.controller.Index(),
		Steps:         s.controller.Steps(),
		Record:        s.record,
		Loading:       s.loading,
		Submitted:     s.submitted,
		Notifications: s.notifications.List(),
	}
	if s.record.Photo != nil {
		state.Photo = s.record.Photo.Filename
	}
	if s.record.Resume != nil {
		state.Resume = s.record.Resume.Filename
	}
	return state
}

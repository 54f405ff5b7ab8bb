package server

import (
	"context"
	"sync"
	"time"

	"hrintake/internal/config"
	"hrintake/internal/errors"
	"hrintake/internal/observability"
	"hrintake/internal/wizard"
)

// DefaultSessionTTL applies when no session TTL is configured
const DefaultSessionTTL = 2 * time.Hour

// SessionConfigFrom maps the wizard configuration section
func SessionConfigFrom(cfg config.WizardConfig) (wizard.SessionConfig, error) {
	steps, err := cfg.StepKeys()
	if err != nil {
		return wizard.SessionConfig{}, err
	}
	return wizard.SessionConfig{
		Steps:             steps,
		Options:           wizard.Options{UppercaseFullName: cfg.UppercaseFullName},
		NotificationTTL:   cfg.NotificationTTL,
		MaxAttachmentSize: cfg.MaxAttachmentSize,
	}, nil
}

// SessionStore keeps wizard sessions in memory and evicts idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*wizard.Session

	cfg       wizard.SessionConfig
	submitter wizard.Submitter
	ttl       time.Duration
	metrics   *observability.Metrics
	logger    *errors.Logger

	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionStore creates a store and starts its eviction routine
func NewSessionStore(cfg wizard.SessionConfig, submitter wizard.Submitter, ttl time.Duration,
	metrics *observability.Metrics, logger *errors.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	st := &SessionStore{
		sessions:  make(map[string]*wizard.Session),
		cfg:       cfg,
		submitter: submitter,
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	go st.cleanupRoutine(max(ttl/4, time.Second))
	return st
}

// Create opens a new session
func (st *SessionStore) Create() *wizard.Session {
	sess := wizard.NewSession(st.cfg, st.submitter, st.logger)

	st.mu.Lock()
	st.sessions[sess.ID()] = sess
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SessionOpened(context.Background())
	st.logger.Debug("Wizard session opened", "session_id", sess.ID(), "active_sessions", count)
	return sess
}

// Get returns a live session. Sessions idle for longer than the TTL are
// evicted on access.
func (st *SessionStore) Get(id string) (*wizard.Session, bool) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	if st.expired(sess) {
		st.Delete(id)
		return nil, false
	}
	return sess, true
}

// Delete closes and removes a session
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return false
	}
	sess.Close()
	st.metrics.SessionClosed(context.Background())
	return true
}

// Count reports the number of open sessions
func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(sess *wizard.Session) bool {
	return st.now().Sub(sess.TouchedAt()) > st.ttl
}

func (st *SessionStore) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.cleanup()
		case <-st.done:
			return
		}
	}
}

// cleanup evicts every idle session
func (st *SessionStore) cleanup() int {
	st.mu.Lock()
	var idle []string
	for id, sess := range st.sessions {
		if st.expired(sess) {
			idle = append(idle, id)
		}
	}
	st.mu.Unlock()

	evicted := 0
	for _, id := range idle {
		if st.Delete(id) {
			evicted++
		}
	}
	if evicted > 0 {
		st.logger.Debug("Evicted idle wizard sessions", "evicted", evicted, "remaining", st.Count())
	}
	return evicted
}

// Close stops the eviction routine and closes every session
func (st *SessionStore) Close() {
	st.closeOnce.Do(func() {
		close(st.done)

		st.mu.Lock()
		ids := make([]string, 0, len(st.sessions))
		for id := range st.sessions {
			ids = append(ids, id)
		}
		st.mu.Unlock()

		for _, id := range ids {
			st.Delete(id)
		}
	})
}

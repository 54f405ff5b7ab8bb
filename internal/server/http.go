package server

import (
	"fmt"
	"net/http"
	"time"

	"hrintake/internal/auth"
	"hrintake/internal/config"
	"hrintake/internal/dashboard"
	"hrintake/internal/errors"
	"hrintake/internal/observability"
	"hrintake/internal/wizard"
)

// Backend is the intake API as seen by the façade
type Backend interface {
	dashboard.API
	wizard.Submitter
}

// healthChecker is implemented by backends that sit behind a circuit breaker
type healthChecker interface {
	Healthy() bool
	BreakerStats() map[string]any
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Step    string `json:"step,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication for the wizard routes
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	Sessions  *SessionStore
	Gate      *auth.Gate
	Backend   Backend
	Dashboard dashboard.Options

	om      *observability.ObservabilityManager
	metrics *observability.Metrics
	handler http.Handler

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	SessionTTL     time.Duration
}

// ServerConfigFrom maps the server configuration section
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	rateLimit := cfg.Server.RateLimit
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &rateLimit,
		SessionTTL:     cfg.Server.SessionTTL,
	}
}

// Dependencies are the collaborators a Server is built from. Gate and
// Observability may be nil.
type Dependencies struct {
	Backend       Backend
	Gate          *auth.Gate
	Observability *observability.ObservabilityManager
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *errors.Logger) (*Server, error) {
	if deps.Backend == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "server requires an intake API backend", nil)
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	gate := deps.Gate
	if gate == nil {
		var err error
		if gate, err = auth.NewGate(appCfg.Admin, logger); err != nil {
			return nil, fmt.Errorf("failed to create admin gate: %w", err)
		}
	}

	sessionCfg, err := SessionConfigFrom(appCfg.Wizard)
	if err != nil {
		return nil, err
	}

	metrics := deps.Observability.GetMetrics()

	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Sessions:       NewSessionStore(sessionCfg, deps.Backend, cfg.SessionTTL, metrics, logger),
		Gate:           gate,
		Backend:        deps.Backend,
		Dashboard:      dashboard.OptionsFromConfig(appCfg.Dashboard, metrics),
		om:             deps.Observability,
		metrics:        metrics,
		Logger:         logger,
	}
	s.handler = s.om.HTTPMiddleware()(s.setupRoutes())
	return s, nil
}

// Handler returns the instrumented router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases the session store and the rate limiter
func (s *Server) Close() {
	s.Sessions.Close()
	s.cleanupRateLimiter()
}

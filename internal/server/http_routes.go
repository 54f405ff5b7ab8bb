package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRoutes configures all HTTP routes and middleware. Every /api route
// runs rate limit, then authentication, then the request size limit.
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Get("/stats", s.statsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(s.requestSizeLimitMiddleware)
			r.Post("/admin/login", s.loginHandler)
			r.Get("/options/details", s.detailOptionsHandler)
			r.Get("/options/salary", s.salaryOptionsHandler)
			r.Get("/options/steps", s.stepsHandler)
		})

		r.Route("/wizard/sessions", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Use(s.requestSizeLimitMiddleware)

			r.Post("/", s.createSessionHandler)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(s.sessionMiddleware)
				r.Get("/", s.getSessionHandler)
				r.Delete("/", s.deleteSessionHandler)
				r.Post("/actions", s.actionsHandler)
				r.Post("/advance", s.advanceHandler)
				r.Post("/retreat", s.retreatHandler)
				r.Post("/jump", s.jumpHandler)
				r.Put("/files/{field}", s.attachHandler)
				r.Delete("/files/{field}", s.detachHandler)
				r.Get("/summary", s.summaryHandler)
				r.Post("/submit", s.submitHandler)
				r.Post("/reset", s.resetHandler)
				r.Get("/notifications", s.notificationsHandler)
				r.Delete("/notifications/{entryID}", s.dismissHandler)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(s.Gate.Require)
			r.Use(s.requestSizeLimitMiddleware)

			r.Get("/counts", s.countsHandler)
			r.Get("/applications", s.listApplicationsHandler)
			r.Get("/applications/{id}", s.getApplicationHandler)
			r.Get("/applications/{id}/pdf", s.pdfHandler)
			r.Post("/applications/{id}/email", s.emailHandler)
			r.Post("/email/bulk", s.bulkEmailHandler)
		})
	})

	return r
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// authMiddleware provides API key authentication. No configured keys means open access.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.validAPIKey(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) validAPIKey(candidate string) bool {
	for key := range s.APIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			return true
		}
	}
	return false
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	if s.MaxRequestSize <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// maskAPIKey shows only the first 8 characters of a key
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}

package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

// healthHandler reports liveness and the state of the intake API circuit breaker
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":          "healthy",
		"service":         "hrintake",
		"version":         s.Version,
		"active_sessions": s.Sessions.Count(),
	}

	status := http.StatusOK
	if hc, ok := s.Backend.(healthChecker); ok {
		response["circuit_breaker"] = hc.BreakerStats()
		if !hc.Healthy() {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "hrintake",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(s.APIKeys),
			"admin_configured":       s.Gate.Configured(),
		},
		"sessions": map[string]any{
			"active":      s.Sessions.Count(),
			"ttl_seconds": int(s.Sessions.ttl.Seconds()),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.Gate.Login(req.Username, req.Password)
	if err != nil {
		s.Logger.Info("Admin login rejected", "username", req.Username, "client_ip", getClientIP(r))
		s.writeAppError(w, err)
		return
	}
	s.Logger.Info("Admin logged in", "username", req.Username)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) detailOptionsHandler(w http.ResponseWriter, r *http.Request) {
	tier := application.Tier(r.URL.Query().Get("tier"))
	collegeType := application.CollegeType(r.URL.Query().Get("collegeType"))

	if !tier.Valid() {
		s.writeAppError(w, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("tier must be one of %v", application.Tiers()), nil).
			WithContext(errors.ContextField, "tier"))
		return
	}
	if !collegeType.Valid() {
		s.writeAppError(w, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("collegeType must be one of %v", application.CollegeTypes()), nil).
			WithContext(errors.ContextField, "collegeType"))
		return
	}

	s.writeJSON(w, http.StatusOK, types.DetailOptionsResult{
		Tier:        tier,
		CollegeType: collegeType,
		Options:     application.ResolveDetailOptions(tier, collegeType),
	})
}

func (s *Server) salaryOptionsHandler(w http.ResponseWriter, r *http.Request) {
	appType := application.ApplicationType(r.URL.Query().Get("applicationType"))
	s.writeJSON(w, http.StatusOK, types.SalaryOptionsResult{
		ApplicationType: appType,
		Brackets:        application.SalaryBrackets(appType),
	})
}

func (s *Server) stepsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StepsResult(s.Sessions.cfg.Steps))
}

// StepsResult describes the configured step order
func StepsResult(steps []wizard.StepKey) types.StepsResult {
	result := types.StepsResult{Steps: make([]types.StepInfo, 0, len(steps))}
	for i, key := range steps {
		result.Steps = append(result.Steps, types.StepInfo{Index: i, Key: string(key), Title: key.Label()})
	}
	return result
}

// parseJSONRequest decodes a JSON body into v
func parseJSONRequest(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.LogError(err, "Failed to encode response")
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeError(w, ErrorResponse{Error: error, Message: message}, statusCode)
}

func writeError(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeAppError maps err onto a status code and an ErrorResponse
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		s.Logger.LogError(err, "Unhandled request error")
		writeErrorResponse(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	resp := ErrorResponse{Error: appErr.Code, Message: appErr.Message}
	switch field := appErr.Context[errors.ContextField].(type) {
	case string:
		resp.Field = field
	case []string:
		resp.Field = strings.Join(field, ",")
	}
	if step, ok := wizard.FailedStep(err); ok {
		resp.Step = string(step)
	}
	if msg, ok := errors.ServerMessage(err); ok {
		resp.Message = msg
	}

	status := statusFor(appErr)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed")
	}
	writeError(w, resp, status)
}

func statusFor(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSubmissionInProgress:
		return http.StatusConflict
	case errors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeAuth:
		if appErr.Code == errors.ErrCodeInvalidConfig {
			return http.StatusServiceUnavailable
		}
		return http.StatusUnauthorized
	case errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case errors.ErrorTypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

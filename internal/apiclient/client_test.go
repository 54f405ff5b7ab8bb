package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/application"
	"hrintake/internal/config"
	"hrintake/internal/errors"
	"hrintake/internal/types"
)

func testConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:    baseURL,
		SubmitPath: "/api/addApplication",
		CountPath:  "/api/get/count",
		ListPath:   "/api/getApplications",
		PDFPath:    "/api/application",
		EmailPath:  "/api/sendemail",
		Timeout:    time.Second,
		UserAgent:  "hrintake-test",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.APIConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	for _, m := range mutate {
		m(&cfg)
	}
	logger := errors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))
	c, err := New(cfg, logger)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(testConfig("not a url"), nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestSubmitApplication(t *testing.T) {
	var gotType, gotBody, gotAgent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/addApplication", r.URL.Path)
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.UserAgent()
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
	})

	err := c.SubmitApplication(context.Background(), strings.NewReader("payload"), "multipart/form-data; boundary=x")
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data; boundary=x", gotType)
	assert.Equal(t, "payload", gotBody)
	assert.Equal(t, "hrintake-test", gotAgent)
}

func TestSubmitApplicationIgnoresReadTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(60 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, func(cfg *config.APIConfig) { cfg.Timeout = 10 * time.Millisecond })

	assert.NoError(t, c.SubmitApplication(context.Background(), strings.NewReader(""), "multipart/form-data"))
}

func TestErrorResponsesCarryServerMessage(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"Email already registered"}`, expected: "Email already registered"},
		{name: "error field", status: http.StatusInternalServerError, body: `{"error":"database down"}`, expected: "database down"},
		{name: "plain text", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "error object", status: http.StatusBadRequest, body: `{"error":{"code":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.SubmitApplication(context.Background(), strings.NewReader(""), "multipart/form-data")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
			assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteRequestFailed))

			appErr, _ := errors.As(err)
			assert.Equal(t, tt.status, appErr.Context[errors.ContextStatusCode])

			msg, ok := errors.ServerMessage(err)
			assert.Equal(t, tt.expected != "", ok)
			assert.Equal(t, tt.expected, msg)
		})
	}
}

func TestGetCounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get/count", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"Teaching":4,"Non Teaching":2,"Admin":1,"total":7}}`))
	})

	counts, err := c.GetCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Counts{Teaching: 4, NonTeaching: 2, Admin: 1, Total: 7}, counts)
}

func TestListApplications(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "Female", q.Get("gender"))
		assert.False(t, q.Has("applyingFor"))
		_, _ = w.Write([]byte(`{"data":[{"_id":"a1","fullName":"JANE","children":"2","createdAt":"2024-05-01T10:00:00Z"}]}`))
	})

	resp, err := c.ListApplications(context.Background(), types.ListQuery{Page: 2, Limit: 5, Gender: "Female"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a1", resp.Data[0].ID)
	assert.Equal(t, "JANE", resp.Data[0].FullName)
	assert.Equal(t, application.NumberOf(2), resp.Data[0].Children)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.GetCounts(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestDownloadPDF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/application/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})

	data, err := c.DownloadPDF(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	_, err = c.DownloadPDF(context.Background(), "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestSendEmail(t *testing.T) {
	var got types.EmailRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sendemail", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"effectiveStatus":"Interview"}`))
	})

	email := types.EmailRequest{
		ApplicationID: "a1",
		To:            "j@x.com",
		Subject:       "Application update - JOHN DOE",
		Status:        application.StatusInterview,
	}
	resp, err := c.SendEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, email, got)
	assert.Equal(t, "Interview", resp.EffectiveStatus)
}

func TestSendEmailEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.SendEmail(context.Background(), types.EmailRequest{ApplicationID: "a1"})
	require.NoError(t, err)
	assert.Empty(t, resp.EffectiveStatus)
}

func TestReadTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(cfg *config.APIConfig) { cfg.Timeout = 20 * time.Millisecond })

	_, err := c.GetCounts(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetworkTimeout))
}

func TestCancelledRead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListApplications(ctx, types.ListQuery{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRequestCanceled))
}

func TestBreakerIgnoresCanceledReads(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, func(cfg *config.APIConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 3, FailureThreshold: 0.6}
	})

	for range 5 {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ListApplications(ctx, types.ListQuery{Page: 1, Limit: 10})
		assert.True(t, errors.HasCode(err, errors.ErrCodeRequestCanceled))
	}
	assert.True(t, c.Healthy())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *config.APIConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 0.6,
		}
	})

	for range 3 {
		_, err := c.GetCounts(context.Background())
		assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteRequestFailed))
	}
	assert.False(t, c.Healthy())

	_, err := c.GetCounts(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteUnavailable))
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "open", c.BreakerStats()["state"])

	// submissions bypass the breaker
	_ = c.SubmitApplication(context.Background(), strings.NewReader(""), "multipart/form-data")
	assert.Equal(t, int32(4), hits.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *config.APIConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureThreshold: 0.5}
	})

	for range 5 {
		_, err := c.DownloadPDF(context.Background(), "missing")
		assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteRequestFailed))
	}
	assert.True(t, c.Healthy())
}

func TestNilBreaker(t *testing.T) {
	var b *Breaker
	body, err := b.Execute(func() ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.True(t, b.IsHealthy())
	assert.Equal(t, false, b.GetStats()["enabled"])
	assert.Nil(t, NewBreaker("x", config.CircuitBreakerConfig{}, nil))
}

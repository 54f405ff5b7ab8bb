package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hrintake/internal/config"
	"hrintake/internal/errors"
)

func newGate(t *testing.T, cfg config.AdminConfig) *Gate {
	t.Helper()
	g, err := NewGate(cfg, nil)
	require.NoError(t, err)
	return g
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		cfg      config.AdminConfig
		user     string
		pass     string
		wantCode string
	}{
		{name: "plain password", cfg: config.AdminConfig{Username: "hr", Password: "s3cret", JWTSecret: "k"}, user: "hr", pass: "s3cret"},
		{name: "bcrypt hash", cfg: config.AdminConfig{Username: "hr", PasswordHash: string(hash), JWTSecret: "k"}, user: "hr", pass: "s3cret"},
		{name: "hash wins over password", cfg: config.AdminConfig{Username: "hr", Password: "other", PasswordHash: string(hash), JWTSecret: "k"}, user: "hr", pass: "other", wantCode: errors.ErrCodeInvalidCredentials},
		{name: "wrong password", cfg: config.AdminConfig{Username: "hr", Password: "s3cret", JWTSecret: "k"}, user: "hr", pass: "nope", wantCode: errors.ErrCodeInvalidCredentials},
		{name: "wrong user", cfg: config.AdminConfig{Username: "hr", Password: "s3cret", JWTSecret: "k"}, user: "admin", pass: "s3cret", wantCode: errors.ErrCodeInvalidCredentials},
		{name: "unconfigured", cfg: config.AdminConfig{}, user: "", pass: "", wantCode: errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate(t, tt.cfg)
			resp, err := g.Login(tt.user, tt.pass)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.wantCode))
				assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)

			claims, err := g.Verify(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.user, claims.Username)
		})
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	cfg := config.AdminConfig{Username: "hr", Password: "pw", JWTSecret: "secret-a", TokenTTL: time.Hour}
	g := newGate(t, cfg)
	resp, err := g.Login("hr", "pw")
	require.NoError(t, err)

	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = g.Verify(resp.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")

	cfg.JWTSecret = "secret-b"
	other := newGate(t, cfg)
	_, err = other.Verify(resp.Token)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidToken))

	_, err = other.Verify("")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidToken))
}

func TestRandomSecretStillVerifiesInProcess(t *testing.T) {
	g := newGate(t, config.AdminConfig{Username: "hr", Password: "pw"})
	resp, err := g.Login("hr", "pw")
	require.NoError(t, err)
	_, err = g.Verify(resp.Token)
	assert.NoError(t, err)
}

func TestRequire(t *testing.T) {
	g := newGate(t, config.AdminConfig{Username: "hr", Password: "pw", JWTSecret: "k"})
	resp, err := g.Login("hr", "pw")
	require.NoError(t, err)

	var seen *Claims
	handler := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic aHI6cHc=", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + resp.Token, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/counts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, "hr", seen.Username)
}

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/errors"
)

func newMockLogger() *errors.Logger {
	return errors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeSecrets struct {
	secrets map[string]*VaultSecret
}

func (f *fakeSecrets) GetSecretV2(path string) (*VaultSecret, error) {
	secret, ok := f.secrets[path]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return secret, nil
}

func (f *fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	secret, err := f.GetSecretV2(path)
	if err != nil {
		return nil, err
	}
	return trimList(strings.Split(secret.String(key), ",")), nil
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(7), expected: 7},
		{name: "numeric string", input: "123", expected: 123},
		{name: "invalid string", input: "abc", expectError: true},
		{name: "unsupported type", input: true, expectError: true},
		{name: "nil", input: nil, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseKVv2(t *testing.T) {
	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    *VaultSecret
	}{
		{
			name: "valid secret",
			secret: &api.Secret{Data: map[string]any{
				"data":     map[string]any{"username": "hr"},
				"metadata": map[string]any{"version": float64(3)},
			}},
			expected: &VaultSecret{Data: map[string]any{"username": "hr"}, Version: 3},
		},
		{
			name:        "missing data",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{"version": float64(1)}}},
			expectError: true,
		},
		{
			name:        "data is not a map",
			secret:      &api.Secret{Data: map[string]any{"data": "x", "metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "missing version",
			secret:      &api.Secret{Data: map[string]any{"data": map[string]any{}, "metadata": map[string]any{}}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseKVv2(tt.secret, "secret/data/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newMockLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, nil)
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestApplySecrets(t *testing.T) {
	source := &fakeSecrets{secrets: map[string]*VaultSecret{
		"secret/data/keys": {Data: map[string]any{"keys": "k1, k2,"}},
		"secret/data/admin": {Data: map[string]any{
			"username":      "hr-admin",
			"password_hash": "$2a$10$abcdefghijklmnopqrstuv",
			"jwt_secret":    "s3cret",
			"password":      42,
		}},
		"secret/data/tls": {Data: map[string]any{"cert": "CERT PEM", "key": "KEY PEM"}},
	}}

	cfg := &Config{
		Admin: AdminConfig{Username: "local", Password: "local-pass"},
		Server: ServerConfig{
			APIKeys: []string{"old"},
			TLS:     TLSConfig{Mode: "server", CertFile: "/etc/cert.pem", KeyFile: "/etc/key.pem"},
		},
		Vault: VaultConfig{Enabled: true, Secrets: VaultSecrets{
			APIKeys:  "secret/data/keys",
			Admin:    "secret/data/admin",
			TLSCerts: "secret/data/tls",
		}},
	}

	require.NoError(t, applySecrets(source, cfg, newMockLogger()))

	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "hr-admin", cfg.Admin.Username)
	assert.Equal(t, "local-pass", cfg.Admin.Password, "non-string secret fields are ignored")
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", cfg.Admin.PasswordHash)
	assert.Equal(t, "s3cret", cfg.Admin.JWTSecret)

	assert.Equal(t, "CERT PEM", cfg.Server.TLS.CertContent)
	assert.Empty(t, cfg.Server.TLS.CertFile)
	assert.Equal(t, "KEY PEM", cfg.Server.TLS.KeyContent)
	assert.NoError(t, cfg.ValidateTLSConfig())
}

func TestApplySecretsMissingPath(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: true, Secrets: VaultSecrets{Admin: "secret/data/nope"}}}

	err := applySecrets(&fakeSecrets{}, cfg, nil)
	assert.ErrorContains(t, err, "failed to load admin credentials from vault")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Admin: AdminConfig{Username: "hr"}}
	require.NoError(t, ApplyVaultSecrets(cfg, newMockLogger()))
	assert.Equal(t, "hr", cfg.Admin.Username)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}

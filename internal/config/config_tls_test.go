package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError string
	}{
		{name: "disabled", tls: TLSConfig{Mode: "disabled"}},
		{name: "server with files", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.3"}},
		{name: "server with content", tls: TLSConfig{Mode: "server", CertContent: "CERT", KeyContent: "KEY"}},
		{name: "server mixing file and content", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyContent: "KEY"}},
		{
			name:        "server without key",
			tls:         TLSConfig{Mode: "server", CertFile: "c.pem"},
			expectError: "TLS certificate and key are required",
		},
		{
			name:        "duplicate cert source",
			tls:         TLSConfig{Mode: "server", CertFile: "c.pem", CertContent: "CERT", KeyFile: "k.pem"},
			expectError: "cannot specify both certFile and certContent",
		},
		{
			name:        "duplicate key source",
			tls:         TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", KeyContent: "KEY"},
			expectError: "cannot specify both keyFile and keyContent",
		},
		{
			name:        "mutual is not offered",
			tls:         TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem"},
			expectError: "invalid TLS mode",
		},
		{
			name:        "unknown version",
			tls:         TLSConfig{Mode: "disabled", MinVersion: "1.1"},
			expectError: "invalid TLS minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}

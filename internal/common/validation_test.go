package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/config"
	"hrintake/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown", "table"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: supported},
		{name: "table", format: "table", supportedFormats: supported},
		{name: "xml", format: "xml", supportedFormats: supported,
			expectedError: "unsupported output format 'xml'. Supported formats: [json text markdown table]"},
		{name: "case sensitive", format: "JSON", supportedFormats: supported,
			expectedError: "unsupported output format 'JSON'. Supported formats: [json text markdown table]"},
		{name: "empty format", format: "", supportedFormats: supported,
			expectedError: "unsupported output format ''. Supported formats: [json text markdown table]"},
		{name: "no restriction", format: "xml", supportedFormats: nil},
		{name: "single format", format: "text", supportedFormats: []string{"json"},
			expectedError: "unsupported output format 'text'. Supported formats: [json]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}

func TestResolveCommandConfig(t *testing.T) {
	app := config.AppConfig{DefaultFormat: "table", SupportedFormats: []string{"json", "text", "markdown", "table"}}

	cfg, err := ResolveCommandConfig("", "out.txt", app)
	require.NoError(t, err)
	assert.Equal(t, CommandConfig{OutputFile: "out.txt", OutputFormat: "table"}, cfg)

	cfg, err = ResolveCommandConfig(" json ", "", app)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)

	_, err = ResolveCommandConfig("xml", "", app)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown", "table"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("table", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}

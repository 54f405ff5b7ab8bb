package common

import (
	"fmt"
	"slices"
	"strings"

	"hrintake/internal/config"
	"hrintake/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveCommandConfig applies the configured default format when none is
// given and checks the result against the supported formats.
func ResolveCommandConfig(format, outputFile string, app config.AppConfig) (CommandConfig, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		format = app.DefaultFormat
	}
	if err := ValidateOutputFormat(format, app.SupportedFormats); err != nil {
		return CommandConfig{}, errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil).
			WithContext(errors.ContextField, "format")
	}
	return CommandConfig{OutputFile: outputFile, OutputFormat: format}, nil
}

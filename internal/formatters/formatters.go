package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"hrintake/internal/application"
	"hrintake/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry is the registry used by the CLI output handler
var GlobalRegistry = NewFormatterRegistry()

const (
	typeCounts        = "Counts"
	typeListPage      = "ListPage"
	typeApplication   = "Application"
	typeReview        = "Review"
	typeBulkEmail     = "BulkEmailResult"
	typeDetailOptions = "DetailOptions"
	typeSalaryOptions = "SalaryOptions"
	typeSteps         = "Steps"
	typeLogin         = "Login"
	typeEmail         = "EmailResponse"
	typeSubmit        = "SubmitResult"
	typeDownload      = "Download"
	typeAny           = "any"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", typeAny, &JSONFormatter{})

	for _, f := range []Formatter{
		&CountsTextFormatter{}, &ListTextFormatter{}, &ApplicationTextFormatter{},
		&ReviewTextFormatter{}, &BulkEmailTextFormatter{}, &OptionsTextFormatter{typeDetailOptions},
		&OptionsTextFormatter{typeSalaryOptions}, &StepsTextFormatter{}, &LoginTextFormatter{},
		&EmailTextFormatter{}, &SubmitTextFormatter{}, &DownloadTextFormatter{},
	} {
		registry.RegisterFormatter("text", f.SupportedType(), f)
	}

	for _, f := range []Formatter{
		&CountsMarkdownFormatter{}, &ListMarkdownFormatter{}, &ApplicationMarkdownFormatter{},
		&ReviewMarkdownFormatter{}, &BulkEmailMarkdownFormatter{}, &OptionsMarkdownFormatter{typeDetailOptions},
		&OptionsMarkdownFormatter{typeSalaryOptions}, &StepsMarkdownFormatter{},
	} {
		registry.RegisterFormatter("markdown", f.SupportedType(), f)
	}

	for _, f := range []Formatter{
		&CountsTableFormatter{}, &ListTableFormatter{}, &ApplicationTableFormatter{},
		&ReviewTableFormatter{}, &BulkEmailTableFormatter{}, &StepsTableFormatter{},
	} {
		registry.RegisterFormatter("table", f.SupportedType(), f)
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// fallbacks names the format tried when a format has no formatter for a type
var fallbacks = map[string]string{
	"table":    "text",
	"markdown": "text",
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	for f := format; f != ""; f = fallbacks[f] {
		formatters, exists := fr.formatters[f]
		if !exists {
			continue
		}
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters[typeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.Counts:
		return typeCounts
	case types.ListPage:
		return typeListPage
	case application.Submitted:
		return typeApplication
	case types.ReviewResult:
		return typeReview
	case types.BulkEmailResult:
		return typeBulkEmail
	case types.DetailOptionsResult:
		return typeDetailOptions
	case types.SalaryOptionsResult:
		return typeSalaryOptions
	case types.StepsResult:
		return typeSteps
	case types.LoginResponse:
		return typeLogin
	case types.EmailResponse:
		return typeEmail
	case types.SubmitResult:
		return typeSubmit
	case types.DownloadResult:
		return typeDownload
	default:
		return typeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return typeAny
}

func expect[T any](data any) (T, error) {
	v, ok := data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("expected %T, got %T", zero, data)
	}
	return v, nil
}

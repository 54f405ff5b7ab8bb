package formatters

import (
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/application"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

func init() {
	color.NoColor = true
}

func sampleApp() application.Submitted {
	rec := application.NewRecord()
	rec.FullName = "ASHA VERMA"
	rec.Email = "asha@example.com"
	rec.ApplyingFor = "Teaching"
	rec.ApplicationType = "college"
	rec.SubjectOrDepartment = "Physics | Chemistry"
	return application.Submitted{ID: "64f0", CreatedAt: "2024-03-15T10:30:00Z", Record: rec}
}

func TestRegistryFormats(t *testing.T) {
	registry := NewFormatterRegistry()
	counts := types.Counts{Teaching: 4, NonTeaching: 2, Admin: 1, Total: 7}
	page := types.ListPage{Page: 2, Limit: 10, TotalPages: 3, Applications: []application.Submitted{sampleApp()}}

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{name: "counts text", data: counts, format: "text", contains: []string{"Non Teaching: 2", "Total:        7"}},
		{name: "counts markdown", data: counts, format: "markdown", contains: []string{"| **Total** | **7** |"}},
		{name: "counts table", data: counts, format: "table", contains: []string{"ROLE", "Non Teaching", "7"}},
		{name: "list text", data: page, format: "text", contains: []string{"page 2 of 3", "64f0  ASHA VERMA <asha@example.com>"}},
		{name: "list markdown escapes pipes", data: page, format: "markdown", contains: []string{`Physics \| Chemistry`}},
		{name: "list table", data: page, format: "table", contains: []string{"APPLYING FOR", "asha@example.com"}},
		{name: "application text", data: sampleApp(), format: "text", contains: []string{"ID: 64f0", "Created: 2024-03-15T10:30:00Z", "Personal Details"}},
		{name: "bulk text", data: types.BulkEmailResult{Sent: 2, Total: 3, Failed: []string{"x"}}, format: "text", contains: []string{"Emails sent: 2/3", "Failed: x"}},
		{name: "bulk table", data: types.BulkEmailResult{Sent: 3, Total: 3}, format: "table", contains: []string{"SENT", "3"}},
		{name: "detail options", data: types.DetailOptionsResult{Tier: "Tier 1", CollegeType: "Education", Options: []string{"A", "B"}}, format: "text", contains: []string{"Tier 1 / Education", "  2. B"}},
		{name: "salary falls back to text for table", data: types.SalaryOptionsResult{ApplicationType: "school", Brackets: []string{"0-50000"}}, format: "table", contains: []string{"Salary brackets (school)", "1. 0-50000"}},
		{name: "login text", data: types.LoginResponse{Token: "abc"}, format: "text", contains: []string{"abc"}},
		{name: "review not ready", data: types.ReviewResult{Problem: "Please fill all required fields.", Step: "personal"}, format: "text", contains: []string{"Not ready: Please fill all required fields. (step: personal)"}},
		{name: "steps", data: types.StepsResult{Steps: []types.StepInfo{{Index: 0, Key: "type", Title: "Application Type"}}}, format: "markdown", contains: []string{"| 1 | Application Type | `type` |"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(sampleApp(), "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "64f0", decoded["_id"])
	assert.Equal(t, "ASHA VERMA", decoded["fullName"])
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()
	_, err := registry.Format(types.Counts{}, "xml")
	assert.Error(t, err)

	_, err = registry.Format(struct{}{}, "text")
	assert.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "table", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestReviewTableUsesSummarySections(t *testing.T) {
	sections := wizard.Summary(sampleApp().Record, wizard.NewController(wizard.DefaultSteps()))
	out, err := NewFormatterRegistry().Format(types.ReviewResult{Sections: sections, Valid: true}, "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready to submit.")
	assert.Contains(t, out, "ASHA VERMA")
}

package formatters

import (
	"fmt"
	"strings"

	"hrintake/internal/application"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

// escapeCell keeps a value inside one markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(orDash(s), "\n", " ")
}

type CountsMarkdownFormatter struct{}

func (f *CountsMarkdownFormatter) Format(data any) (string, error) {
	c, err := expect[types.Counts](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("# Applications\n\n")
	out.WriteString("| Role | Count |\n|---|---:|\n")
	fmt.Fprintf(&out, "| Teaching | %d |\n| Non Teaching | %d |\n| Admin | %d |\n| **Total** | **%d** |\n",
		c.Teaching, c.NonTeaching, c.Admin, c.Total)
	return out.String(), nil
}

func (f *CountsMarkdownFormatter) SupportedType() string { return typeCounts }

type ListMarkdownFormatter struct{}

func (f *ListMarkdownFormatter) Format(data any) (string, error) {
	page, err := expect[types.ListPage](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "# Applications\n\nPage %d of %d\n\n", page.Page, page.TotalPages)
	out.WriteString("| ID | Name | Email | Applying For | Type | Subject |\n|---|---|---|---|---|---|\n")
	for _, app := range page.Applications {
		fmt.Fprintf(&out, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(app.ID), escapeCell(app.FullName), escapeCell(app.Email),
			escapeCell(string(app.ApplyingFor)), escapeCell(string(app.ApplicationType)), escapeCell(app.SubjectOrDepartment))
	}
	return out.String(), nil
}

func (f *ListMarkdownFormatter) SupportedType() string { return typeListPage }

func writeSectionsMarkdown(out *strings.Builder, sections []wizard.SummarySection) {
	for _, section := range sections {
		fmt.Fprintf(out, "## %s\n\n", section.Title)
		for _, item := range section.Items {
			fmt.Fprintf(out, "- **%s:** %s\n", item.Label, orDash(item.Value))
		}
		out.WriteString("\n")
	}
}

type ApplicationMarkdownFormatter struct{}

func (f *ApplicationMarkdownFormatter) Format(data any) (string, error) {
	app, err := expect[application.Submitted](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", orDash(app.FullName))
	for _, kv := range submittedMeta(app) {
		fmt.Fprintf(&out, "- **%s:** %s\n", kv[0], kv[1])
	}
	out.WriteString("\n")
	writeSectionsMarkdown(&out, applicationSections(app))
	return out.String(), nil
}

func (f *ApplicationMarkdownFormatter) SupportedType() string { return typeApplication }

type ReviewMarkdownFormatter struct{}

func (f *ReviewMarkdownFormatter) Format(data any) (string, error) {
	review, err := expect[types.ReviewResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("# Review\n\n")
	writeSectionsMarkdown(&out, review.Sections)
	if review.Valid {
		out.WriteString("**Ready to submit.**\n")
	} else {
		fmt.Fprintf(&out, "> **Not ready:** %s\n", review.Problem)
	}
	return out.String(), nil
}

func (f *ReviewMarkdownFormatter) SupportedType() string { return typeReview }

type BulkEmailMarkdownFormatter struct{}

func (f *BulkEmailMarkdownFormatter) Format(data any) (string, error) {
	result, err := expect[types.BulkEmailResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "**Emails sent:** %d/%d\n", result.Sent, result.Total)
	for _, id := range result.Failed {
		fmt.Fprintf(&out, "- failed: `%s`\n", id)
	}
	return out.String(), nil
}

func (f *BulkEmailMarkdownFormatter) SupportedType() string { return typeBulkEmail }

type OptionsMarkdownFormatter struct {
	dataType string
}

func (f *OptionsMarkdownFormatter) Format(data any) (string, error) {
	title, options, err := optionLines(data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "## %s\n\n", title)
	for i, opt := range options {
		fmt.Fprintf(&out, "%d. %s\n", i+1, opt)
	}
	return out.String(), nil
}

func (f *OptionsMarkdownFormatter) SupportedType() string { return f.dataType }

type StepsMarkdownFormatter struct{}

func (f *StepsMarkdownFormatter) Format(data any) (string, error) {
	steps, err := expect[types.StepsResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("| # | Step | Key |\n|---:|---|---|\n")
	for _, s := range steps.Steps {
		fmt.Fprintf(&out, "| %d | %s | `%s` |\n", s.Index+1, s.Title, s.Key)
	}
	return out.String(), nil
}

func (f *StepsMarkdownFormatter) SupportedType() string { return typeSteps }

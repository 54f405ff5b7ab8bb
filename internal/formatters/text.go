package formatters

import (
	"fmt"
	"strings"

	"hrintake/internal/application"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

// applicationSections renders a submitted application with the full step set
func applicationSections(app application.Submitted) []wizard.SummarySection {
	return wizard.Summary(app.Record, wizard.NewController(wizard.DefaultSteps()))
}

func submittedMeta(app application.Submitted) [][2]string {
	meta := [][2]string{{"ID", app.ID}}
	for _, kv := range [][2]string{
		{"Created", app.CreatedAt},
		{"Status", app.Status},
		{"Photo", app.PhotoURL},
		{"Resume", app.ResumeURL},
	} {
		if kv[1] != "" {
			meta = append(meta, kv)
		}
	}
	return meta
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type CountsTextFormatter struct{}

func (f *CountsTextFormatter) Format(data any) (string, error) {
	c, err := expect[types.Counts](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("=== APPLICATIONS ===\n")
	fmt.Fprintf(&out, "Teaching:     %d\n", c.Teaching)
	fmt.Fprintf(&out, "Non Teaching: %d\n", c.NonTeaching)
	fmt.Fprintf(&out, "Admin:        %d\n", c.Admin)
	fmt.Fprintf(&out, "Total:        %d\n", c.Total)
	return out.String(), nil
}

func (f *CountsTextFormatter) SupportedType() string { return typeCounts }

type ListTextFormatter struct{}

func (f *ListTextFormatter) Format(data any) (string, error) {
	page, err := expect[types.ListPage](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "=== APPLICATIONS (page %d of %d, %d per page) ===\n\n", page.Page, page.TotalPages, page.Limit)
	if len(page.Applications) == 0 {
		out.WriteString("No applications found.\n")
		return out.String(), nil
	}
	for _, app := range page.Applications {
		fmt.Fprintf(&out, "%s  %s <%s>\n", app.ID, orDash(app.FullName), orDash(app.Email))
		fmt.Fprintf(&out, "    %s, %s, %s\n", orDash(string(app.ApplyingFor)), orDash(string(app.ApplicationType)), orDash(app.SubjectOrDepartment))
	}
	return out.String(), nil
}

func (f *ListTextFormatter) SupportedType() string { return typeListPage }

type ApplicationTextFormatter struct{}

func (f *ApplicationTextFormatter) Format(data any) (string, error) {
	app, err := expect[application.Submitted](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("=== APPLICATION ===\n")
	for _, kv := range submittedMeta(app) {
		fmt.Fprintf(&out, "%s: %s\n", kv[0], kv[1])
	}
	out.WriteString("\n")
	writeSectionsText(&out, applicationSections(app))
	return out.String(), nil
}

func (f *ApplicationTextFormatter) SupportedType() string { return typeApplication }

func writeSectionsText(out *strings.Builder, sections []wizard.SummarySection) {
	for _, section := range sections {
		fmt.Fprintf(out, "--- %s (step %d) ---\n", section.Title, section.StepIndex+1)
		for _, item := range section.Items {
			fmt.Fprintf(out, "%s: %s\n", item.Label, orDash(item.Value))
		}
		out.WriteString("\n")
	}
}

type ReviewTextFormatter struct{}

func (f *ReviewTextFormatter) Format(data any) (string, error) {
	review, err := expect[types.ReviewResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("=== REVIEW ===\n\n")
	writeSectionsText(&out, review.Sections)
	if review.Valid {
		out.WriteString("Ready to submit.\n")
	} else {
		fmt.Fprintf(&out, "Not ready: %s", review.Problem)
		if review.Step != "" {
			fmt.Fprintf(&out, " (step: %s)", review.Step)
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}

func (f *ReviewTextFormatter) SupportedType() string { return typeReview }

type BulkEmailTextFormatter struct{}

func (f *BulkEmailTextFormatter) Format(data any) (string, error) {
	result, err := expect[types.BulkEmailResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "Emails sent: %d/%d\n", result.Sent, result.Total)
	if len(result.Failed) > 0 {
		fmt.Fprintf(&out, "Failed: %s\n", strings.Join(result.Failed, ", "))
	}
	return out.String(), nil
}

func (f *BulkEmailTextFormatter) SupportedType() string { return typeBulkEmail }

// OptionsTextFormatter lists detail or salary options, one per line
type OptionsTextFormatter struct {
	dataType string
}

func optionLines(data any) (title string, options []string, err error) {
	switch v := data.(type) {
	case types.DetailOptionsResult:
		return fmt.Sprintf("%s / %s", v.Tier, v.CollegeType), v.Options, nil
	case types.SalaryOptionsResult:
		return fmt.Sprintf("Salary brackets (%s)", v.ApplicationType), v.Brackets, nil
	default:
		return "", nil, fmt.Errorf("expected options result, got %T", data)
	}
}

func (f *OptionsTextFormatter) Format(data any) (string, error) {
	title, options, err := optionLines(data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString(title + "\n")
	for i, opt := range options {
		fmt.Fprintf(&out, "%3d. %s\n", i+1, opt)
	}
	return out.String(), nil
}

func (f *OptionsTextFormatter) SupportedType() string { return f.dataType }

type StepsTextFormatter struct{}

func (f *StepsTextFormatter) Format(data any) (string, error) {
	steps, err := expect[types.StepsResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, s := range steps.Steps {
		fmt.Fprintf(&out, "%d. %s (%s)\n", s.Index+1, s.Title, s.Key)
	}
	return out.String(), nil
}

func (f *StepsTextFormatter) SupportedType() string { return typeSteps }

type LoginTextFormatter struct{}

func (f *LoginTextFormatter) Format(data any) (string, error) {
	login, err := expect[types.LoginResponse](data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n", login.Token), nil
}

func (f *LoginTextFormatter) SupportedType() string { return typeLogin }

type EmailTextFormatter struct{}

func (f *EmailTextFormatter) Format(data any) (string, error) {
	resp, err := expect[types.EmailResponse](data)
	if err != nil {
		return "", err
	}
	msg := "Email sent and logged"
	if resp.Message != "" {
		msg = resp.Message
	}
	if resp.EffectiveStatus != "" {
		msg += fmt.Sprintf(" (status: %s)", resp.EffectiveStatus)
	}
	return msg + "\n", nil
}

func (f *EmailTextFormatter) SupportedType() string { return typeEmail }

type SubmitTextFormatter struct{}

func (f *SubmitTextFormatter) Format(data any) (string, error) {
	result, err := expect[types.SubmitResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString(result.Message + "\n")
	if len(result.Parts) > 0 {
		fmt.Fprintf(&out, "Parts: %s\n", strings.Join(result.Parts, ", "))
	}
	return out.String(), nil
}

func (f *SubmitTextFormatter) SupportedType() string { return typeSubmit }

type DownloadTextFormatter struct{}

func (f *DownloadTextFormatter) Format(data any) (string, error) {
	result, err := expect[types.DownloadResult](data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %s\n", result.Path), nil
}

func (f *DownloadTextFormatter) SupportedType() string { return typeDownload }

package formatters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"hrintake/internal/application"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

var heading = color.New(color.FgYellow, color.Bold)

func renderTable(out *strings.Builder, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

type CountsTableFormatter struct{}

func (f *CountsTableFormatter) Format(data any) (string, error) {
	c, err := expect[types.Counts](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString(heading.Sprint("Applications") + "\n")
	table := tablewriter.NewWriter(&out)
	table.SetHeader([]string{"Role", "Count"})
	table.AppendBulk([][]string{
		{"Teaching", strconv.Itoa(c.Teaching)},
		{"Non Teaching", strconv.Itoa(c.NonTeaching)},
		{"Admin", strconv.Itoa(c.Admin)},
	})
	table.SetFooter([]string{"Total", strconv.Itoa(c.Total)})
	table.Render()
	return out.String(), nil
}

func (f *CountsTableFormatter) SupportedType() string { return typeCounts }

type ListTableFormatter struct{}

func (f *ListTableFormatter) Format(data any) (string, error) {
	page, err := expect[types.ListPage](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString(heading.Sprintf("Applications - page %d of %d", page.Page, page.TotalPages) + "\n")
	rows := make([][]string, 0, len(page.Applications))
	for _, app := range page.Applications {
		rows = append(rows, []string{
			app.ID, orDash(app.FullName), orDash(app.Email), orDash(string(app.ApplyingFor)),
			orDash(string(app.ApplicationType)), orDash(app.SubjectOrDepartment), orDash(app.MobileNumber),
		})
	}
	renderTable(&out, []string{"ID", "Name", "Email", "Applying For", "Type", "Subject", "Mobile"}, rows)
	return out.String(), nil
}

func (f *ListTableFormatter) SupportedType() string { return typeListPage }

func writeSectionsTable(out *strings.Builder, sections []wizard.SummarySection) {
	for _, section := range sections {
		out.WriteString(heading.Sprintf("%d. %s", section.StepIndex+1, section.Title) + "\n")
		rows := make([][]string, 0, len(section.Items))
		for _, item := range section.Items {
			rows = append(rows, []string{item.Label, orDash(item.Value)})
		}
		renderTable(out, []string{"Field", "Value"}, rows)
	}
}

type ApplicationTableFormatter struct{}

func (f *ApplicationTableFormatter) Format(data any) (string, error) {
	app, err := expect[application.Submitted](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString(heading.Sprint(orDash(app.FullName)) + "\n")
	meta := submittedMeta(app)
	rows := make([][]string, 0, len(meta))
	for _, kv := range meta {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	renderTable(&out, []string{"Field", "Value"}, rows)
	writeSectionsTable(&out, applicationSections(app))
	return out.String(), nil
}

func (f *ApplicationTableFormatter) SupportedType() string { return typeApplication }

type ReviewTableFormatter struct{}

func (f *ReviewTableFormatter) Format(data any) (string, error) {
	review, err := expect[types.ReviewResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	writeSectionsTable(&out, review.Sections)
	if review.Valid {
		out.WriteString(color.GreenString("Ready to submit.") + "\n")
	} else {
		out.WriteString(color.RedString("Not ready: %s", review.Problem) + "\n")
	}
	return out.String(), nil
}

func (f *ReviewTableFormatter) SupportedType() string { return typeReview }

type BulkEmailTableFormatter struct{}

func (f *BulkEmailTableFormatter) Format(data any) (string, error) {
	result, err := expect[types.BulkEmailResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	renderTable(&out, []string{"Sent", "Total", "Failed"}, [][]string{{
		strconv.Itoa(result.Sent), strconv.Itoa(result.Total), orDash(strings.Join(result.Failed, ", ")),
	}})
	return out.String(), nil
}

func (f *BulkEmailTableFormatter) SupportedType() string { return typeBulkEmail }

type StepsTableFormatter struct{}

func (f *StepsTableFormatter) Format(data any) (string, error) {
	steps, err := expect[types.StepsResult](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	rows := make([][]string, 0, len(steps.Steps))
	for _, s := range steps.Steps {
		rows = append(rows, []string{fmt.Sprint(s.Index + 1), s.Title, s.Key})
	}
	renderTable(&out, []string{"#", "Step", "Key"}, rows)
	return out.String(), nil
}

func (f *StepsTableFormatter) SupportedType() string { return typeSteps }

package dashboard

import (
	"strings"
	"time"

	"hrintake/internal/application"
	"hrintake/internal/types"
)

// Filters are applied by the intake API
type Filters struct {
	ApplyingFor         string `json:"applyingFor,omitempty"`
	Gender              string `json:"gender,omitempty"`
	MaritalStatus       string `json:"maritalStatus,omitempty"`
	AreaOfInterest      string `json:"areaOfInterest,omitempty"`
	MinExperience       string `json:"minExperience,omitempty"`
	MaxExperience       string `json:"maxExperience,omitempty"`
	ApplicationType     string `json:"applicationType,omitempty"`
	SubjectOrDepartment string `json:"subjectOrDepartment,omitempty"`
	Q                   string `json:"q,omitempty"`
}

// Query combines the filters with a page position
func (f Filters) Query(page, limit int) types.ListQuery {
	return types.ListQuery{
		Page:                page,
		Limit:               limit,
		ApplyingFor:         f.ApplyingFor,
		Gender:              f.Gender,
		MaritalStatus:       f.MaritalStatus,
		AreaOfInterest:      f.AreaOfInterest,
		MinExperience:       f.MinExperience,
		MaxExperience:       f.MaxExperience,
		ApplicationType:     f.ApplicationType,
		SubjectOrDepartment: f.SubjectOrDepartment,
		Q:                   f.Q,
	}
}

// LocalFilters narrow the loaded page without another API call
type LocalFilters struct {
	NameOrEmail string               `json:"nameOrEmail,omitempty"`
	Subject     string               `json:"educationSubject,omitempty"`
	ExamType    application.ExamType `json:"educationExamType,omitempty"`
	Medium      application.Medium   `json:"educationMedium,omitempty"`
	// StartDate and EndDate bound createdAt, or dateOfBirth when createdAt is missing
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Empty reports whether no local filter is set
func (l LocalFilters) Empty() bool {
	return l == LocalFilters{}
}

// Match reports whether app passes every set filter
func (l LocalFilters) Match(app application.Submitted) bool {
	if l.NameOrEmail != "" {
		q := strings.ToLower(l.NameOrEmail)
		if !strings.Contains(strings.ToLower(app.FullName), q) && !strings.Contains(strings.ToLower(app.Email), q) {
			return false
		}
	}

	if l.Subject != "" || l.ExamType != "" || l.Medium != "" {
		if !l.matchEducation(app.EducationQualifications) {
			return false
		}
	}

	if l.StartDate == "" && l.EndDate == "" {
		return true
	}

	stamp := app.CreatedAt
	if stamp == "" {
		stamp = app.DateOfBirth
	}
	created, ok := parseDate(stamp)
	if !ok {
		return false
	}
	if start, ok := parseDate(l.StartDate); ok && created.Before(start) {
		return false
	}
	if end, ok := parseDate(l.EndDate); ok && created.After(end) {
		return false
	}
	return true
}

func (l LocalFilters) matchEducation(quals []application.EducationQualification) bool {
	subject := strings.ToLower(l.Subject)
	for _, q := range quals {
		if subject != "" && !strings.Contains(strings.ToLower(q.Subject), subject) {
			continue
		}
		if l.ExamType != "" && q.ExamType != l.ExamType {
			continue
		}
		if l.Medium != "" && q.Medium != l.Medium {
			continue
		}
		return true
	}
	return false
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate reads a date or timestamp. Bare dates are midnight UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

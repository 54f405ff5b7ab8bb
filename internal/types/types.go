package types

import (
	"net/url"
	"strconv"
	"time"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/wizard"
)

// Counts is the number of applications per role
type Counts struct {
	Teaching    int `json:"Teaching"`
	NonTeaching int `json:"Non Teaching"`
	Admin       int `json:"Admin"`
	Total       int `json:"total"`
}

// CountsResponse is the envelope of the aggregate count endpoint
type CountsResponse struct {
	Data Counts `json:"data"`
}

// ListQuery holds the server-side filters and paging of an application listing
type ListQuery struct {
	Page                int    `json:"page"`
	Limit               int    `json:"limit"`
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

// Values encodes the query. Empty filters are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	for key, value := range map[string]string{
		"applyingFor":         q.ApplyingFor,
		"gender":              q.Gender,
		"maritalStatus":       q.MaritalStatus,
		"areaOfInterest":      q.AreaOfInterest,
		"minExperience":       q.MinExperience,
		"maxExperience":       q.MaxExperience,
		"applicationType":     q.ApplicationType,
		"subjectOrDepartment": q.SubjectOrDepartment,
		"q":                   q.Q,
	} {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

// ListResponse is one page of applications
type ListResponse struct {
	Data       []application.Submitted `json:"data"`
	TotalPages int                     `json:"totalPages"`
}

// ListPage is a listing as shown on the dashboard after local filtering
type ListPage struct {
	Page         int                     `json:"page"`
	Limit        int                     `json:"limit"`
	TotalPages   int                     `json:"totalPages"`
	Applications []application.Submitted `json:"applications"`
}

// EmailRequest is the body of a status update email
type EmailRequest struct {
	ApplicationID string                  `json:"applicationId"`
	To            string                  `json:"to"`
	Subject       string                  `json:"subject"`
	Message       string                  `json:"message"`
	Status        application.EmailStatus `json:"status"`
}

// EmailResponse is what the email endpoint may answer with
type EmailResponse struct {
	EffectiveStatus string `json:"effectiveStatus,omitempty"`
	Message         string `json:"message,omitempty"`
}

// BulkEmailResult reports a sequential bulk send
type BulkEmailResult struct {
	Sent   int      `json:"sent"`
	Total  int      `json:"total"`
	Failed []string `json:"failed,omitempty"`
}

// DownloadResult names where a downloaded PDF was saved
type DownloadResult struct {
	ApplicationID string `json:"applicationId"`
	Path          string `json:"path"`
}

// DetailOptionsResult lists the institution details for a tier and college type
type DetailOptionsResult struct {
	Tier        application.Tier        `json:"tier"`
	CollegeType application.CollegeType `json:"collegeType"`
	Options     []string                `json:"options"`
}

// SalaryOptionsResult lists the expected-salary brackets for an application type
type SalaryOptionsResult struct {
	ApplicationType application.ApplicationType `json:"applicationType"`
	Brackets        []string                    `json:"brackets"`
}

// LoginRequest carries admin credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a dashboard session token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StepInfo describes one configured wizard step
type StepInfo struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Title string `json:"title"`
}

// StepsResult lists the configured wizard steps in order
type StepsResult struct {
	Steps []StepInfo `json:"steps"`
}

// ReviewResult is the review page of a draft together with its validation outcome
type ReviewResult struct {
	Sections []wizard.SummarySection `json:"sections"`
	Valid    bool                    `json:"valid"`
	Problem  string                  `json:"problem,omitempty"`
	Step     string                  `json:"step,omitempty"`
}

// SubmitResult reports the outcome of submitting an application
type SubmitResult struct {
	Submitted bool   `json:"submitted"`
	DryRun    bool   `json:"dryRun,omitempty"`
	Message   string `json:"message"`
	// Parts lists the multipart field names in the order they were written
	Parts []string `json:"parts,omitempty"`
}

// NewReviewResult pairs the review page with the outcome of wizard.Validate
func NewReviewResult(sections []wizard.SummarySection, validationErr error) ReviewResult {
	result := ReviewResult{Sections: sections, Valid: validationErr == nil}
	if validationErr == nil {
		return result
	}
	result.Problem = validationErr.Error()
	if appErr, ok := errors.As(validationErr); ok {
		result.Problem = appErr.Message
	}
	if step, ok := wizard.FailedStep(validationErr); ok {
		result.Step = string(step)
	}
	return result
}

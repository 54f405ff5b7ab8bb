package wizard

import (
	"hrintake/internal/application"
	"hrintake/internal/errors"
)

type rule struct {
	step      StepKey
	segmented bool
	message   string
	missing   func(rec application.Record) []string
}

// submissionRules run in order; the first failing rule wins.
var submissionRules = []rule{
	{
		step:    StepPersonal,
		message: "Please fill required fields: Full Name, Email, Mobile, Date of Birth.",
		missing: func(rec application.Record) []string {
			return blank(map[string]string{
				"fullName":     rec.FullName,
				"email":        rec.Email,
				"mobileNumber": rec.MobileNumber,
				"dateOfBirth":  rec.DateOfBirth,
			}, "fullName", "email", "mobileNumber", "dateOfBirth")
		},
	},
	{
		step:      StepType,
		segmented: true,
		message:   "Please choose application type (School or College).",
		missing: func(rec application.Record) []string {
			return blank(map[string]string{"applicationType": string(rec.ApplicationType)}, "applicationType")
		},
	},
	{
		step:    StepPersonal,
		message: "Please choose 'Applying For' option.",
		missing: func(rec application.Record) []string {
			return blank(map[string]string{"applyingFor": string(rec.ApplyingFor)}, "applyingFor")
		},
	},
	{
		step:    StepPersonal,
		message: "Please choose Gender and Category.",
		missing: func(rec application.Record) []string {
			return blank(map[string]string{
				"gender":   string(rec.Gender),
				"category": string(rec.Category),
			}, "gender", "category")
		},
	},
	{
		step:    StepPersonal,
		message: "Please complete the Education Category fields.",
		missing: func(rec application.Record) []string {
			if rec.ApplicationType != application.ApplicationTypeCollege {
				return nil
			}
			c := rec.EducationCategory
			return blank(map[string]string{
				"educationCategory.category":    string(c.Category),
				"educationCategory.collegeType": string(c.CollegeType),
				"educationCategory.details":     c.Details,
			}, "educationCategory.category", "educationCategory.collegeType", "educationCategory.details")
		},
	},
}

func blank(values map[string]string, order ...string) []string {
	var missing []string
	for _, name := range order {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Validate checks a record before submission. Segmented forms, those with an
// application type step, also require the type. The returned error carries
// the owning step under errors.ContextStep and the missing fields under
// errors.ContextField.
func Validate(rec application.Record, segmented bool) error {
	for _, r := range submissionRules {
		if r.segmented && !segmented {
			continue
		}
		if missing := r.missing(rec); len(missing) > 0 {
			return errors.NewValidationError(errors.ErrCodeMissingRequired, r.message, nil).
				WithContext(errors.ContextStep, r.step).
				WithContext(errors.ContextField, missing)
		}
	}
	return nil
}

// FailedStep returns the step a validation error points at.
func FailedStep(err error) (StepKey, bool) {
	appErr, ok := errors.As(err)
	if !ok {
		return "", false
	}
	step, ok := appErr.Context[errors.ContextStep].(StepKey)
	return step, ok
}

package wizard

import (
	"fmt"
	"strings"

	"hrintake/internal/application"
	"hrintake/internal/errors"
)

const maxPhoneDigits = 10

// DuplicatePhoneMessage is shown when the emergency number repeats the mobile number.
const DuplicatePhoneMessage = "Emergency number cannot be same as primary mobile number"

// normalize enforces entry-time rules for the field at p after it was written
// into next. prev is the record before the write.
func (r *Reducer) normalize(prev application.Record, next *application.Record, p Path) error {
	switch p.Key {
	case "fullName":
		if r.opts.UppercaseFullName {
			next.FullName = strings.ToUpper(next.FullName)
		}

	case "mobileNumber", "emergencyMobileNumber":
		next.MobileNumber = phoneDigits(next.MobileNumber)
		next.EmergencyMobileNumber = phoneDigits(next.EmergencyMobileNumber)
		if next.EmergencyMobileNumber != "" && next.EmergencyMobileNumber == next.MobileNumber {
			return errors.NewValidationError(errors.ErrCodeDuplicatePhone, DuplicatePhoneMessage, nil).
				WithContext(errors.ContextField, p.Key)
		}

	case "children":
		next.Children = next.Children.Clamp(0, 100)
	case "disabilityPercentage":
		next.DisabilityPercentage = next.DisabilityPercentage.Clamp(0, 100)
	case "totalWorkExperience":
		next.TotalWorkExperience = next.TotalWorkExperience.Clamp(0, 100)

	case "physicalDisability":
		if !next.PhysicalDisability {
			next.DisabilityPercentage = application.Number{}
		}

	case "nationality":
		switch next.Nationality {
		case application.NationalityIndian:
			next.CountryName = ""
		case application.NationalityForeigner:
			next.Region = ""
		}

	case "applicationType":
		if next.ExpectedSalary != "" && !application.IsSalaryBracket(next.ApplicationType, next.ExpectedSalary) {
			next.ExpectedSalary = ""
		}

	case "expectedSalary":
		if next.ExpectedSalary != "" && next.ApplicationType != "" &&
			!application.IsSalaryBracket(next.ApplicationType, next.ExpectedSalary) {
			return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
				fmt.Sprintf("%q is not a salary bracket for %s applications", next.ExpectedSalary, next.ApplicationType.Label()), nil).
				WithContext(errors.ContextField, p.Key)
		}

	case "educationQualifications":
		year := r.opts.Now().Year()
		for i := range next.EducationQualifications {
			if p.Indexed() && i != p.Index {
				continue
			}
			// the slice was already copied by setPath or decoded fresh
			next.EducationQualifications[i].YearOfPassing = next.EducationQualifications[i].YearOfPassing.Clamp(0, year)
		}

	case "workExperience":
		for i := range next.WorkExperience {
			if p.Indexed() && i != p.Index {
				continue
			}
			next.WorkExperience[i].NetMonthlySalary = next.WorkExperience[i].NetMonthlySalary.AtLeast(0)
		}

	case "references":
		for i := range next.References {
			if p.Indexed() && i != p.Index {
				continue
			}
			next.References[i].ContactNumber = phoneDigits(next.References[i].ContactNumber)
		}

	case "educationCategory":
		return normalizeCategory(prev.EducationCategory, &next.EducationCategory, p)
	}
	return nil
}

func normalizeCategory(prev application.EducationCategory, next *application.EducationCategory, p Path) error {
	switch {
	case p.Sub == "category" || p.Sub == "collegeType":
		if next.Category != prev.Category || next.CollegeType != prev.CollegeType {
			next.Details = application.ResolveDetailOptions(next.Category, next.CollegeType)[0]
		}
	case p.Sub == "details":
		if next.Details != "" && !application.IsDetailOption(next.Category, next.CollegeType, next.Details) {
			return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
				fmt.Sprintf("%q is not listed for %s / %s", next.Details, next.Category, next.CollegeType), nil).
				WithContext(errors.ContextField, p.String())
		}
	case !p.Nested():
		if !application.IsDetailOption(next.Category, next.CollegeType, next.Details) {
			next.Details = application.ResolveDetailOptions(next.Category, next.CollegeType)[0]
		}
	}

	if next.Category != application.TierOther {
		next.CategoryRemark = ""
	}
	if next.CollegeType != application.CollegeOther {
		next.CollegeRemark = ""
	}
	if next.Details != application.OtherOption {
		next.DetailsRemark = ""
	}
	return nil
}

// phoneDigits strips everything but digits and caps the length.
func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == maxPhoneDigits {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

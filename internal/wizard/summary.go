package wizard

import (
	"fmt"
	"strings"

	"hrintake/internal/application"
)

// SummaryItem is one labelled value of the review page.
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummarySection groups the values one step collects. StepIndex is the index
// an edit shortcut jumps to.
type SummarySection struct {
	Title     string        `json:"title"`
	Step      StepKey       `json:"step"`
	StepIndex int           `json:"stepIndex"`
	Items     []SummaryItem `json:"items"`
}

// Summary renders rec read-only, one section per configured step except review.
func Summary(rec application.Record, c *Controller) []SummarySection {
	var sections []SummarySection
	for i, key := range c.Steps() {
		items := summaryItems(rec, key)
		if items == nil {
			continue
		}
		sections = append(sections, SummarySection{
			Title:     key.Label(),
			Step:      key,
			StepIndex: i,
			Items:     items,
		})
	}
	return sections
}

func summaryItems(rec application.Record, key StepKey) []SummaryItem {
	switch key {
	case StepType:
		return []SummaryItem{{"Application Type", rec.ApplicationType.Label()}}

	case StepPersonal:
		items := []SummaryItem{
			{"Applying For", string(rec.ApplyingFor)},
			{"Subject / Department", rec.SubjectOrDepartment},
			{"Full Name", rec.FullName},
			{"Date of Birth", rec.DateOfBirth},
			{"Gender", string(rec.Gender)},
			{"Blood Group", string(rec.BloodGroup)},
			{"Category", string(rec.Category)},
			{"Religion", string(rec.Religion)},
			{"Nationality", string(rec.Nationality)},
		}
		if rec.Nationality == application.NationalityForeigner {
			items = append(items, SummaryItem{"Country", rec.CountryName})
		} else {
			items = append(items, SummaryItem{"State / UT", rec.Region})
		}
		items = append(items,
			SummaryItem{"Languages Known", strings.Join(rec.LanguagesKnown, ", ")},
			SummaryItem{"Physical Disability", yesNo(rec.PhysicalDisability)},
		)
		if rec.PhysicalDisability {
			items = append(items, SummaryItem{"Disability Percentage", percent(rec.DisabilityPercentage)})
		}
		items = append(items, SummaryItem{"Marital Status", string(rec.MaritalStatus)})
		if rec.MaritalStatus == application.MaritalMarried {
			items = append(items, SummaryItem{"Spouse Name", rec.SpouseName})
		}
		items = append(items,
			SummaryItem{"Children", rec.Children.String()},
			SummaryItem{"Area of Interest", rec.AreaOfInterest},
		)
		if rec.ApplicationType == application.ApplicationTypeCollege {
			items = append(items, categoryItems(rec.EducationCategory)...)
		}
		return items

	case StepFamily:
		return []SummaryItem{
			{"Father's Name", rec.FatherName},
			{"Father's Occupation", rec.FatherOccupation},
			{"Mother's Name", rec.MotherName},
			{"Mother's Occupation", rec.MotherOccupation},
			{"Address", withPincode(rec.Address, rec.AddressPincode)},
			{"Permanent Address", withPincode(rec.PermanentAddress, rec.PermanentAddressPincode)},
			{"Mobile", rec.MobileNumber},
			{"Emergency Mobile", rec.EmergencyMobileNumber},
			{"Email", rec.Email},
		}

	case StepEducation:
		items := make([]SummaryItem, 0, len(rec.EducationQualifications))
		for i, q := range rec.EducationQualifications {
			items = append(items, SummaryItem{
				Label: fmt.Sprintf("Qualification %d", i+1),
				Value: joinNonEmpty(" | ",
					string(q.Level), string(q.ExamType), string(q.Medium), q.Subject,
					q.BoardOrUniversity, q.InstitutionName, q.YearOfPassing.String(), q.PercentageOrCGPA),
			})
		}
		return items

	case StepWork:
		items := []SummaryItem{
			{"Experience", string(rec.ExperienceType)},
			{"Total Experience (years)", rec.TotalWorkExperience.String()},
			{"Expected Salary", rec.ExpectedSalary},
		}
		for _, w := range rec.WorkExperience {
			items = append(items, SummaryItem{
				Label: fmt.Sprintf("Employment %d", w.SerialNo),
				Value: joinNonEmpty(" | ",
					w.InstitutionName, w.Designation, dateRange(w.StartDate, w.EndDate),
					w.NetMonthlySalary.String(), w.ReasonOfLeaving),
			})
		}
		return items

	case StepReferences:
		items := make([]SummaryItem, 0, len(rec.References))
		for i, ref := range rec.References {
			items = append(items, SummaryItem{
				Label: fmt.Sprintf("Reference %d", i+1),
				Value: joinNonEmpty(" | ", ref.Name, ref.Designation, ref.ContactNumber),
			})
		}
		return items

	case StepUploads:
		return []SummaryItem{
			{"Photo", attachmentName(rec.Photo)},
			{"Resume", attachmentName(rec.Resume)},
		}

	case StepSocial:
		return []SummaryItem{
			{"LinkedIn", rec.SocialMedia.LinkedIn},
			{"Facebook", rec.SocialMedia.Facebook},
			{"Instagram", rec.SocialMedia.Instagram},
		}

	case StepReview:
		return nil
	}
	return nil
}

func categoryItems(c application.EducationCategory) []SummaryItem {
	withRemark := func(value, remark string) string {
		if remark == "" {
			return value
		}
		return value + " (" + remark + ")"
	}
	return []SummaryItem{
		{"Institution Tier", withRemark(string(c.Category), c.CategoryRemark)},
		{"College Type", withRemark(string(c.CollegeType), c.CollegeRemark)},
		{"Institution Details", withRemark(c.Details, c.DetailsRemark)},
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func percent(n application.Number) string {
	if !n.IsSet() {
		return ""
	}
	return n.String() + "%"
}

func withPincode(address, pincode string) string {
	if pincode == "" {
		return address
	}
	return joinNonEmpty(" - ", address, pincode)
}

func dateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + " to " + end
}

func attachmentName(a *application.Attachment) string {
	if a == nil {
		return "Not uploaded"
	}
	return a.Filename
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

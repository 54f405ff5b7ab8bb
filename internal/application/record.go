package application

import (
	"net/http"
)

// Record is the working state of one application in progress.
// Field order matches the order parts are written in a submission. Attachments
// are not part of the JSON form; the form tag names their multipart field.
type Record struct {
	ApplicationType ApplicationType `json:"applicationType"`

	Photo  *Attachment `json:"-" form:"photo"`
	Resume *Attachment `json:"-" form:"resume"`

	ApplyingFor         Role   `json:"applyingFor"`
	SubjectOrDepartment string `json:"subjectOrDepartment"`

	FullName         string `json:"fullName"`
	FatherName       string `json:"fatherName"`
	FatherOccupation string `json:"fatherOccupation"`
	MotherName       string `json:"motherName"`
	MotherOccupation string `json:"motherOccupation"`

	DateOfBirth string     `json:"dateOfBirth"`
	Gender      Gender     `json:"gender"`
	BloodGroup  BloodGroup `json:"bloodGroup"`

	Category       SocialCategory `json:"category"`
	Religion       Religion       `json:"religion"`
	Nationality    Nationality    `json:"nationality"`
	Region         string         `json:"region"`
	CountryName    string         `json:"countryName"`
	LanguagesKnown Languages      `json:"languagesKnown"`

	PhysicalDisability   bool          `json:"physicalDisability"`
	DisabilityPercentage Number        `json:"disabilityPercentage"`
	MaritalStatus        MaritalStatus `json:"maritalStatus"`
	SpouseName           string        `json:"spouseName"`
	Children             Number        `json:"children"`

	Address                 string `json:"address"`
	AddressPincode          string `json:"addressPincode"`
	PermanentAddress        string `json:"permanentAddress"`
	PermanentAddressPincode string `json:"permanentAddressPincode"`

	MobileNumber          string `json:"mobileNumber"`
	EmergencyMobileNumber string `json:"emergencyMobileNumber"`
	Email                 string `json:"email"`

	AreaOfInterest string         `json:"areaOfInterest"`
	ExperienceType ExperienceType `json:"experienceType"`

	EducationQualifications []EducationQualification `json:"educationQualifications"`
	EducationCategory       EducationCategory        `json:"educationCategory"`

	ExpectedSalary string `json:"expectedSalary"`

	TotalWorkExperience Number           `json:"totalWorkExperience"`
	WorkExperience      []WorkExperience `json:"workExperience"`

	SocialMedia SocialMedia `json:"socialMedia"`
	References  []Reference `json:"references"`
}

type EducationQualification struct {
	Level             EducationLevel `json:"level"`
	ExamType          ExamType       `json:"examType"`
	Medium            Medium         `json:"medium"`
	Subject           string         `json:"subject"`
	BoardOrUniversity string         `json:"boardOrUniversity"`
	InstitutionName   string         `json:"institutionName"`
	YearOfPassing     Number         `json:"yearOfPassing"`
	PercentageOrCGPA  string         `json:"percentageOrCGPA"`
}

// EducationCategory classifies a college applicant's institution. Details must be
// one of ResolveDetailOptions(Category, CollegeType).
type EducationCategory struct {
	Category       Tier        `json:"category"`
	CategoryRemark string      `json:"categoryRemark"`
	CollegeType    CollegeType `json:"collegeType"`
	CollegeRemark  string      `json:"collegeRemark"`
	Details        string      `json:"details"`
	DetailsRemark  string      `json:"detailsRemark"`
}

// Complete reports whether tier, college type and detail are all filled in.
func (c EducationCategory) Complete() bool {
	return c.Category != "" && c.CollegeType != "" && c.Details != ""
}

type WorkExperience struct {
	SerialNo         int    `json:"serialNo"`
	InstitutionName  string `json:"institutionName"`
	Designation      string `json:"designation"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	NetMonthlySalary Number `json:"netMonthlySalary"`
	ReasonOfLeaving  string `json:"reasonOfLeaving"`
}

type SocialMedia struct {
	LinkedIn  string `json:"linkedin"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

type Reference struct {
	Name          string `json:"name"`
	Designation   string `json:"designation"`
	ContactNumber string `json:"contactNumber"`
}

// Attachment is an uploaded file carried as an opaque blob.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewAttachment sniffs the content type when none is given.
func NewAttachment(filename, contentType string, data []byte) *Attachment {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &Attachment{Filename: filename, ContentType: contentType, Data: data}
}

func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Templates for user-extensible lists.

func NewEducationQualification() EducationQualification {
	return EducationQualification{
		Level:    "Graduation",
		ExamType: "Regular",
		Medium:   "English",
	}
}

func NewWorkExperience(serialNo int) WorkExperience {
	return WorkExperience{SerialNo: serialNo}
}

func NewReference() Reference {
	return Reference{}
}

// DefaultEducationCategory is the preselected institution classification.
func DefaultEducationCategory() EducationCategory {
	return EducationCategory{
		Category:    Tier1,
		CollegeType: CollegeEducation,
		Details:     ResolveDetailOptions(Tier1, CollegeEducation)[0],
	}
}

// NewRecord returns the record a fresh wizard starts from.
func NewRecord() Record {
	return Record{
		LanguagesKnown:          Languages{},
		MaritalStatus:           MaritalUnmarried,
		Children:                NumberOf(0),
		EducationQualifications: []EducationQualification{NewEducationQualification()},
		EducationCategory:       DefaultEducationCategory(),
		TotalWorkExperience:     NumberOf(0),
		WorkExperience:          []WorkExperience{NewWorkExperience(1)},
		References:              []Reference{NewReference()},
	}
}

// Submitted is an application as listed by the intake API.
type Submitted struct {
	ID        string `json:"_id"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Status    string `json:"status,omitempty"`
	PhotoURL  string `json:"photo,omitempty"`
	ResumeURL string `json:"resume,omitempty"`

	Record
}

package application

import "slices"

// ApplicationType segments the intake form by the kind of institution applied to.
type ApplicationType string

const (
	ApplicationTypeSchool         ApplicationType = "school"
	ApplicationTypeCollege        ApplicationType = "college"
	ApplicationTypeAdministration ApplicationType = "others/administration"
)

func ApplicationTypes() []ApplicationType {
	return []ApplicationType{ApplicationTypeSchool, ApplicationTypeCollege, ApplicationTypeAdministration}
}

func (t ApplicationType) Valid() bool { return slices.Contains(ApplicationTypes(), t) }

// Label returns the human readable name shown in summaries.
func (t ApplicationType) Label() string {
	switch t {
	case ApplicationTypeSchool:
		return "School"
	case ApplicationTypeCollege:
		return "College"
	case ApplicationTypeAdministration:
		return "Others / Administration"
	default:
		return string(t)
	}
}

// Role is the "applying for" selection. The same values key the aggregate counts.
type Role string

const (
	RoleTeaching    Role = "Teaching"
	RoleNonTeaching Role = "Non Teaching"
	RoleAdmin       Role = "Admin"
)

func Roles() []Role { return []Role{RoleTeaching, RoleNonTeaching, RoleAdmin} }

func (r Role) Valid() bool { return slices.Contains(Roles(), r) }

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func Genders() []Gender { return []Gender{GenderMale, GenderFemale} }

func (g Gender) Valid() bool { return slices.Contains(Genders(), g) }

// SocialCategory is the reservation category of the applicant.
type SocialCategory string

const (
	CategoryGeneral SocialCategory = "General"
	CategoryOBC     SocialCategory = "OBC"
	CategorySC      SocialCategory = "SC"
	CategoryST      SocialCategory = "ST"
)

func SocialCategories() []SocialCategory {
	return []SocialCategory{CategoryGeneral, CategoryOBC, CategorySC, CategoryST}
}

func (c SocialCategory) Valid() bool { return slices.Contains(SocialCategories(), c) }

type Religion string

func Religions() []Religion {
	return []Religion{"Hindu", "Muslim", "Sikh", "Christian", "Buddhist", "Jain", "Other"}
}

func (r Religion) Valid() bool { return slices.Contains(Religions(), r) }

type Nationality string

const (
	NationalityIndian    Nationality = "Indian"
	NationalityForeigner Nationality = "Foreigner"
)

func Nationalities() []Nationality { return []Nationality{NationalityIndian, NationalityForeigner} }

func (n Nationality) Valid() bool { return slices.Contains(Nationalities(), n) }

type BloodGroup string

func BloodGroups() []BloodGroup {
	return []BloodGroup{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
}

func (b BloodGroup) Valid() bool { return slices.Contains(BloodGroups(), b) }

type MaritalStatus string

const (
	MaritalUnmarried MaritalStatus = "Unmarried"
	MaritalMarried   MaritalStatus = "Married"
	MaritalDivorced  MaritalStatus = "Divorced"
	MaritalWidow     MaritalStatus = "Widow"
	MaritalWidower   MaritalStatus = "Widower"
)

func MaritalStatuses() []MaritalStatus {
	return []MaritalStatus{MaritalUnmarried, MaritalMarried, MaritalDivorced, MaritalWidow, MaritalWidower}
}

func (m MaritalStatus) Valid() bool { return slices.Contains(MaritalStatuses(), m) }

type ExperienceType string

const (
	ExperienceFresher     ExperienceType = "fresher"
	ExperienceExperienced ExperienceType = "experienced"
)

func ExperienceTypes() []ExperienceType {
	return []ExperienceType{ExperienceFresher, ExperienceExperienced}
}

func (e ExperienceType) Valid() bool { return slices.Contains(ExperienceTypes(), e) }

type EducationLevel string

func EducationLevels() []EducationLevel {
	return []EducationLevel{"10th", "12th", "Graduation", "Post Graduation", "PhD"}
}

func (l EducationLevel) Valid() bool { return slices.Contains(EducationLevels(), l) }

type ExamType string

func ExamTypes() []ExamType { return []ExamType{"Regular", "Correspondence", "Private"} }

func (e ExamType) Valid() bool { return slices.Contains(ExamTypes(), e) }

type Medium string

func Mediums() []Medium { return []Medium{"English", "Hindi"} }

func (m Medium) Valid() bool { return slices.Contains(Mediums(), m) }

// Tier ranks the applicant's higher-education institution.
type Tier string

const (
	Tier1     Tier = "Tier 1"
	Tier2     Tier = "Tier 2"
	Tier3     Tier = "Tier 3"
	Tier4     Tier = "Tier 4"
	TierOther Tier = "Other"
)

func Tiers() []Tier { return []Tier{Tier1, Tier2, Tier3, Tier4, TierOther} }

func (t Tier) Valid() bool { return slices.Contains(Tiers(), t) }

type CollegeType string

const (
	CollegeEngineering CollegeType = "Engineering"
	CollegeDental      CollegeType = "Dental"
	CollegeNursing     CollegeType = "Nursing"
	CollegeLaw         CollegeType = "Law"
	CollegePharmacy    CollegeType = "Pharmacy"
	CollegeEducation   CollegeType = "Education"
	CollegeCommerce    CollegeType = "Commerce"
	CollegeArts        CollegeType = "Arts"
	CollegeScience     CollegeType = "Science"
	CollegeManagement  CollegeType = "Management"
	CollegeOther       CollegeType = "Other"
)

func CollegeTypes() []CollegeType {
	return []CollegeType{
		CollegeEngineering, CollegeDental, CollegeNursing, CollegeLaw, CollegePharmacy,
		CollegeEducation, CollegeCommerce, CollegeArts, CollegeScience, CollegeManagement,
		CollegeOther,
	}
}

func (c CollegeType) Valid() bool { return slices.Contains(CollegeTypes(), c) }

// EmailStatus is the decision communicated to an applicant by HR.
type EmailStatus string

const (
	StatusSelected  EmailStatus = "Selected"
	StatusRejected  EmailStatus = "Rejected"
	StatusInterview EmailStatus = "Interview"
)

func EmailStatuses() []EmailStatus {
	return []EmailStatus{StatusSelected, StatusRejected, StatusInterview}
}

func (s EmailStatus) Valid() bool { return slices.Contains(EmailStatuses(), s) }

// OtherOption is the catch-all entry that unlocks a free-text remark.
const OtherOption = "Other"

package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/application"
	"hrintake/internal/errors"
)

func testReducer() *Reducer {
	return NewReducer(Options{
		UppercaseFullName: true,
		Now:               func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func reduce(t *testing.T, r *Reducer, rec application.Record, actions ...Action) application.Record {
	t.Helper()
	out, err := r.ReduceAll(rec, actions)
	require.NoError(t, err)
	return out
}

func TestNumericFieldsClampOnEntry(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		read     func(application.Record) application.Number
		expected application.Number
	}{
		{"disability above", Set("disabilityPercentage", 150), func(r application.Record) application.Number { return r.DisabilityPercentage }, application.NumberOf(100)},
		{"disability below", Set("disabilityPercentage", "-5"), func(r application.Record) application.Number { return r.DisabilityPercentage }, application.NumberOf(0)},
		{"children", Set("children", 101), func(r application.Record) application.Number { return r.Children }, application.NumberOf(100)},
		{"total experience", Set("totalWorkExperience", -3), func(r application.Record) application.Number { return r.TotalWorkExperience }, application.NumberOf(0)},
		{"blank clears", Set("children", ""), func(r application.Record) application.Number { return r.Children }, application.Number{}},
		{"year of passing", Set("educationQualifications[0].yearOfPassing", 2031), func(r application.Record) application.Number {
			return r.EducationQualifications[0].YearOfPassing
		}, application.NumberOf(2025)},
		{"salary", Set("workExperience[0].netMonthlySalary", -100), func(r application.Record) application.Number {
			return r.WorkExperience[0].NetMonthlySalary
		}, application.NumberOf(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := reduce(t, testReducer(), application.NewRecord(), tt.action)
			assert.Equal(t, tt.expected, tt.read(out))
		})
	}
}

func TestRemovingLastItemIsNoOp(t *testing.T) {
	r := testReducer()
	rec := application.NewRecord()

	for _, key := range []string{"educationQualifications", "workExperience", "references"} {
		t.Run(key, func(t *testing.T) {
			out := reduce(t, r, rec, RemoveItem(key, 0), RemoveItem(key, 0))
			assert.Equal(t, rec, out)

			grown := reduce(t, r, rec, AddItem(key, nil), RemoveItem(key, 0), RemoveItem(key, 0))
			switch key {
			case "educationQualifications":
				assert.Len(t, grown.EducationQualifications, 1)
			case "workExperience":
				assert.Len(t, grown.WorkExperience, 1)
			case "references":
				assert.Len(t, grown.References, 1)
			}
		})
	}

	_, err := r.Reduce(rec, RemoveItem("references", 3))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidField))
}

func TestWorkSerialNumbersAreNotRenumbered(t *testing.T) {
	r := testReducer()
	out := reduce(t, r, application.NewRecord(),
		AddItem("workExperience", map[string]any{"designation": "Lecturer", "serialNo": 99}),
		AddItem("workExperience", nil),
		RemoveItem("workExperience", 0),
		AddItem("workExperience", nil),
	)

	serials := make([]int, 0, len(out.WorkExperience))
	for _, w := range out.WorkExperience {
		serials = append(serials, w.SerialNo)
	}
	assert.Equal(t, []int{2, 3, 3}, serials)
	assert.Equal(t, "Lecturer", out.WorkExperience[0].Designation)
}

func TestTierOrTypeChangeResetsDetails(t *testing.T) {
	r := testReducer()
	rec := application.NewRecord()

	for _, tier := range application.Tiers() {
		for _, collegeType := range application.CollegeTypes() {
			out := reduce(t, r, rec,
				Set("educationCategory.category", string(tier)),
				Set("educationCategory.collegeType", string(collegeType)),
			)
			expected := application.ResolveDetailOptions(tier, collegeType)[0]
			assert.Equal(t, expected, out.EducationCategory.Details, "%s/%s", tier, collegeType)
		}
	}
}

func TestDetailsRemarkFollowsOther(t *testing.T) {
	r := testReducer()
	out := reduce(t, r, application.NewRecord(),
		Set("educationCategory.category", "Tier 4"),
		Set("educationCategory.collegeType", "Engineering"),
		Set("educationCategory.details", "Other"),
		Set("educationCategory.detailsRemark", "Regional Polytechnic"),
	)
	assert.Equal(t, "Regional Polytechnic", out.EducationCategory.DetailsRemark)

	out = reduce(t, r, out, Set("educationCategory.details", "Others (non-accredited or low-ranked)"))
	assert.Empty(t, out.EducationCategory.DetailsRemark)

	_, err := r.Reduce(out, Set("educationCategory.details", "IITs"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFieldValue))
}

func TestPhoneRules(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(), Set("mobileNumber", "+91 98765-43210 ext"))
	assert.Equal(t, "9198765432", rec.MobileNumber)

	out, err := r.Reduce(rec, Set("emergencyMobileNumber", "9198765432"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicatePhone))
	assert.Contains(t, err.Error(), DuplicatePhoneMessage)
	assert.Empty(t, out.EmergencyMobileNumber)

	rec = reduce(t, r, rec, Set("references[0].contactNumber", "(080) 1234 5678"))
	assert.Equal(t, "0801234567", rec.References[0].ContactNumber)
}

func TestFullNameUppercaseIsConfigurable(t *testing.T) {
	upper := reduce(t, testReducer(), application.NewRecord(), Set("fullName", "John Doe"))
	assert.Equal(t, "JOHN DOE", upper.FullName)

	plain := reduce(t, NewReducer(Options{}), application.NewRecord(), Set("fullName", "John Doe"))
	assert.Equal(t, "John Doe", plain.FullName)
}

func TestNationalityClearsOtherLocation(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(),
		Set("region", "Kerala"),
		Set("countryName", "Nepal"),
		Set("nationality", "Foreigner"),
	)
	assert.Empty(t, rec.Region)
	assert.Equal(t, "Nepal", rec.CountryName)

	rec = reduce(t, r, rec, Set("region", "Goa"), Set("nationality", "Indian"))
	assert.Empty(t, rec.CountryName)
	assert.Equal(t, "Goa", rec.Region)
}

func TestDisabilityOffClearsPercentage(t *testing.T) {
	rec := reduce(t, testReducer(), application.NewRecord(),
		Set("physicalDisability", true),
		Set("disabilityPercentage", 40),
		Set("physicalDisability", "false"),
	)
	assert.False(t, rec.PhysicalDisability)
	assert.False(t, rec.DisabilityPercentage.IsSet())
}

func TestEnumFieldsRejectUnknownValues(t *testing.T) {
	r := testReducer()
	rec := application.NewRecord()

	_, err := r.Reduce(rec, Set("applicationType", "university"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFieldValue))

	_, err = r.Reduce(rec, Set("educationQualifications[0].medium", "French"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFieldValue))

	out := reduce(t, r, rec, Set("gender", "Female"), Set("gender", ""))
	assert.Empty(t, out.Gender)
}

func TestSalaryBracketTracksApplicationType(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(),
		Set("applicationType", "college"),
		Set("expectedSalary", "8 - 11 LPA"),
	)
	assert.Equal(t, "8 - 11 LPA", rec.ExpectedSalary)

	_, err := r.Reduce(rec, Set("expectedSalary", "0-50000"))
	assert.Error(t, err)

	rec = reduce(t, r, rec, Set("applicationType", "school"))
	assert.Empty(t, rec.ExpectedSalary)
}

func TestLanguages(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(), SetLanguages(" English, Hindi ,, Tamil "))
	assert.Equal(t, application.Languages{"English", "Hindi", "Tamil"}, rec.LanguagesKnown)

	rec = reduce(t, r, rec, Set("languagesKnown", []any{"Urdu", " "}))
	assert.Equal(t, application.Languages{"Urdu"}, rec.LanguagesKnown)
}

func TestReduceSharesUntouchedBranches(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(), AddItem("references", map[string]any{"name": "A"}))

	out := reduce(t, r, rec, Set("workExperience[0].designation", "Clerk"))

	assert.Same(t, &rec.References[0], &out.References[0])
	assert.Same(t, &rec.EducationQualifications[0], &out.EducationQualifications[0])
	assert.NotSame(t, &rec.WorkExperience[0], &out.WorkExperience[0])
	assert.Empty(t, rec.WorkExperience[0].Designation)
	assert.Equal(t, "Clerk", out.WorkExperience[0].Designation)

	appended := reduce(t, r, rec, AddItem("references", nil))
	assert.Len(t, rec.References, 2)
	assert.Len(t, appended.References, 3)
}

func TestReduceRejectsBadActions(t *testing.T) {
	r := testReducer()
	rec := application.NewRecord()

	tests := []struct {
		name   string
		action Action
		code   string
	}{
		{"unknown type", Action{Type: "RENAME", Path: "fullName"}, errors.ErrCodeInvalidRequest},
		{"unknown field", Set("nickname", "x"), errors.ErrCodeInvalidField},
		{"nested path for set field", Action{Type: ActionSetField, Path: "socialMedia.linkedin"}, errors.ErrCodeInvalidField},
		{"plain path for set nested", Action{Type: ActionSetNested, Path: "fullName"}, errors.ErrCodeInvalidField},
		{"index out of range", Set("references[4].name", "x"), errors.ErrCodeInvalidField},
		{"not a list", AddItem("socialMedia", nil), errors.ErrCodeInvalidField},
		{"empty list replacement", Set("references", []any{}), errors.ErrCodeInvalidFieldValue},
		{"non numeric", Set("children", "many"), errors.ErrCodeInvalidFieldValue},
		{"huge string", Set("workExperience[0].netMonthlySalary", "1e30"), errors.ErrCodeInvalidFieldValue},
		{"huge float", Set("workExperience[0].netMonthlySalary", 1e30), errors.ErrCodeInvalidFieldValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Reduce(rec, tt.action)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
			assert.Equal(t, rec, out)
		})
	}
}

func TestReduceAllStopsAtFirstFailure(t *testing.T) {
	r := testReducer()
	rec := reduce(t, r, application.NewRecord(), Set("email", "a@b.c"))

	out, err := r.ReduceAll(rec, []Action{Set("fullName", "x"), Set("gender", "robot")})
	require.Error(t, err)
	assert.Equal(t, rec, out)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, 1, appErr.Context["action_index"])
}

func TestValidateOrder(t *testing.T) {
	full := reduce(t, testReducer(), application.NewRecord(),
		Set("fullName", "JOHN DOE"),
		Set("email", "j@x.com"),
		Set("mobileNumber", "9999999999"),
		Set("dateOfBirth", "2000-01-01"),
		Set("applicationType", "college"),
		Set("applyingFor", "Teaching"),
		Set("gender", "Male"),
		Set("category", "General"),
	)
	require.NoError(t, Validate(full, true))

	tests := []struct {
		name      string
		mutate    func(*application.Record)
		segmented bool
		step      StepKey
		message   string
	}{
		{"empty record", func(r *application.Record) { *r = application.NewRecord() }, true, StepPersonal, "Please fill required fields: Full Name, Email, Mobile, Date of Birth."},
		{"type", func(r *application.Record) { r.ApplicationType = "" }, true, StepType, "Please choose application type (School or College)."},
		{"applying for", func(r *application.Record) { r.ApplyingFor = "" }, true, StepPersonal, "Please choose 'Applying For' option."},
		{"gender", func(r *application.Record) { r.Gender = "" }, true, StepPersonal, "Please choose Gender and Category."},
		{"college category", func(r *application.Record) { r.EducationCategory.Details = "" }, true, StepPersonal, "Please complete the Education Category fields."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := full
			tt.mutate(&rec)
			err := Validate(rec, tt.segmented)
			require.Error(t, err)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, appErr.Message)
			step, ok := FailedStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
		})
	}

	school := full
	school.ApplicationType = application.ApplicationTypeSchool
	school.EducationCategory = application.EducationCategory{}
	assert.NoError(t, Validate(school, true))

	unsegmented := full
	unsegmented.ApplicationType = ""
	assert.NoError(t, Validate(unsegmented, false))
}

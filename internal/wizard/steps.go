package wizard

import (
	"fmt"
	"slices"
)

// StepKey names a wizard step independently of its position.
type StepKey string

const (
	StepType       StepKey = "type"
	StepPersonal   StepKey = "personal"
	StepFamily     StepKey = "family"
	StepEducation  StepKey = "education"
	StepWork       StepKey = "work"
	StepReferences StepKey = "references"
	StepUploads    StepKey = "uploads"
	StepSocial     StepKey = "social"
	StepReview     StepKey = "review"
)

var stepLabels = map[StepKey]string{
	StepType:       "Application Type",
	StepPersonal:   "Personal Details",
	StepFamily:     "Family & Contact",
	StepEducation:  "Education",
	StepWork:       "Work Experience",
	StepReferences: "References",
	StepUploads:    "Uploads",
	StepSocial:     "Social Media",
	StepReview:     "Review & Submit",
}

// DefaultSteps returns the standard step order.
func DefaultSteps() []StepKey {
	return []StepKey{
		StepType, StepPersonal, StepFamily, StepEducation, StepWork,
		StepReferences, StepUploads, StepSocial, StepReview,
	}
}

func (k StepKey) Valid() bool {
	_, ok := stepLabels[k]
	return ok
}

func (k StepKey) Label() string {
	if label, ok := stepLabels[k]; ok {
		return label
	}
	return string(k)
}

// ParseSteps converts configured step names, rejecting unknown or repeated keys.
func ParseSteps(names []string) ([]StepKey, error) {
	keys := make([]StepKey, 0, len(names))
	for _, name := range names {
		key := StepKey(name)
		if !key.Valid() {
			return nil, fmt.Errorf("unknown wizard step %q", name)
		}
		if slices.Contains(keys, key) {
			return nil, fmt.Errorf("wizard step %q listed twice", name)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// fieldSteps maps each top-level record field to the step that renders it.
var fieldSteps = map[string]StepKey{
	"applicationType": StepType,

	"educationCategory":    StepPersonal,
	"applyingFor":          StepPersonal,
	"subjectOrDepartment":  StepPersonal,
	"fullName":             StepPersonal,
	"dateOfBirth":          StepPersonal,
	"gender":               StepPersonal,
	"bloodGroup":           StepPersonal,
	"category":             StepPersonal,
	"religion":             StepPersonal,
	"nationality":          StepPersonal,
	"region":               StepPersonal,
	"countryName":          StepPersonal,
	"languagesKnown":       StepPersonal,
	"physicalDisability":   StepPersonal,
	"disabilityPercentage": StepPersonal,
	"maritalStatus":        StepPersonal,
	"spouseName":           StepPersonal,
	"children":             StepPersonal,
	"areaOfInterest":       StepPersonal,

	"fatherName":              StepFamily,
	"fatherOccupation":        StepFamily,
	"motherName":              StepFamily,
	"motherOccupation":        StepFamily,
	"address":                 StepFamily,
	"addressPincode":          StepFamily,
	"permanentAddress":        StepFamily,
	"permanentAddressPincode": StepFamily,
	"mobileNumber":            StepFamily,
	"emergencyMobileNumber":   StepFamily,
	"email":                   StepFamily,

	"educationQualifications": StepEducation,

	"experienceType":      StepWork,
	"workExperience":      StepWork,
	"totalWorkExperience": StepWork,
	"expectedSalary":      StepWork,

	"references": StepReferences,

	"photo":  StepUploads,
	"resume": StepUploads,

	"socialMedia": StepSocial,
}

// OwnerOf returns the step that renders the given top-level field.
func OwnerOf(field string) (StepKey, bool) {
	key, ok := fieldSteps[field]
	return key, ok
}

// Controller holds the current step index. Navigation never leaves [0, Len-1].
// It is not safe for concurrent use; Session serializes access.
type Controller struct {
	steps []StepKey
	index int
}

// NewController builds a controller over keys, falling back to DefaultSteps when keys is empty.
func NewController(keys []StepKey) *Controller {
	if len(keys) == 0 {
		keys = DefaultSteps()
	}
	return &Controller{steps: slices.Clone(keys)}
}

func (c *Controller) Advance() int {
	c.index = min(c.index+1, len(c.steps)-1)
	return c.index
}

func (c *Controller) Retreat() int {
	c.index = max(c.index-1, 0)
	return c.index
}

// JumpTo moves to index, clamped into range.
func (c *Controller) JumpTo(index int) int {
	c.index = max(0, min(index, len(c.steps)-1))
	return c.index
}

// JumpToKey moves to the named step. It reports false when the step is not configured.
func (c *Controller) JumpToKey(key StepKey) (int, bool) {
	index, ok := c.IndexOf(key)
	if !ok {
		return c.index, false
	}
	c.index = index
	return index, true
}

func (c *Controller) IndexOf(key StepKey) (int, bool) {
	index := slices.Index(c.steps, key)
	return index, index >= 0
}

func (c *Controller) Reset() { c.index = 0 }

func (c *Controller) Index() int { return c.index }

func (c *Controller) Current() StepKey { return c.steps[c.index] }

func (c *Controller) Len() int { return len(c.steps) }

func (c *Controller) IsFinal() bool { return c.index == len(c.steps)-1 }

func (c *Controller) Steps() []StepKey { return slices.Clone(c.steps) }

package application

import "slices"

var indianRegions = []string{
	"Andhra Pradesh",
	"Arunachal Pradesh",
	"Assam",
	"Bihar",
	"Chhattisgarh",
	"Goa",
	"Gujarat",
	"Haryana",
	"Himachal Pradesh",
	"Jharkhand",
	"Karnataka",
	"Kerala",
	"Madhya Pradesh",
	"Maharashtra",
	"Manipur",
	"Meghalaya",
	"Mizoram",
	"Nagaland",
	"Odisha",
	"Punjab",
	"Rajasthan",
	"Sikkim",
	"Tamil Nadu",
	"Telangana",
	"Tripura",
	"Uttar Pradesh",
	"Uttarakhand",
	"West Bengal",
	"Andaman and Nicobar Islands",
	"Chandigarh",
	"Dadra and Nagar Haveli and Daman and Diu",
	"Delhi",
	"Jammu and Kashmir",
	"Ladakh",
	"Lakshadweep",
	"Puducherry",
}

// IndianRegions lists the states and union territories offered for Indian applicants.
func IndianRegions() []string { return slices.Clone(indianRegions) }

func IsIndianRegion(region string) bool { return slices.Contains(indianRegions, region) }

var schoolSalaryBrackets = []string{
	"0-50000",
	"50000-100000",
	"100000-200000",
	"200000-300000",
	"300000-400000",
	"400000-500000",
	"500000-600000",
	"600000-700000",
	"700000-800000",
	"800000-900000",
	"900000-1000000",
}

var lpaSalaryBrackets = []string{
	"Up to 3 LPA",
	"4 - 7 LPA",
	"8 - 11 LPA",
	"12 - 15 LPA",
	"16 - 20 LPA",
	"21 - 25 LPA",
	"25 LPA Above",
}

// SalaryBrackets returns the expected-salary choices for an application type.
// An unset type has no brackets; the form asks for the type first.
func SalaryBrackets(t ApplicationType) []string {
	switch t {
	case ApplicationTypeSchool:
		return slices.Clone(schoolSalaryBrackets)
	case ApplicationTypeCollege, ApplicationTypeAdministration:
		return slices.Clone(lpaSalaryBrackets)
	default:
		return nil
	}
}

// IsSalaryBracket reports whether bracket is offered for t.
func IsSalaryBracket(t ApplicationType, bracket string) bool {
	return slices.Contains(SalaryBrackets(t), bracket)
}

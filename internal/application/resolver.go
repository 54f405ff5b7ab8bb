package application

import "slices"

var nationalInstitutions = []string{
	"Central Universities",
	"NIRF Top Ranked",
	"NAAC A++ Institutions",
	"State Universities",
	"Private Universities",
	"Autonomous Colleges",
	OtherOption,
}

// detailOptions is keyed by college type only and backs tiers without their own table.
var detailOptions = map[CollegeType][]string{
	CollegeEngineering: {
		"IITs",
		"IISc",
		"IIIT-H",
		"NITs",
		"NIRF Top Ranked",
		"Govt Regional Engineering Colleges",
		"NBA/NAAC A/A+ Accredited",
		"NAAC Accredited Institutions",
		"Non-accredited Institutions",
		OtherOption,
	},
	CollegeDental: {
		"AIIMS",
		"PGI",
		"NIRF Top Ranked Dental Colleges",
		"Govt Dental Colleges",
		"NAAC A/A+ Accredited",
		"Private Dental Colleges",
		"Non-accredited Institutions",
		OtherOption,
	},
	CollegeNursing: {
		"Nationally Prestigious Institutions",
		"Government Institutions",
		"Private Accredited Institutions",
		"Non-accredited Institutions",
		OtherOption,
	},
	CollegeLaw: {
		"National Law Universities (NLUs)",
		"NIRF Top Ranked Law Colleges",
		"Govt Law Colleges",
		"Private Law Colleges",
		"Non-accredited Institutions",
		OtherOption,
	},
	CollegePharmacy: {
		"NIPERs",
		"Govt Pharmacy Colleges",
		"PCI Approved Institutions",
		"Private PCI Recognized Universities",
		"Non-accredited Institutions",
		OtherOption,
	},
	CollegeEducation:  nationalInstitutions,
	CollegeCommerce:   nationalInstitutions,
	CollegeArts:       nationalInstitutions,
	CollegeScience:    nationalInstitutions,
	CollegeManagement: append([]string{"IIMs"}, nationalInstitutions...),
	CollegeOther:      {OtherOption},
}

func tierTable(general []string, overrides map[CollegeType][]string) map[CollegeType][]string {
	table := map[CollegeType][]string{
		CollegeEducation:  general,
		CollegeCommerce:   general,
		CollegeArts:       general,
		CollegeScience:    general,
		CollegeManagement: general,
		CollegeOther:      {OtherOption},
	}
	for collegeType, options := range overrides {
		table[collegeType] = options
	}
	return table
}

var detailsByTier = map[Tier]map[CollegeType][]string{
	Tier1: tierTable(
		[]string{"Central Universities", "NIRF Top 30", "NAAC A++"},
		map[CollegeType][]string{
			CollegeEngineering: {"IITs", "IISc", "IIIT-H", "NITs (Top 10)", "NIRF Top 30"},
			CollegeDental:      {"AIIMS", "PGI", "NIRF Top 10 Dental Colleges"},
			CollegeNursing:     {"Nationally Prestigious Institutions"},
			CollegeLaw:         {"National Law Universities (NLUs)", "NIRF Top 10 Law Colleges"},
			CollegePharmacy:    {"NIPERs"},
		},
	),
	Tier2: tierTable(
		[]string{"State Universities", "NAAC A/A+"},
		map[CollegeType][]string{
			CollegeEngineering: {"Govt Regional Engineering Colleges", "NBA/NAAC A/A+"},
			CollegeDental:      {"Govt Dental Colleges", "NAAC A/A+"},
			CollegeNursing:     {"Government & Accredited Institutions"},
			CollegeLaw:         {"Govt Law Colleges", "NAAC A/A+"},
			CollegePharmacy:    {"State Govt Pharmacy Colleges", "PCI approved"},
		},
	),
	Tier3: tierTable(
		[]string{"Autonomous Colleges (NAAC B+)", "NAAC A+"},
		map[CollegeType][]string{
			CollegeEngineering: {"NAAC Accredited Institutions"},
			CollegeDental:      {"Private Dental Colleges (NAAC B+ or above)"},
			CollegeNursing:     {"Private Colleges with Accreditation"},
			CollegeLaw:         {"Private Law Colleges (NAAC B+)"},
			CollegePharmacy:    {"PCI recognized private universities (NAAC B+)", "Others / Non-accredited Institutions"},
		},
	),
	Tier4: tierTable(
		[]string{"Others (non-accredited or low-ranked)", OtherOption},
		map[CollegeType][]string{
			CollegeEngineering: {"Others (non-accredited or low-ranked)", OtherOption},
			CollegeDental:      {"Others (non-accredited or low-ranked)", OtherOption},
			CollegeNursing:     {"Others / Non-accredited Institutions", OtherOption},
			CollegeLaw:         {"Others (non-accredited or low-ranked)", OtherOption},
			CollegePharmacy:    {"Others / Non-accredited Institutions", OtherOption},
		},
	),
}

// ResolveDetailOptions lists the accreditation details selectable for a tier and
// college type. Tier specific entries win, then the tier agnostic table, then
// a lone "Other". The result is never empty and is safe to modify.
func ResolveDetailOptions(tier Tier, collegeType CollegeType) []string {
	if byType, ok := detailsByTier[tier]; ok {
		if options, ok := byType[collegeType]; ok {
			return slices.Clone(options)
		}
	}
	if options, ok := detailOptions[collegeType]; ok {
		return slices.Clone(options)
	}
	return []string{OtherOption}
}

// IsDetailOption reports whether detail is selectable for tier and collegeType.
func IsDetailOption(tier Tier, collegeType CollegeType, detail string) bool {
	return slices.Contains(ResolveDetailOptions(tier, collegeType), detail)
}

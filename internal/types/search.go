package types

import "strings"

// Canonical filter vocabularies. Their order defines the integer codes sent to the portal.
var (
	ExperienceLevels = []string{"internship", "entry", "associate", "mid-senior level", "director", "executive"}
	JobTypes         = []string{"full-time", "contract", "part-time", "temporary", "internship", "other", "volunteer"}
	WorkTypes        = []string{"on-site", "hybrid", "remote"}
	DateRecencies    = []string{"all time", "month", "week", "24 hours", "12 hours", "hour"}
)

// SearchFilterSet is the read-only search configuration loaded once per run
type SearchFilterSet struct {
	ExperienceLevel    map[string]bool `yaml:"experience_level" json:"experience_level"`
	JobTypes           map[string]bool `yaml:"job_types" json:"job_types"`
	WorkTypes          map[string]bool `yaml:"work_types" json:"work_types"`
	Date               map[string]bool `yaml:"date" json:"date"`
	Positions          []string        `yaml:"positions" json:"positions" validate:"required,min=1,dive,required"`
	Locations          []string        `yaml:"locations" json:"locations" validate:"required,min=1,dive,required"`
	CompaniesBlacklist []string        `yaml:"companies_blacklist" json:"companies_blacklist"`
}

// IsBlacklisted reports whether the trimmed company name appears in the blacklist
func (f *SearchFilterSet) IsBlacklisted(company string) bool {
	company = strings.TrimSpace(company)
	for _, c := range f.CompaniesBlacklist {
		if strings.TrimSpace(c) == company {
			return true
		}
	}
	return false
}

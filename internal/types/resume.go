package types

// PersonalInformation holds contact details and profile links
type PersonalInformation struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Surname     string `yaml:"surname,omitempty" json:"surname,omitempty"`
	DateOfBirth string `yaml:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Country     string `yaml:"country,omitempty" json:"country,omitempty"`
	City        string `yaml:"city,omitempty" json:"city,omitempty"`
	Address     string `yaml:"address,omitempty" json:"address,omitempty"`
	ZipCode     string `yaml:"zip_code,omitempty" json:"zip_code,omitempty"`
	PhonePrefix string `yaml:"phone_prefix,omitempty" json:"phone_prefix,omitempty"`
	Phone       string `yaml:"phone,omitempty" json:"phone,omitempty"`
	Email       string `yaml:"email,omitempty" json:"email,omitempty"`
	Github      string `yaml:"github,omitempty" json:"github,omitempty"`
	Linkedin    string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
}

// EducationDetails is one academic entry
type EducationDetails struct {
	EducationLevel       string `yaml:"education_level,omitempty" json:"education_level,omitempty"`
	Institution          string `yaml:"institution,omitempty" json:"institution,omitempty"`
	FieldOfStudy         string `yaml:"field_of_study,omitempty" json:"field_of_study,omitempty"`
	FinalEvaluationGrade string `yaml:"final_evaluation_grade,omitempty" json:"final_evaluation_grade,omitempty"`
	EducationPeriod      string `yaml:"education_period,omitempty" json:"education_period,omitempty"`
	City                 string `yaml:"city,omitempty" json:"city,omitempty"`
}

// ExperienceDetails is one position held
type ExperienceDetails struct {
	Position            string              `yaml:"position,omitempty" json:"position,omitempty"`
	Company             string              `yaml:"company,omitempty" json:"company,omitempty"`
	EmploymentPeriod    string              `yaml:"employment_period,omitempty" json:"employment_period,omitempty"`
	Location            string              `yaml:"location,omitempty" json:"location,omitempty"`
	Industry            string              `yaml:"industry,omitempty" json:"industry,omitempty"`
	KeyResponsibilities []map[string]string `yaml:"key_responsibilities,omitempty" json:"key_responsibilities,omitempty"`
	SkillsAcquired      []string            `yaml:"skills_acquired,omitempty" json:"skills_acquired,omitempty"`
}

// Project is a notable project
type Project struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
}

// Achievement is a named accomplishment
type Achievement struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Certification is a professional certification or license
type Certification struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Language is a spoken language and proficiency
type Language struct {
	Language    string `yaml:"language,omitempty" json:"language,omitempty"`
	Proficiency string `yaml:"proficiency,omitempty" json:"proficiency,omitempty"`
}

// Availability describes notice period
type Availability struct {
	NoticePeriod string `yaml:"notice_period,omitempty" json:"notice_period,omitempty"`
}

// SalaryExpectations describes the expected range
type SalaryExpectations struct {
	SalaryRangeUSD string `yaml:"salary_range_usd,omitempty" json:"salary_range_usd,omitempty"`
}

// SelfIdentification holds demographic answers
type SelfIdentification struct {
	Gender     string `yaml:"gender,omitempty" json:"gender,omitempty"`
	Pronouns   string `yaml:"pronouns,omitempty" json:"pronouns,omitempty"`
	Veteran    *bool  `yaml:"veteran,omitempty" json:"veteran,omitempty"`
	Disability *bool  `yaml:"disability,omitempty" json:"disability,omitempty"`
	Ethnicity  string `yaml:"ethnicity,omitempty" json:"ethnicity,omitempty"`
}

// LegalAuthorization holds work-authorization answers
type LegalAuthorization struct {
	EUWorkAuthorization      *bool `yaml:"eu_work_authorization,omitempty" json:"eu_work_authorization,omitempty"`
	USWorkAuthorization      *bool `yaml:"us_work_authorization,omitempty" json:"us_work_authorization,omitempty"`
	RequiresUSVisa           *bool `yaml:"requires_us_visa,omitempty" json:"requires_us_visa,omitempty"`
	RequiresUSSponsorship    *bool `yaml:"requires_us_sponsorship,omitempty" json:"requires_us_sponsorship,omitempty"`
	RequiresEUVisa           *bool `yaml:"requires_eu_visa,omitempty" json:"requires_eu_visa,omitempty"`
	LegallyAllowedToWorkInEU *bool `yaml:"legally_allowed_to_work_in_eu,omitempty" json:"legally_allowed_to_work_in_eu,omitempty"`
	LegallyAllowedToWorkInUS *bool `yaml:"legally_allowed_to_work_in_us,omitempty" json:"legally_allowed_to_work_in_us,omitempty"`
	RequiresEUSponsorship    *bool `yaml:"requires_eu_sponsorship,omitempty" json:"requires_eu_sponsorship,omitempty"`
}

// WorkPreferences holds working-condition preferences
type WorkPreferences struct {
	RemoteWork                       *bool `yaml:"remote_work,omitempty" json:"remote_work,omitempty"`
	InPersonWork                     *bool `yaml:"in_person_work,omitempty" json:"in_person_work,omitempty"`
	OpenToRelocation                 *bool `yaml:"open_to_relocation,omitempty" json:"open_to_relocation,omitempty"`
	WillingToCompleteAssessments     *bool `yaml:"willing_to_complete_assessments,omitempty" json:"willing_to_complete_assessments,omitempty"`
	WillingToUndergoDrugTests        *bool `yaml:"willing_to_undergo_drug_tests,omitempty" json:"willing_to_undergo_drug_tests,omitempty"`
	WillingToUndergoBackgroundChecks *bool `yaml:"willing_to_undergo_background_checks,omitempty" json:"willing_to_undergo_background_checks,omitempty"`
}

// Resume is the candidate's professional record
type Resume struct {
	PersonalInformation *PersonalInformation `yaml:"personal_information,omitempty" json:"personal_information,omitempty"`
	EducationDetails    []EducationDetails   `yaml:"education_details,omitempty" json:"education_details,omitempty"`
	ExperienceDetails   []ExperienceDetails  `yaml:"experience_details,omitempty" json:"experience_details,omitempty"`
	Projects            []Project            `yaml:"projects,omitempty" json:"projects,omitempty"`
	Achievements        []Achievement        `yaml:"achievements,omitempty" json:"achievements,omitempty"`
	Certifications      []Certification      `yaml:"certifications,omitempty" json:"certifications,omitempty"`
	Languages           []Language           `yaml:"languages,omitempty" json:"languages,omitempty"`
	Interests           []string             `yaml:"interests,omitempty" json:"interests,omitempty"`
	SelfIdentification  *SelfIdentification  `yaml:"self_identification,omitempty" json:"self_identification,omitempty"`
	LegalAuthorization  *LegalAuthorization  `yaml:"legal_authorization,omitempty" json:"legal_authorization,omitempty"`
}

// Profile holds application preferences that are not part of the resume proper.
// It is read from the same document as the Resume.
type Profile struct {
	SelfIdentification *SelfIdentification `yaml:"self_identification,omitempty" json:"self_identification,omitempty"`
	LegalAuthorization *LegalAuthorization `yaml:"legal_authorization,omitempty" json:"legal_authorization,omitempty"`
	WorkPreferences    *WorkPreferences    `yaml:"work_preferences,omitempty" json:"work_preferences,omitempty"`
	Availability       *Availability       `yaml:"availability,omitempty" json:"availability,omitempty"`
	SalaryExpectations *SalaryExpectations `yaml:"salary_expectations,omitempty" json:"salary_expectations,omitempty"`
}

// Section returns the resume sub-record with the given snake_case name.
// The second result is false when the section is unknown or empty.
func (r *Resume) Section(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	switch name {
	case "personal_information":
		return r.PersonalInformation, r.PersonalInformation != nil
	case "education_details":
		return r.EducationDetails, len(r.EducationDetails) > 0
	case "experience_details":
		return r.ExperienceDetails, len(r.ExperienceDetails) > 0
	case "projects":
		return r.Projects, len(r.Projects) > 0
	case "achievements":
		return r.Achievements, len(r.Achievements) > 0
	case "certifications":
		return r.Certifications, len(r.Certifications) > 0
	case "languages":
		return r.Languages, len(r.Languages) > 0
	case "interests":
		return r.Interests, len(r.Interests) > 0
	case "self_identification":
		return r.SelfIdentification, r.SelfIdentification != nil
	case "legal_authorization":
		return r.LegalAuthorization, r.LegalAuthorization != nil
	}
	return nil, false
}

// Section returns the profile sub-record with the given snake_case name
func (p *Profile) Section(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch name {
	case "self_identification":
		return p.SelfIdentification, p.SelfIdentification != nil
	case "legal_authorization":
		return p.LegalAuthorization, p.LegalAuthorization != nil
	case "work_preferences":
		return p.WorkPreferences, p.WorkPreferences != nil
	case "availability":
		return p.Availability, p.Availability != nil
	case "salary_expectations":
		return p.SalaryExpectations, p.SalaryExpectations != nil
	}
	return nil, false
}

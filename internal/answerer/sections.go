package answerer

import (
	"regexp"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
	"gopkg.in/yaml.v3"
)

// CoverLetterQuestion is the fixed request that bypasses section routing
const CoverLetterQuestion = "Write a cover letter"

// coverLetterSection is the routing key of the cover-letter template
const coverLetterSection = "cover_letter"

// sectionPattern matches the closed vocabulary the classifier may answer with
var sectionPattern = regexp.MustCompile(`(?i)(Personal information|Self Identification|Legal Authorization|Work Preferences|Education Details|Experience Details|Projects|Availability|Salary Expectations|Certifications|Languages|Interests|Cover letter)`)

// ExtractSection pulls the first vocabulary label out of a classifier reply and
// returns it as a snake_case key such as "legal_authorization".
func ExtractSection(reply string) (string, error) {
	match := sectionPattern.FindString(reply)
	if match == "" {
		return "", &SectionError{Message: "could not extract section name", Cause: ErrUnknownSection}
	}
	return strings.ReplaceAll(strings.ToLower(match), " ", "_"), nil
}

// lookupSection resolves a section from the resume first, then the profile
func lookupSection(resume *types.Resume, profile *types.Profile, name string) (any, error) {
	if section, ok := resume.Section(name); ok {
		return section, nil
	}
	if section, ok := profile.Section(name); ok {
		return section, nil
	}
	return nil, &SectionError{Message: "section not found", Section: name, Cause: ErrSectionMissing}
}

// renderContext serializes prompt context as YAML; an unmarshalable value renders empty
func renderContext(v any) string {
	if v == nil {
		return ""
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

package types

import (
	"fmt"
	"strings"
)

// FieldType identifies the kind of form control a question was asked through
type FieldType string

// Field types recorded alongside cached answers
const (
	FieldTerms    FieldType = "terms-acknowledgement"
	FieldRadio    FieldType = "radio"
	FieldDropdown FieldType = "dropdown"
	FieldDate     FieldType = "date"
	FieldTextbox  FieldType = "textbox"
	FieldNumeric  FieldType = "numeric"
)

// AllFieldTypes lists every known field type
var AllFieldTypes = []FieldType{FieldTerms, FieldRadio, FieldDropdown, FieldDate, FieldTextbox, FieldNumeric}

// ParseFieldType converts a stored type string into a FieldType
func ParseFieldType(s string) (FieldType, error) {
	for _, t := range AllFieldTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// QuestionAnswer is a memoized answer keyed by normalized question and field type
type QuestionAnswer struct {
	Type     FieldType `json:"type"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

// Key returns the cache identity of the entry
func (qa QuestionAnswer) Key() QuestionKey {
	return QuestionKey{Question: NormalizeQuestion(qa.Question), Type: qa.Type}
}

// QuestionKey is the (normalized question, type) identity of a QuestionAnswer
type QuestionKey struct {
	Question string
	Type     FieldType
}

// NormalizeQuestion canonicalizes question text so that questions differing only
// by case, quoting, control characters, line breaks or a trailing comma share a key.
func NormalizeQuestion(text string) string {
	s := strings.ToLower(text)
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(`"`, "", `\`, "", "\n", " ").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(s, ",")
}

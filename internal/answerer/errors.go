// Package answerer resolves application questions with the language model,
// using the candidate's resume and application profile as context.
package answerer

import (
	"errors"
	"fmt"
)

// ErrNoOptions is returned when an options question offers nothing to choose from
var ErrNoOptions = errors.New("no options to choose from")

// SectionError reports a failure to route a question to a resume section
type SectionError struct {
	Message string
	Section string
	Cause   error
}

func (e *SectionError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("section error: %s: %s", e.Message, e.Section)
	}
	if e.Cause != nil {
		return fmt.Sprintf("section error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("section error: %s", e.Message)
}

func (e *SectionError) Unwrap() error {
	return e.Cause
}

// Sentinel causes carried by SectionError
var (
	// ErrUnknownSection means the classifier reply named no known section
	ErrUnknownSection = errors.New("reply names no known resume section")
	// ErrSectionMissing means the named section is absent from resume and profile
	ErrSectionMissing = errors.New("section not present in resume or profile")
)

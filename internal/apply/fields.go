package apply

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/types"
)

// Field is a classified form section. The set of implementations is closed;
// resolution switches on the concrete type.
type Field interface {
	// Type is the cache field type answers to this field are stored under
	Type() types.FieldType
	// Prompt is the question text as shown on the form
	Prompt() string

	isField()
}

// TermsField is a consent checkbox acknowledged by clicking its label
type TermsField struct {
	Label    browser.Element
	Question string
}

// DatePolicy selects the date typed into a date question
type DatePolicy int

const (
	// DateToday types the current date
	DateToday DatePolicy = iota + 1
	// DateEarliestStart types the first day of the month sixty days out
	DateEarliestStart
)

// DateField is a date-picker question with a known answering policy
type DateField struct {
	Input    browser.Element
	Question string
	Policy   DatePolicy
}

// RadioOption is one choice of a RadioField
type RadioOption struct {
	Label string // lower-cased option text
	ID    string
	Input browser.Element
}

// RadioField is a single-choice question rendered as radio buttons
type RadioField struct {
	Question string
	Options  []RadioOption
}

// DropdownField is a single-choice question rendered as a select
type DropdownField struct {
	Select   browser.Element
	Question string
	Options  []string
	Current  string
}

// TextboxField is a free-text input or textarea
type TextboxField struct {
	Input    browser.Element
	Question string
}

// NumericField is an input that only accepts numbers
type NumericField struct {
	Input    browser.Element
	Question string
}

func (*TermsField) Type() types.FieldType    { return types.FieldTerms }
func (*DateField) Type() types.FieldType     { return types.FieldDate }
func (*RadioField) Type() types.FieldType    { return types.FieldRadio }
func (*DropdownField) Type() types.FieldType { return types.FieldDropdown }
func (*TextboxField) Type() types.FieldType  { return types.FieldTextbox }
func (*NumericField) Type() types.FieldType  { return types.FieldNumeric }

func (f *TermsField) Prompt() string    { return f.Question }
func (f *DateField) Prompt() string     { return f.Question }
func (f *RadioField) Prompt() string    { return f.Question }
func (f *DropdownField) Prompt() string { return f.Question }
func (f *TextboxField) Prompt() string  { return f.Question }
func (f *NumericField) Prompt() string  { return f.Question }

func (*TermsField) isField()    {}
func (*DateField) isField()     {}
func (*RadioField) isField()    {}
func (*DropdownField) isField() {}
func (*TextboxField) isField()  {}
func (*NumericField) isField()  {}

// Label fragments that mark a consent checkbox
var termsPhrases = []string{
	"confirmed",
	"terms of service",
	"privacy policy",
	"terms of use",
	"i consent",
}

// Text-field labels that belong to the upload widgets
var excludedTextLabels = []string{"deselect resume", "upload cover letter"}

type classifier func(ctx context.Context, section browser.Element) (Field, error)

// classifiers in priority order; the first match wins
var classifiers = []classifier{
	classifyTerms,
	classifyDate,
	classifyRadio,
	classifyDropdown,
	classifyText,
}

// Classify identifies the form field in section. It returns nil without error
// when the section holds nothing answerable.
func Classify(ctx context.Context, section browser.Element) (Field, error) {
	for _, classify := range classifiers {
		field, err := classify(ctx, section)
		if err != nil {
			return nil, err
		}
		if field != nil {
			return field, nil
		}
	}
	return nil, nil
}

func classifyTerms(ctx context.Context, section browser.Element) (Field, error) {
	label, err := section.Find(ctx, selLabel)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	text, err := label.Text(ctx)
	if err != nil {
		return nil, err
	}
	text = strings.ToLower(text)
	if !containsAny(text, termsPhrases) {
		return nil, nil
	}
	return &TermsField{Label: label, Question: text}, nil
}

func classifyDate(ctx context.Context, section browser.Element) (Field, error) {
	if _, err := section.Find(ctx, selDatePicker); absent(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	input, err := section.Find(ctx, selDateInput)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	text, err := section.Text(ctx)
	if err != nil {
		return nil, err
	}
	text = strings.ToLower(text)

	var policy DatePolicy
	switch {
	case strings.Contains(text, "today"):
		policy = DateToday
	case strings.Contains(text, "earliest start date"):
		policy = DateEarliestStart
	default:
		return nil, nil
	}
	return &DateField{Input: input, Question: text, Policy: policy}, nil
}

func classifyRadio(ctx context.Context, section browser.Element) (Field, error) {
	form, err := section.Find(ctx, selFormElement)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	radios, err := form.FindAll(ctx, selRadio)
	if err != nil {
		return nil, err
	}
	if len(radios) == 0 {
		return nil, nil
	}

	text, err := section.Text(ctx)
	if err != nil {
		return nil, err
	}

	field := &RadioField{Question: strings.ToLower(text)}
	for _, radio := range radios {
		label, err := radio.Attribute(ctx, selRadioLabelAttr)
		if err != nil {
			return nil, err
		}
		id, err := radio.Attribute(ctx, "id")
		if err != nil {
			return nil, err
		}
		field.Options = append(field.Options, RadioOption{Label: strings.ToLower(label), ID: id, Input: radio})
	}
	return field, nil
}

func classifyDropdown(ctx context.Context, section browser.Element) (Field, error) {
	form, err := section.Find(ctx, selFormElement)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sel, err := form.Find(ctx, selSelect)
	if absent(err) {
		sel, err = section.Find(ctx, selEntityList)
	}
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	question, err := firstText(ctx, form, selLabel)
	if absent(err) {
		question, err = sel.Text(ctx)
	}
	if err != nil {
		return nil, err
	}

	options, err := sel.Options(ctx)
	if err != nil {
		return nil, err
	}
	current, err := sel.Selected(ctx)
	if err != nil {
		return nil, err
	}

	return &DropdownField{
		Select:   sel,
		Question: strings.ToLower(question),
		Options:  options,
		Current:  current,
	}, nil
}

func classifyText(ctx context.Context, section browser.Element) (Field, error) {
	inputs, err := section.FindAll(ctx, selInput)
	if err != nil {
		return nil, err
	}
	textareas, err := section.FindAll(ctx, selTextarea)
	if err != nil {
		return nil, err
	}
	fields := append(inputs, textareas...)
	if len(fields) == 0 {
		return nil, nil
	}
	input := fields[0]

	question, err := firstText(ctx, section, selLabel)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	question = strings.TrimSpace(strings.ToLower(question))
	if containsAny(question, excludedTextLabels) {
		return nil, nil
	}

	numeric, err := isNumeric(ctx, input)
	if err != nil {
		return nil, err
	}
	if numeric {
		return &NumericField{Input: input, Question: question}, nil
	}
	return &TextboxField{Input: input, Question: question}, nil
}

func isNumeric(ctx context.Context, input browser.Element) (bool, error) {
	id, err := input.Attribute(ctx, "id")
	if err != nil {
		return false, err
	}
	inputType, err := input.Attribute(ctx, "type")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(id), "numeric") || strings.EqualFold(inputType, "number"), nil
}

func firstText(ctx context.Context, parent browser.Element, selector string) (string, error) {
	el, err := parent.Find(ctx, selector)
	if err != nil {
		return "", err
	}
	return el.Text(ctx)
}

// absent reports whether err is an expected not-found lookup
func absent(err error) bool {
	return errors.Is(err, browser.ErrNotFound)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

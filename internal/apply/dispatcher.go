package apply

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

// Answerer produces answers the cache does not hold
type Answerer interface {
	AnswerTextual(ctx context.Context, question string) (string, error)
	AnswerNumeric(ctx context.Context, question string, defaultValue int) (int, error)
	AnswerFromOptions(ctx context.Context, question string, options []string) (string, error)
}

// AnswerCache is the session memo consulted before the Answerer
type AnswerCache interface {
	Get(question string, fieldType types.FieldType) (string, bool)
	Put(ctx context.Context, qa types.QuestionAnswer) error
}

const (
	// defaultNumericAnswer is used when the model reply holds no integer
	defaultNumericAnswer = 5
	// coverLetterQuestion is a textbox label that is always answered fresh
	coverLetterQuestion = "cover letter"
	dateLayout          = "01/02/2006"
)

// Field interaction pauses
const (
	fieldPauseMin = 1 * time.Second
	fieldPauseMax = 15 * time.Second
)

// Dispatcher classifies form sections and fills them in, consulting the
// answer cache before the answerer and writing new answers back
type Dispatcher struct {
	page     browser.Page
	cache    AnswerCache
	answerer Answerer
	pacer    pacing.Pacer
	log      *zap.Logger
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. Selecting radio options looks up labels on page.
func NewDispatcher(page browser.Page, cache AnswerCache, answerer Answerer, pacer pacing.Pacer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if pacer == nil {
		pacer = pacing.None
	}
	return &Dispatcher{
		page:     page,
		cache:    cache,
		answerer: answerer,
		pacer:    pacer,
		log:      log,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for date answers
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Dispatch classifies section and resolves the field it holds.
// It reports whether a field was found.
func (d *Dispatcher) Dispatch(ctx context.Context, section browser.Element) (bool, error) {
	field, err := Classify(ctx, section)
	if err != nil {
		return false, fmt.Errorf("failed to classify section: %w", err)
	}
	if field == nil {
		return false, nil
	}

	if err := d.Resolve(ctx, field); err != nil {
		return true, &FieldError{Type: field.Type(), Question: field.Prompt(), Cause: err}
	}
	d.log.Debug("Resolved field",
		zap.String("type", string(field.Type())),
		zap.String("question", field.Prompt()),
	)
	return true, nil
}

// Resolve answers field and writes the answer into the form
func (d *Dispatcher) Resolve(ctx context.Context, field Field) error {
	switch f := field.(type) {
	case *TermsField:
		return d.resolveTerms(ctx, f)
	case *DateField:
		return d.resolveDate(ctx, f)
	case *RadioField:
		return d.resolveRadio(ctx, f)
	case *DropdownField:
		return d.resolveDropdown(ctx, f)
	case *TextboxField:
		return d.resolveTextbox(ctx, f)
	case *NumericField:
		return d.resolveNumeric(ctx, f)
	default:
		return fmt.Errorf("unsupported field %T", field)
	}
}

func (d *Dispatcher) resolveTerms(ctx context.Context, f *TermsField) error {
	if err := f.Label.Click(ctx); err != nil {
		return fmt.Errorf("failed to acknowledge terms: %w", err)
	}
	return d.pause(ctx)
}

func (d *Dispatcher) resolveDate(ctx context.Context, f *DateField) error {
	now := d.now()
	var date time.Time
	switch f.Policy {
	case DateToday:
		date = now
	case DateEarliestStart:
		later := now.AddDate(0, 0, 60)
		date = time.Date(later.Year(), later.Month(), 1, 0, 0, 0, 0, later.Location())
	default:
		return fmt.Errorf("unknown date policy %d", f.Policy)
	}

	if err := f.Input.SendKeys(ctx, date.Format(dateLayout)); err != nil {
		return fmt.Errorf("failed to enter date: %w", err)
	}
	return d.pause(ctx)
}

// resolveRadio uses a cached answer only while it names a current option.
// An answer matching no option selects the last radio.
func (d *Dispatcher) resolveRadio(ctx context.Context, f *RadioField) error {
	labels := make([]string, len(f.Options))
	for i, o := range f.Options {
		labels[i] = o.Label
	}

	answer, ok := d.cache.Get(f.Question, types.FieldRadio)
	if !ok || !contains(labels, answer) {
		var err error
		answer, err = d.answerer.AnswerFromOptions(ctx, f.Question, labels)
		if err != nil {
			return err
		}
		if err := d.remember(ctx, types.FieldRadio, f.Question, answer); err != nil {
			return err
		}
	}
	return d.selectRadio(ctx, f.Options, answer)
}

func (d *Dispatcher) selectRadio(ctx context.Context, options []RadioOption, answer string) error {
	if len(options) == 0 {
		return fmt.Errorf("radio group has no options")
	}

	target := options[len(options)-1].Input
	for _, o := range options {
		if o.Label != answer {
			continue
		}
		label, err := d.page.Find(ctx, fmt.Sprintf(`label[for=%q]`, o.ID))
		switch {
		case err == nil:
			target = label
		case absent(err):
			target = o.Input
		default:
			return err
		}
		break
	}

	if err := target.Click(ctx); err != nil {
		return fmt.Errorf("failed to select radio option: %w", err)
	}
	return d.pause(ctx)
}

// resolveDropdown uses a cached answer only while it is still offered
func (d *Dispatcher) resolveDropdown(ctx context.Context, f *DropdownField) error {
	answer, ok := d.cache.Get(f.Question, types.FieldDropdown)
	if !ok || !contains(f.Options, answer) {
		var err error
		answer, err = d.answerer.AnswerFromOptions(ctx, f.Question, f.Options)
		if err != nil {
			return err
		}
		if err := d.remember(ctx, types.FieldDropdown, f.Question, answer); err != nil {
			return err
		}
	}

	if answer == f.Current {
		return nil
	}
	if err := f.Select.SelectOption(ctx, answer); err != nil {
		return fmt.Errorf("failed to select %q: %w", answer, err)
	}
	return d.pause(ctx)
}

func (d *Dispatcher) resolveTextbox(ctx context.Context, f *TextboxField) error {
	if types.NormalizeQuestion(f.Question) != coverLetterQuestion {
		if answer, ok := d.cache.Get(f.Question, types.FieldTextbox); ok {
			return d.enterText(ctx, f.Input, answer)
		}
	}

	answer, err := d.answerer.AnswerTextual(ctx, f.Question)
	if err != nil {
		return err
	}
	if err := d.remember(ctx, types.FieldTextbox, f.Question, answer); err != nil {
		return err
	}
	return d.enterText(ctx, f.Input, answer)
}

func (d *Dispatcher) resolveNumeric(ctx context.Context, f *NumericField) error {
	if answer, ok := d.cache.Get(f.Question, types.FieldNumeric); ok {
		return d.enterText(ctx, f.Input, answer)
	}

	n, err := d.answerer.AnswerNumeric(ctx, f.Question, defaultNumericAnswer)
	if err != nil {
		return err
	}
	answer := strconv.Itoa(n)
	if err := d.remember(ctx, types.FieldNumeric, f.Question, answer); err != nil {
		return err
	}
	return d.enterText(ctx, f.Input, answer)
}

// enterText types text and confirms the first autocomplete suggestion
func (d *Dispatcher) enterText(ctx context.Context, input browser.Element, text string) error {
	if err := input.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}
	if err := input.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("failed to type answer: %w", err)
	}
	if err := d.pause(ctx); err != nil {
		return err
	}

	for _, key := range []string{browser.KeyArrowDown, browser.KeyEnter} {
		if err := input.SendKeys(ctx, key); err != nil {
			return fmt.Errorf("failed to confirm answer: %w", err)
		}
	}
	return d.pause(ctx)
}

func (d *Dispatcher) remember(ctx context.Context, fieldType types.FieldType, question, answer string) error {
	err := d.cache.Put(ctx, types.QuestionAnswer{Type: fieldType, Question: question, Answer: answer})
	if err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

func (d *Dispatcher) pause(ctx context.Context) error {
	return d.pacer.Pause(ctx, fieldPauseMin, fieldPauseMax)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

// JobContext receives the job being applied to before the wizard opens
type JobContext interface {
	SetJob(job *types.Job)
}

const (
	// WizardBudget bounds the time spent stepping through one wizard
	WizardBudget = 10 * time.Minute

	maxPremiumRetries = 3
	discardTimeout    = 30 * time.Second
	pollInterval      = 250 * time.Millisecond
	hiringTeamDepth   = 4
)

// Labels of the wizard's primary button
var primaryActions = []string{actionNext, actionReview, actionSubmit, actionContinue}

// Result describes a finished application attempt
type Result struct {
	// AlreadyClosed is set when a banner showed the job as closed or already
	// submitted, so the wizard was never opened
	AlreadyClosed bool
	Steps         int
	Fields        int
}

// Machine drives one job at a time from the job view through the wizard to submission
type Machine struct {
	page       browser.Page
	dispatcher *Dispatcher
	uploader   *Uploader
	jobs       JobContext
	pacer      pacing.Pacer
	log        *zap.Logger
	now        func() time.Time
	budget     time.Duration
}

// NewMachine creates a Machine. jobs may be nil.
func NewMachine(page browser.Page, dispatcher *Dispatcher, uploader *Uploader, jobs JobContext, pacer pacing.Pacer, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	if pacer == nil {
		pacer = pacing.None
	}
	return &Machine{
		page:       page,
		dispatcher: dispatcher,
		uploader:   uploader,
		jobs:       jobs,
		pacer:      pacer,
		log:        log,
		now:        time.Now,
		budget:     WizardBudget,
	}
}

// SetClock replaces the clock that measures the wizard budget
func (m *Machine) SetClock(now func() time.Time) {
	m.now = now
}

// Apply submits an application for job. job.Description and job.Recruiter are
// filled in from the job view. Failures after the wizard opened discard the
// draft and are returned as *ApplyError.
func (m *Machine) Apply(ctx context.Context, job *types.Job) (Result, error) {
	if job.Applied {
		return Result{}, ErrAlreadyApplied
	}
	log := m.log.With(zap.String("title", job.Title), zap.String("company", job.Company))

	if err := m.open(ctx, job); err != nil {
		return Result{}, newApplyError(job, err)
	}

	closed, err := m.closedOrSubmitted(ctx)
	if err != nil {
		return Result{}, newApplyError(job, err)
	}
	if closed {
		log.Info("Job closed or already submitted")
		return Result{AlreadyClosed: true}, nil
	}

	res, err := m.run(ctx, job)
	if err != nil {
		m.discard(ctx)
		return res, newApplyError(job, err)
	}

	log.Info("Application submitted", zap.Int("steps", res.Steps), zap.Int("fields", res.Fields))
	return res, nil
}

// open navigates to the job view, recovering from premium upsell redirects
func (m *Machine) open(ctx context.Context, job *types.Job) error {
	current, err := m.page.URL(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current URL: %w", err)
	}
	if current != job.Link {
		if err := m.navigate(ctx, job.Link); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		current, err := m.page.URL(ctx)
		if err != nil {
			return fmt.Errorf("failed to read current URL: %w", err)
		}
		if !strings.Contains(current, premiumPath) {
			return nil
		}
		if attempt > maxPremiumRetries {
			return ErrPremiumRedirect
		}
		m.log.Warn("Redirected to premium, reloading job", zap.Int("attempt", attempt))
		if err := m.navigate(ctx, job.Link); err != nil {
			return err
		}
	}
}

func (m *Machine) navigate(ctx context.Context, url string) error {
	if err := m.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("failed to open job: %w", err)
	}
	return m.pacer.Pause(ctx, 3*time.Second, 5*time.Second)
}

// closedOrSubmitted reports whether the job view shows a terminal banner
func (m *Machine) closedOrSubmitted(ctx context.Context) (bool, error) {
	banners := []struct{ selector, text string }{
		{selApplyError, bannerClosed},
		{selFullWidthSpan, bannerSubmitted},
	}
	for _, b := range banners {
		els, err := m.page.FindAll(ctx, b.selector)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			if strings.Contains(browser.TextOf(ctx, el), b.text) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Machine) run(ctx context.Context, job *types.Job) (Result, error) {
	var res Result

	if err := m.inspect(ctx, job); err != nil {
		return res, err
	}

	button, err := m.applyButton(ctx)
	if err != nil {
		return res, err
	}
	if err := button.ScrollIntoView(ctx); err != nil {
		return res, err
	}
	if err := button.Click(ctx); err != nil {
		return res, fmt.Errorf("failed to open wizard: %w", err)
	}
	if err := m.pacer.Pause(ctx, 2*time.Second, 4*time.Second); err != nil {
		return res, err
	}
	if m.jobs != nil {
		m.jobs.SetJob(job)
	}

	deadline := m.now().Add(m.budget)
	for m.now().Before(deadline) {
		res.Steps++

		n, err := m.fill(ctx, job)
		res.Fields += n
		if err != nil {
			return res, err
		}

		submitted, err := m.advance(ctx)
		if err != nil {
			return res, err
		}
		if submitted {
			return res, nil
		}
	}
	return res, ErrWizardTimeout
}

// inspect loads the whole job view and captures the description and recruiter
func (m *Machine) inspect(ctx context.Context, job *types.Job) error {
	height, err := m.page.ScrollHeight(ctx)
	if err != nil {
		return err
	}
	if err := browser.SlowScroll(ctx, m.page, m.pacer, 0, height, 300); err != nil {
		return err
	}
	if err := browser.SlowScroll(ctx, m.page, m.pacer, height, 0, -600); err != nil {
		return err
	}
	if err := m.page.Eval(ctx, "document.activeElement && document.activeElement.blur();"); err != nil {
		return err
	}

	description, err := m.description(ctx)
	if err != nil {
		return err
	}
	job.Description = description

	if recruiter := m.recruiter(ctx); recruiter != "" {
		job.Recruiter = recruiter
	}
	return nil
}

func (m *Machine) description(ctx context.Context) (string, error) {
	more, err := m.page.Find(ctx, selSeeMore)
	switch {
	case err == nil:
		if err := more.Click(ctx); err != nil {
			return "", fmt.Errorf("failed to expand description: %w", err)
		}
		if err := m.pacer.Pause(ctx, time.Second, 2*time.Second); err != nil {
			return "", err
		}
	case !absent(err):
		return "", err
	}

	el, err := m.page.Find(ctx, selDescription)
	if absent(err) {
		return "", ErrNoDescription
	}
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// recruiter returns the first profile link of the hiring-team block, "" when there is none
func (m *Machine) recruiter(ctx context.Context) string {
	headings, err := m.page.FindAll(ctx, selHeading)
	if err != nil {
		m.log.Debug("Hiring team lookup failed", zap.Error(err))
		return ""
	}

	for _, h := range headings {
		if strings.TrimSpace(browser.TextOf(ctx, h)) != hiringTeam {
			continue
		}
		block := h
		for depth := 0; depth < hiringTeamDepth; depth++ {
			parent, parentErr := block.Parent(ctx)
			if parentErr != nil {
				break
			}
			block = parent

			link, findErr := block.Find(ctx, selProfileLink)
			if findErr != nil {
				continue
			}
			href, attrErr := link.Attribute(ctx, "href")
			if attrErr == nil && href != "" {
				return href
			}
		}
	}
	return ""
}

// applyButton returns the first quick-apply button that becomes visible and then enabled
func (m *Machine) applyButton(ctx context.Context) (browser.Element, error) {
	buttons, err := m.page.FindAll(ctx, selApplyButton)
	if err != nil {
		return nil, err
	}

	var candidates []browser.Element
	for _, b := range buttons {
		if strings.Contains(browser.TextOf(ctx, b), easyApply) {
			candidates = append(candidates, b)
		}
	}
	button, err := browser.FirstClickable(ctx, candidates, m.pacer.Duration(5*time.Second, 10*time.Second))
	if absent(err) {
		return nil, ErrNoApplyButton
	}
	return button, err
}

// wait polls cond for a jittered five to ten seconds
func (m *Machine) wait(ctx context.Context, cond browser.Condition) error {
	return browser.WaitFor(ctx, m.pacer.Duration(5*time.Second, 10*time.Second), pollInterval, cond)
}

// fill answers every section of the current step and returns how many fields it resolved
func (m *Machine) fill(ctx context.Context, job *types.Job) (int, error) {
	err := m.wait(ctx, func(ctx context.Context) (bool, error) {
		_, err := m.page.Find(ctx, selProgress)
		return err == nil, err
	})
	if errors.Is(err, browser.ErrTimeout) {
		m.log.Debug("No progress indicator, skipping form")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	containers, err := m.page.FindAll(ctx, selContainer)
	if err != nil {
		return 0, err
	}
	if len(containers) == 0 {
		if containers, err = m.page.FindAll(ctx, selContainerAlt); err != nil {
			return 0, err
		}
	}

	n := 0
	for _, container := range containers {
		sections, err := container.FindAll(ctx, selSection)
		if err != nil {
			return n, err
		}
		for _, section := range sections {
			ok, err := m.dispatcher.Dispatch(ctx, section)
			if ok {
				n++
			}
			if err != nil {
				return n, err
			}
		}

		_, err = container.Find(ctx, selFileInput)
		if absent(err) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := m.uploader.Upload(ctx, job); err != nil {
			return n, err
		}
	}
	return n, nil
}

// advance presses the step's primary button and reports whether the application was submitted
func (m *Machine) advance(ctx context.Context) (bool, error) {
	buttons, err := m.page.FindAll(ctx, selPrimaryButton)
	if err != nil {
		return false, err
	}

	var button browser.Element
	var action string
	for _, b := range buttons {
		text := strings.ToLower(strings.TrimSpace(browser.TextOf(ctx, b)))
		if contains(primaryActions, text) {
			button, action = b, text
			break
		}
	}
	if button == nil {
		return false, ErrNoPrimaryAction
	}

	switch action {
	case actionSubmit:
		if err := m.press(ctx, button); err != nil {
			return false, err
		}
		return true, nil
	case actionContinue:
		return false, m.press(ctx, button)
	}

	before, err := m.progress(ctx)
	if err != nil {
		return false, err
	}
	if err := m.press(ctx, button); err != nil {
		return false, err
	}
	after, err := m.progress(ctx)
	if err != nil {
		return false, err
	}
	if before == after {
		m.log.Warn("Wizard did not advance", zap.String("progress", after))
		return false, ErrStalledProgress
	}
	return false, nil
}

func (m *Machine) press(ctx context.Context, button browser.Element) error {
	if err := button.Click(ctx); err != nil {
		return fmt.Errorf("failed to press wizard button: %w", err)
	}
	return m.pacer.Pause(ctx, 3*time.Second, 5*time.Second)
}

// progress returns the progress indicator label, "" when it is not shown
func (m *Machine) progress(ctx context.Context) (string, error) {
	el, err := m.page.Find(ctx, selProgress)
	if absent(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return el.Attribute(ctx, "aria-label")
}

// discard closes the wizard without saving the draft. It runs after ctx may
// already be canceled, so it gets its own deadline.
func (m *Machine) discard(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()

	dismiss, err := m.page.Find(ctx, selDismiss)
	if err != nil {
		m.log.Warn("Failed to find wizard dismiss button", zap.Error(err))
		return
	}
	if err := dismiss.Click(ctx); err != nil {
		m.log.Warn("Failed to dismiss wizard", zap.Error(err))
		return
	}
	if err := m.pacer.Pause(ctx, time.Second, 2*time.Second); err != nil {
		return
	}

	confirm, err := m.page.Find(ctx, selConfirmDiscard)
	if err != nil {
		m.log.Warn("Failed to find discard confirmation", zap.Error(err))
		return
	}
	if err := confirm.Click(ctx); err != nil {
		m.log.Warn("Failed to confirm discard", zap.Error(err))
		return
	}
	_ = m.pacer.Pause(ctx, time.Second, 2*time.Second)
}

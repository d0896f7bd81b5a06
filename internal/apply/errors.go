// Package apply drives a single job through the portal's quick-apply wizard,
// classifying and answering each form section along the way.
package apply

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/jonathan/apply-agent/internal/types"
)

// Job-level failures
var (
	// ErrAlreadyApplied refuses a job the store already records as applied
	ErrAlreadyApplied = errors.New("job already applied")
	// ErrPremiumRedirect means the job view kept redirecting to the premium upsell
	ErrPremiumRedirect = errors.New("job view redirected to premium")
	// ErrNoDescription means the job description could not be read
	ErrNoDescription = errors.New("job description not found")
	// ErrNoApplyButton means no quick-apply button became clickable
	ErrNoApplyButton = errors.New("no clickable easy apply button")
	// ErrNoPrimaryAction means the wizard step offered no known primary button
	ErrNoPrimaryAction = errors.New("no primary wizard action")
	// ErrStalledProgress means advancing left the progress indicator unchanged
	ErrStalledProgress = errors.New("wizard progress did not change")
	// ErrWizardTimeout means the wizard did not finish within the time budget
	ErrWizardTimeout = errors.New("wizard time budget exhausted")
)

// ApplyError reports a failed application attempt together with the stack
// where the failure was recorded
type ApplyError struct {
	Job   *types.Job
	Cause error
	stack []byte
}

func newApplyError(job *types.Job, cause error) *ApplyError {
	return &ApplyError{Job: job, Cause: cause, stack: goerrors.Wrap(cause, 1).Stack()}
}

func (e *ApplyError) Error() string {
	if e.Job == nil {
		return fmt.Sprintf("apply error: %v", e.Cause)
	}
	return fmt.Sprintf("apply error: %s at %s: %v", e.Job.Title, e.Job.Company, e.Cause)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// Stack returns the formatted stack trace captured when the attempt failed
func (e *ApplyError) Stack() []byte {
	return e.stack
}

// FieldError reports a failure to resolve one form field
type FieldError struct {
	Type     types.FieldType
	Question string
	Cause    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field error: %s %q: %v", e.Type, e.Question, e.Cause)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}

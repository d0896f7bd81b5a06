package apply

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/apply-agent/internal/answerer"
	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/jonathan/apply-agent/internal/rendering"
	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

// CoverLetterWriter answers the fixed cover-letter request
type CoverLetterWriter interface {
	AnswerTextual(ctx context.Context, question string) (string, error)
}

// Uploader attaches the resume and a generated cover letter to the wizard's file inputs
type Uploader struct {
	page           browser.Page
	writer         CoverLetterWriter
	pacer          pacing.Pacer
	log            *zap.Logger
	resumePath     string
	coverLetterDir string
}

// NewUploader creates an Uploader. Relative paths are resolved against the working directory.
func NewUploader(page browser.Page, writer CoverLetterWriter, pacer pacing.Pacer, log *zap.Logger, resumePath, coverLetterDir string) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	if pacer == nil {
		pacer = pacing.None
	}
	return &Uploader{
		page:           page,
		writer:         writer,
		pacer:          pacer,
		log:            log,
		resumePath:     resumePath,
		coverLetterDir: coverLetterDir,
	}
}

// Upload fills every file input on the page according to the text around it
func (u *Uploader) Upload(ctx context.Context, job *types.Job) error {
	inputs, err := u.page.FindAll(ctx, selFileInput)
	if err != nil {
		return fmt.Errorf("failed to find file inputs: %w", err)
	}

	for _, input := range inputs {
		if err := input.Eval(ctx, `this.classList.remove("hidden");`); err != nil {
			return fmt.Errorf("failed to reveal file input: %w", err)
		}

		parent, err := input.Parent(ctx)
		if absent(err) {
			continue
		}
		if err != nil {
			return err
		}
		text, err := parent.Text(ctx)
		if err != nil {
			return err
		}
		text = strings.ToLower(text)

		if strings.Contains(text, "resume") {
			if err := u.attach(ctx, input, u.resumePath); err != nil {
				return fmt.Errorf("failed to attach resume: %w", err)
			}
			u.log.Debug("Attached resume", zap.String("path", u.resumePath))
		}
		if strings.Contains(text, "cover") {
			path, err := u.writeCoverLetter(ctx, job)
			if err != nil {
				return err
			}
			if err := u.attach(ctx, input, path); err != nil {
				return fmt.Errorf("failed to attach cover letter: %w", err)
			}
			u.log.Debug("Attached cover letter", zap.String("path", path))
		}
	}
	return nil
}

func (u *Uploader) writeCoverLetter(ctx context.Context, job *types.Job) (string, error) {
	body, err := u.writer.AnswerTextual(ctx, answerer.CoverLetterQuestion)
	if err != nil {
		return "", fmt.Errorf("failed to write cover letter: %w", err)
	}
	path, err := rendering.WriteCoverLetter(u.coverLetterDir, job.Title, job.Company, body)
	if err != nil {
		return "", fmt.Errorf("failed to render cover letter: %w", err)
	}
	return path, nil
}

func (u *Uploader) attach(ctx context.Context, input browser.Element, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := input.SetFiles(ctx, abs); err != nil {
		return err
	}
	return u.pacer.Pause(ctx, 2*time.Second, 5*time.Second)
}

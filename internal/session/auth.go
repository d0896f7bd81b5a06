package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/pacing"
	"go.uber.org/zap"
)

// Sign-in pages
const (
	FeedURL  = "https://www.linkedin.com/feed/"
	LoginURL = "https://www.linkedin.com/login"
)

const (
	selUsername = "#username"
	selPassword = "#password"
	selSubmit   = `button[type="submit"]`

	// CheckpointTimeout bounds the wait for a manually solved security challenge
	CheckpointTimeout = 300 * time.Second
)

// Login signs in unless the browser profile already holds a session. email may
// be empty when the login page only asks for the password of a remembered account.
func Login(ctx context.Context, page browser.Page, pacer pacing.Pacer, log *zap.Logger, email, password string) error {
	if log == nil {
		log = zap.NewNop()
	}

	if err := page.Navigate(ctx, FeedURL); err != nil {
		return &LoginError{Message: "failed to open feed", Cause: err}
	}
	if err := pacer.Pause(ctx, time.Second, 5*time.Second); err != nil {
		return err
	}
	current, err := page.URL(ctx)
	if err != nil {
		return &LoginError{Message: "failed to read current URL", Cause: err}
	}
	if !strings.Contains(current, "login") {
		log.Info("Already logged in")
		return nil
	}

	log.Info("Logging in")
	if err := page.Navigate(ctx, LoginURL); err != nil {
		return &LoginError{Message: "failed to open login page", Cause: err}
	}
	if err := pacer.Pause(ctx, time.Second, 5*time.Second); err != nil {
		return err
	}

	username, err := page.Find(ctx, selUsername)
	switch {
	case errors.Is(err, browser.ErrNotFound):
		log.Info("Username field not found, using password only")
	case err != nil:
		return &LoginError{Message: "failed to find username field", Cause: err}
	default:
		if err := username.SendKeys(ctx, email); err != nil {
			return &LoginError{Message: "failed to enter username", Cause: err}
		}
	}

	field, err := page.Find(ctx, selPassword)
	if err != nil {
		return &LoginError{Message: "failed to find password field", Cause: err}
	}
	if err := field.SendKeys(ctx, password); err != nil {
		return &LoginError{Message: "failed to enter password", Cause: err}
	}
	submit, err := page.Find(ctx, selSubmit)
	if err != nil {
		return &LoginError{Message: "failed to find sign-in button", Cause: err}
	}
	if err := submit.Click(ctx); err != nil {
		return &LoginError{Message: "failed to submit credentials", Cause: err}
	}
	if err := pacer.Pause(ctx, time.Second, 5*time.Second); err != nil {
		return err
	}

	current, err = page.URL(ctx)
	if err != nil {
		return &LoginError{Message: "failed to read current URL", Cause: err}
	}
	if strings.Contains(current, "checkpoint") {
		log.Warn("Security checkpoint detected, complete the challenge in the browser")
		err := browser.WaitFor(ctx, CheckpointTimeout, 2*time.Second, func(ctx context.Context) (bool, error) {
			u, err := page.URL(ctx)
			return strings.Contains(u, FeedURL), err
		})
		if err != nil {
			return &LoginError{Message: "security checkpoint not completed", Cause: err}
		}
		log.Info("Security checkpoint completed")
	}
	return nil
}

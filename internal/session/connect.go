package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/pacing"
	"go.uber.org/zap"
)

// Profile page selectors
const (
	selSecondaryButton = "button.artdeco-button--secondary"
	selConnectPrimary  = "button.artdeco-button--2.artdeco-button--primary"
	selConnectSecond   = "button.artdeco-button--2.artdeco-button--secondary"
	selMoreActions     = `button[aria-label="More actions"]`
	selMenuItem        = `div[role="button"]`
	selSendNoNote      = `button[aria-label="Send without a note"]`
	selInviteLimit     = ".ip-fuse-limit-alert__header"
)

// ConnectRecruiter sends a connection request to the profile at url. It reports
// true when the request was sent or the profile is already pending or connected,
// and false when the profile offers no way to connect.
func ConnectRecruiter(ctx context.Context, page browser.Page, pacer pacing.Pacer, log *zap.Logger, url string) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := connector{page: page, pacer: pacer, log: log.With(zap.String("recruiter", url))}

	if err := page.Navigate(ctx, url); err != nil {
		return false, fmt.Errorf("failed to open profile: %w", err)
	}
	if err := pacer.Pause(ctx, 3*time.Second, 5*time.Second); err != nil {
		return false, err
	}

	if pending, err := c.button(ctx, selSecondaryButton, "Pending"); err != nil {
		return false, err
	} else if pending != nil {
		c.log.Debug("Invitation already pending")
		return true, nil
	}

	height, err := page.ScrollHeight(ctx)
	if err != nil {
		return false, err
	}
	if err := browser.SlowScroll(ctx, page, pacer, 0, height, 300); err != nil {
		return false, err
	}
	if err := browser.SlowScroll(ctx, page, pacer, height, 0, -600); err != nil {
		return false, err
	}

	for _, selector := range []string{selConnectPrimary, selConnectSecond} {
		button, err := c.button(ctx, selector, "Connect")
		if err != nil {
			return false, err
		}
		if button != nil {
			return c.connect(ctx, button)
		}
	}

	more, err := c.button(ctx, selMoreActions, "")
	if err != nil {
		return false, err
	}
	if more == nil {
		return false, nil
	}
	if err := c.click(ctx, more); err != nil {
		return false, err
	}

	if connected, err := c.button(ctx, selMenuItem, "Remove Connection"); err != nil {
		return false, err
	} else if connected != nil {
		c.log.Debug("Already connected")
		return true, nil
	}

	button, err := c.button(ctx, selMenuItem, "Connect")
	if err != nil {
		return false, err
	}
	if button == nil {
		return false, nil
	}
	return c.connect(ctx, button)
}

type connector struct {
	page  browser.Page
	pacer pacing.Pacer
	log   *zap.Logger
}

// button returns the first clickable element matching selector whose text
// contains text, or nil when there is none
func (c *connector) button(ctx context.Context, selector, text string) (browser.Element, error) {
	els, err := c.page.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}

	var candidates []browser.Element
	for _, el := range els {
		if text == "" || strings.Contains(browser.TextOf(ctx, el), text) {
			candidates = append(candidates, el)
		}
	}

	button, err := browser.FirstClickable(ctx, candidates, c.pacer.Duration(5*time.Second, 10*time.Second))
	if errors.Is(err, browser.ErrNotFound) {
		return nil, nil
	}
	return button, err
}

func (c *connector) click(ctx context.Context, el browser.Element) error {
	if err := el.Click(ctx); err != nil {
		return err
	}
	return c.pacer.Pause(ctx, time.Second, 3*time.Second)
}

// connect opens the invitation dialog with button and sends it without a note
func (c *connector) connect(ctx context.Context, button browser.Element) (bool, error) {
	if err := c.click(ctx, button); err != nil {
		return false, fmt.Errorf("failed to open invitation: %w", err)
	}

	send, err := c.button(ctx, selSendNoNote, "")
	if err != nil {
		return false, err
	}
	if send == nil {
		return false, ErrNoSendButton
	}
	if err := c.click(ctx, send); err != nil {
		return false, fmt.Errorf("failed to send invitation: %w", err)
	}

	alert, err := c.page.Find(ctx, selInviteLimit)
	switch {
	case errors.Is(err, browser.ErrNotFound):
	case err != nil:
		return false, err
	case strings.Contains(browser.TextOf(ctx, alert), "reached the weekly invitation limit"):
		return false, ErrInviteLimit
	}

	c.log.Info("Invitation sent")
	return true, nil
}

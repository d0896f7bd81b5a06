// Package session runs one pass of a mode: paging through searches and applying,
// re-applying to failed jobs, or connecting with recruiters.
package session

import (
	"errors"
	"fmt"
)

// Run-level halts. They end the run early without counting as failures.
var (
	// ErrQuotaExceeded means the portal refuses further applications today
	ErrQuotaExceeded = errors.New("daily application quota exceeded")
	// ErrInviteLimit means the portal refuses further connection requests this week
	ErrInviteLimit = errors.New("weekly invitation limit reached")
)

// ErrNoSendButton means the connection dialog offered no way to send the invitation
var ErrNoSendButton = errors.New("send invitation button not found")

// ParseError reports a results page that could not be parsed
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// LoginError reports a failed sign-in
type LoginError struct {
	Message string
	Cause   error
}

func (e *LoginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("login error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("login error: %s", e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

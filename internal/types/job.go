// Package types provides type definitions for structured data used throughout the apply-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Apply methods observed on search-result tiles
const (
	ApplyMethodEasyApply = "Easy Apply"
	ApplyMethodPromoted  = "Promoted"
)

// Job represents a single posting discovered on a search-results page.
// Link is the identity; re-application and reconnection reuse the same record.
type Job struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	ApplyMethod string `json:"apply_method,omitempty"`
	Recruiter   string `json:"recruiter,omitempty"`
	Description string `json:"description,omitempty"`
	Applied     bool   `json:"applied"`
	Connected   bool   `json:"connected"`
}

// IsQuickApply reports whether the listing can be applied to in-portal
func (j *Job) IsQuickApply() bool {
	method := strings.TrimSpace(j.ApplyMethod)
	return method == ApplyMethodEasyApply || method == ApplyMethodPromoted
}

// HasRecruiter reports whether a hiring-team profile was captured for the job
func (j *Job) HasRecruiter() bool {
	return j.Recruiter != ""
}

// JobFilter selects which recorded jobs to load from the store
type JobFilter string

const (
	// JobsAll loads every recorded job
	JobsAll JobFilter = "all"
	// JobsNotApplied loads jobs whose last attempt failed
	JobsNotApplied JobFilter = "not-applied"
	// JobsAppliedNotConnected loads applied jobs whose recruiter was not contacted yet
	JobsAppliedNotConnected JobFilter = "applied-not-connected"
)

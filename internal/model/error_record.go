package model

import (
	"fmt"
	"time"
)

// ErrorRecord captures an observed failure for later triage (spec §3.2).
// Named ErrorRecord (not Error) to avoid colliding with the builtin error
// interface throughout the codebase.
type ErrorRecord struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    ErrorSeverity `json:"severity"`
	Category    ErrorCategory `json:"category"`
	Source      string        `json:"source"`
	Context     string        `json:"context,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Resolved    bool          `json:"resolved"`
	Resolution  string        `json:"resolution,omitempty"`
	Timestamps
}

// NewErrorRecord constructs an ErrorRecord, validating spec §3.2's required
// fields.
func NewErrorRecord(title, description string, severity ErrorSeverity, category ErrorCategory, source string, now time.Time) (*ErrorRecord, error) {
	if title == "" || description == "" || source == "" {
		return nil, fmt.Errorf("error record title/description/source must all be non-empty")
	}
	return &ErrorRecord{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Severity:    severity,
		Category:    category,
		Source:      source,
		Timestamps:  NewTimestamps(now),
	}, nil
}

// Resolve sets resolution text and marks the record resolved. Resolution
// text is only meaningful when Resolved=true (spec §3.2).
func (e *ErrorRecord) Resolve(resolution string, now time.Time) {
	e.Resolved = true
	e.Resolution = resolution
	e.Touch(now)
}

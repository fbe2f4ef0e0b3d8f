// Package model defines todozi's entity types: the value objects persisted
// by internal/store and indexed by internal/embedding. Entity types form a
// closed tagged variant (ContentType) per spec.md §9 "Design Notes",
// dispatched on by storage routing and the embedding content-type filter.
package model

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a fresh UUID in canonical 8-4-4-4-12 textual form, used
// as the identity for every entity at creation time (spec §3.1).
func NewID() string {
	return uuid.NewString()
}

// ContentType is the closed set of entity kinds the store and embedding
// service dispatch on.
type ContentType string

const (
	ContentTypeTask     ContentType = "task"
	ContentTypeMemory   ContentType = "memory"
	ContentTypeIdea     ContentType = "idea"
	ContentTypeChunk    ContentType = "chunk"
	ContentTypeError    ContentType = "error"
	ContentTypeReminder ContentType = "reminder"
	ContentTypeFeeling  ContentType = "feeling"
	ContentTypeTraining ContentType = "training"
	ContentTypeSummary  ContentType = "summary"
	ContentTypeAgent    ContentType = "agent"
)

// Timestamps is embedded by every persisted entity. CreatedAt/UpdatedAt are
// UTC and monotonically non-decreasing per entity (spec §3.1).
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimestamps returns a Timestamps with CreatedAt==UpdatedAt==now, UTC.
func NewTimestamps(now time.Time) Timestamps {
	now = now.UTC()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch advances UpdatedAt to now (UTC), never moving it backwards.
func (t *Timestamps) Touch(now time.Time) {
	now = now.UTC()
	if now.Before(t.UpdatedAt) {
		return
	}
	t.UpdatedAt = now
}

package model

import (
	"fmt"
	"time"
)

// Memory is a persisted recollection with provenance (moment/meaning/reason),
// an importance rating, a retention term, and a kind that may carry
// visibility restrictions (spec §3.2).
type Memory struct {
	ID         string           `json:"id"`
	Moment     string           `json:"moment"`
	Meaning    string           `json:"meaning"`
	Reason     string           `json:"reason"`
	Importance MemoryImportance `json:"importance"`
	Term       MemoryTerm       `json:"term"`
	Kind       MemoryKind       `json:"kind"`
	Tags       []string         `json:"tags,omitempty"`
	Timestamps
}

// NewMemory constructs a Memory, validating the required non-empty fields
// from spec §3.2.
func NewMemory(moment, meaning, reason string, importance MemoryImportance, term MemoryTerm, kind MemoryKind, now time.Time) (*Memory, error) {
	if moment == "" || meaning == "" || reason == "" {
		return nil, fmt.Errorf("memory moment/meaning/reason must all be non-empty")
	}
	return &Memory{
		ID:         NewID(),
		Moment:     moment,
		Meaning:    meaning,
		Reason:     reason,
		Importance: importance,
		Term:       term,
		Kind:       kind,
		Timestamps: NewTimestamps(now),
	}, nil
}

// IsHumanVisible reports whether this memory may appear in a result set
// marked "human-visible" — Secret memories are excluded (spec §3.2).
func (m *Memory) IsHumanVisible() bool {
	return m.Kind.Tag != MemoryKindSecret
}

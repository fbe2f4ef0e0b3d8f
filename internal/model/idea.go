package model

import (
	"fmt"
	"time"
)

// Idea is a free-text insight with a visibility scope and importance rating
// (spec §3.2).
type Idea struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Share      IdeaShare      `json:"share"`
	Importance IdeaImportance `json:"importance"`
	Tags       []string       `json:"tags,omitempty"`
	Context    string         `json:"context,omitempty"`
	Timestamps
}

// NewIdea constructs an Idea, validating the required non-empty text field.
func NewIdea(text string, share IdeaShare, importance IdeaImportance, now time.Time) (*Idea, error) {
	if text == "" {
		return nil, fmt.Errorf("idea text must be non-empty")
	}
	return &Idea{
		ID:         NewID(),
		Text:       text,
		Share:      share,
		Importance: importance,
		Timestamps: NewTimestamps(now),
	}, nil
}

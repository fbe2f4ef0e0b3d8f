package model

import (
	"fmt"
	"time"
)

// Feeling, Training, and Summary are parsed and persisted as typed records
// but are terminal: they have no lifecycle beyond create/list/show
// (spec §3.2).

// Feeling is an affective observation.
type Feeling struct {
	ID          string   `json:"id"`
	Emotion     Emotion  `json:"emotion"`
	Intensity   int      `json:"intensity"` // 1-10
	Description string   `json:"description"`
	Context     string   `json:"context,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Timestamps
}

// NewFeeling constructs a Feeling, validating the 1-10 intensity bound.
func NewFeeling(emotion Emotion, intensity int, description string, now time.Time) (*Feeling, error) {
	if description == "" {
		return nil, fmt.Errorf("feeling description must be non-empty")
	}
	if intensity < 1 || intensity > 10 {
		return nil, fmt.Errorf("feeling intensity must be in [1,10], got %d", intensity)
	}
	return &Feeling{
		ID:          NewID(),
		Emotion:     emotion,
		Intensity:   intensity,
		Description: description,
		Timestamps:  NewTimestamps(now),
	}, nil
}

// Training is a prompt/completion pair captured for later fine-tuning or
// few-shot reuse.
type Training struct {
	ID           string   `json:"id"`
	DataType     string   `json:"data_type"`
	Prompt       string   `json:"prompt"`
	Completion   string   `json:"completion"`
	Context      string   `json:"context"`
	Tags         []string `json:"tags,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"` // 0.0-1.0
	Source       string   `json:"source,omitempty"`
	Timestamps
}

// NewTraining constructs a Training record, validating the required fields
// and the optional quality_score bound.
func NewTraining(dataType, prompt, completion, context string, qualityScore *float64, now time.Time) (*Training, error) {
	if dataType == "" || prompt == "" || completion == "" || context == "" {
		return nil, fmt.Errorf("training data_type/prompt/completion/context must all be non-empty")
	}
	if qualityScore != nil && (*qualityScore < 0.0 || *qualityScore > 1.0) {
		return nil, fmt.Errorf("training quality_score must be in [0.0,1.0], got %v", *qualityScore)
	}
	return &Training{
		ID:           NewID(),
		DataType:     dataType,
		Prompt:       prompt,
		Completion:   completion,
		Context:      context,
		QualityScore: qualityScore,
		Timestamps:   NewTimestamps(now),
	}, nil
}

// Summary is a condensed note with a priority.
type Summary struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Priority Priority `json:"priority"`
	Context  string   `json:"context,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Timestamps
}

// NewSummary constructs a Summary, validating the required content field.
func NewSummary(content string, priority Priority, now time.Time) (*Summary, error) {
	if content == "" {
		return nil, fmt.Errorf("summary content must be non-empty")
	}
	return &Summary{
		ID:         NewID(),
		Content:    content,
		Priority:   priority,
		Timestamps: NewTimestamps(now),
	}, nil
}

package model

import (
	"fmt"
	"time"
)

// CodeChunk is a node in the code-generation dependency graph, scoped to a
// ChunkLevel with a token budget (spec §3.2, §4.5).
type CodeChunk struct {
	ID             string      `json:"id"`
	Level          ChunkLevel  `json:"level"`
	Description    string      `json:"description"`
	Dependencies   []string    `json:"dependencies,omitempty"`
	Code           string      `json:"code,omitempty"`
	Tests          string      `json:"tests,omitempty"`
	Status         ChunkStatus `json:"status"`
	TokenEstimate  int         `json:"token_estimate,omitempty"`
	FailureReason  string      `json:"failure_reason,omitempty"`
	Timestamps
}

// NewCodeChunk constructs a CodeChunk, defaulting Status to Pending and
// validating token_estimate against max_tokens(level) (spec §3.2).
func NewCodeChunk(level ChunkLevel, description string, tokenEstimate int, now time.Time) (*CodeChunk, error) {
	if description == "" {
		return nil, fmt.Errorf("code chunk description must be non-empty")
	}
	if max := MaxTokens(level); tokenEstimate > max {
		return nil, fmt.Errorf("code chunk token_estimate %d exceeds max_tokens(%s)=%d", tokenEstimate, level, max)
	}
	return &CodeChunk{
		ID:            NewID(),
		Level:         level,
		Description:   description,
		Status:        ChunkStatusPending,
		TokenEstimate: tokenEstimate,
		Timestamps:    NewTimestamps(now),
	}, nil
}

// LineCount returns the number of lines in the chunk's code, used to update
// ProjectState.LinesWritten on completion (spec §4.5's mark_completed).
func (c *CodeChunk) LineCount() int {
	if c.Code == "" {
		return 0
	}
	n := 1
	for _, r := range c.Code {
		if r == '\n' {
			n++
		}
	}
	return n
}

// ProjectState tracks aggregate code-generation progress for a project
// (spec §4.5).
type ProjectState struct {
	LinesWritten      int               `json:"lines_written"`
	MaxLines          int               `json:"max_lines"`
	CompletedModules  []string          `json:"completed_modules,omitempty"`
	PendingModules    []string          `json:"pending_modules,omitempty"`
	GlobalVariables   map[string]string `json:"global_variables,omitempty"`
	Dependencies      []string          `json:"dependencies,omitempty"`
	StartedAt         time.Time         `json:"started_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewProjectState constructs a ProjectState with the given line budget.
func NewProjectState(maxLines int, now time.Time) *ProjectState {
	n := now.UTC()
	return &ProjectState{
		MaxLines:        maxLines,
		GlobalVariables: make(map[string]string),
		StartedAt:       n,
		UpdatedAt:       n,
	}
}

// ContextWindow carries the sliding window of recently and soon-to-be
// generated code context used to prompt the next chunk (spec §4.5).
type ContextWindow struct {
	PreviousClass        string   `json:"previous_class,omitempty"`
	CurrentClass         string   `json:"current_class,omitempty"`
	NextPlannedClasses   []string `json:"next_planned_classes,omitempty"`
	Imports              []string `json:"imports,omitempty"`
	FunctionSignatures   []string `json:"function_signatures,omitempty"`
	ErrorPatterns        []string `json:"error_patterns,omitempty"`
}

package model

import (
	"fmt"
	"time"
)

// Agent is a schedulable worker, human or automated, tracked by the
// Agent Manager (spec §3.2, §4.4).
type Agent struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Category        AgentCategory      `json:"category"`
	RuntimeStatus   AgentRuntimeStatus `json:"runtime_status"`
	Capabilities    []string           `json:"capabilities,omitempty"`
	Specializations []string           `json:"specializations,omitempty"`
	ModelProvider   string             `json:"model_provider,omitempty"`
	ModelName       string             `json:"model_name,omitempty"`
	Temperature     *float64           `json:"temperature,omitempty"`
	MaxTokens       *int               `json:"max_tokens,omitempty"`
	Tools           []string           `json:"tools,omitempty"`
	SystemPrompt    string             `json:"system_prompt,omitempty"`
	PromptTemplate  string             `json:"prompt_template,omitempty"`
	AutoAssign      bool               `json:"auto_assign,omitempty"`
	RateLimitPerMin int                `json:"rate_limit_per_min,omitempty"`
	Timestamps
}

// NewAgent constructs an Agent, assigning an id if absent and defaulting
// runtime_status to Available (spec §4.4's create_agent).
func NewAgent(id, name, description string, category AgentCategory, now time.Time) (*Agent, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("agent name/description must be non-empty")
	}
	if id == "" {
		id = NewID()
	}
	return &Agent{
		ID:            id,
		Name:          name,
		Description:   description,
		Category:      category,
		RuntimeStatus: AgentStatusAvailable,
		Timestamps:    NewTimestamps(now),
	}, nil
}

// IndexText returns the text indexed into the embedding cache for this agent
// (description plus capabilities, per spec §4.4's create_agent).
func (a *Agent) IndexText() string {
	text := a.Description
	for _, c := range a.Capabilities {
		text += " " + c
	}
	return text
}

// AgentAssignment links an agent to a task within a project. Assignments
// form an append-only log; "active assignment for an agent" is derived by
// scanning for the latest Assigned entry (spec §4.4, §7 glossary note).
type AgentAssignment struct {
	ID          string           `json:"id"`
	AgentID     string           `json:"agent_id"`
	TaskID      string           `json:"task_id"`
	ProjectID   string           `json:"project_id"`
	Status      AssignmentStatus `json:"status"`
	AssignedAt  time.Time        `json:"assigned_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewAgentAssignment constructs an AgentAssignment in the Assigned state.
func NewAgentAssignment(agentID, taskID, projectID string, now time.Time) *AgentAssignment {
	return &AgentAssignment{
		ID:         NewID(),
		AgentID:    agentID,
		TaskID:     taskID,
		ProjectID:  projectID,
		Status:     AssignmentStatusAssigned,
		AssignedAt: now.UTC(),
	}
}

// Complete transitions the assignment to Completed, recording completed_at.
func (a *AgentAssignment) Complete(now time.Time) {
	a.Status = AssignmentStatusCompleted
	t := now.UTC()
	a.CompletedAt = &t
}

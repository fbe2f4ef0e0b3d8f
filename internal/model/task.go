package model

import (
	"fmt"
	"time"
)

// Task is the primary unit of work tracked by todozi (spec §3.2).
type Task struct {
	ID           string       `json:"id"`
	Action       string       `json:"action"`
	TimeEstimate string       `json:"time_estimate"`
	Priority     Priority     `json:"priority"`
	Project      string       `json:"project"`
	Status       TaskStatus   `json:"status"`
	Assignee     *Assignee    `json:"assignee,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`
	Context      string       `json:"context,omitempty"`
	Progress     int          `json:"progress"`
	Timestamps
}

// NewTask constructs a Task with a fresh ID and timestamps, applying
// required-field defaults from spec §3.2 (Project defaults to "general",
// Status defaults to Todo when unset).
func NewTask(action, timeEstimate string, priority Priority, project string, status TaskStatus, now time.Time) (*Task, error) {
	if action == "" {
		return nil, fmt.Errorf("task action must be non-empty")
	}
	if project == "" {
		project = "general"
	}
	if status == "" {
		status = TaskStatusTodo
	}
	t := &Task{
		ID:           NewID(),
		Action:       action,
		TimeEstimate: timeEstimate,
		Priority:     priority,
		Project:      project,
		Status:       status,
		Timestamps:   NewTimestamps(now),
	}
	if status == TaskStatusDone {
		t.Progress = 100
	}
	return t, nil
}

// AddTags folds new tags into the task's tag set, preserving case but
// de-duplicating (spec §3.2: "set of strings, case-preserved, duplicates
// folded").
func (t *Task) AddTags(tags ...string) {
	seen := make(map[string]struct{}, len(t.Tags))
	for _, existing := range t.Tags {
		seen[existing] = struct{}{}
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		t.Tags = append(t.Tags, tag)
	}
}

// SetStatus applies the status-transition invariants from spec §3.2:
// moving to Done sets progress to 100; moving back out of Done requires an
// explicit progress value.
func (t *Task) SetStatus(status TaskStatus, explicitProgress *int, now time.Time) error {
	if status == TaskStatusDone {
		t.Status = status
		t.Progress = 100
		t.Touch(now)
		return nil
	}
	if t.Status == TaskStatusDone && status != TaskStatusDone {
		if explicitProgress == nil {
			return fmt.Errorf("moving task out of Done requires an explicit progress value")
		}
		t.Progress = *explicitProgress
	}
	t.Status = status
	t.Touch(now)
	return nil
}

// Validate checks the invariants of spec §3.2 that don't require store
// access (dependency existence is checked by the store at write time).
func (t *Task) Validate() error {
	if t.Action == "" {
		return fmt.Errorf("task action must be non-empty")
	}
	if t.Status == TaskStatusDone && t.Progress != 100 {
		return fmt.Errorf("task status=Done requires progress=100, got %d", t.Progress)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("task progress must be in [0,100], got %d", t.Progress)
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("task %s cannot depend on itself", t.ID)
		}
	}
	return nil
}

package model

import (
	"fmt"
	"time"
)

// NewProject constructs a Project defaulting Status to Active (spec §3.2).
func NewProject(name, description string, now time.Time) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name must be non-empty")
	}
	return &Project{
		Name:        name,
		Description: description,
		Status:      ProjectStatusActive,
		Timestamps:  NewTimestamps(now),
	}, nil
}

// Project groups tasks under a name. Archiving preserves data; deletion
// tombstones the project and detaches its tasks (spec §3.2, §3.3).
type Project struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Timestamps
}

// Archive transitions Active -> Archived, preserving all associated data.
func (p *Project) Archive(now time.Time) {
	p.Status = ProjectStatusArchived
	p.Touch(now)
}

// Tombstone marks the project Deleted. Callers are responsible for detaching
// the project's tasks to the unassigned project bucket.
func (p *Project) Tombstone(now time.Time) {
	p.Status = ProjectStatusDeleted
	p.Touch(now)
}

package store

import (
	"encoding/json"
	"path/filepath"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

// SaveAgent upserts an Agent.
func (s *Store) SaveAgent(a *model.Agent) error {
	return writeJSONAtomic(filepath.Join(s.agentsDir(), a.ID+".json"), a)
}

// GetAgent loads an Agent by id.
func (s *Store) GetAgent(id string) (*model.Agent, error) {
	var a model.Agent
	if err := s.getEntity(s.agentsDir(), id, "agent", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgents returns every persisted Agent.
func (s *Store) ListAgents() ([]*model.Agent, error) {
	files, err := listJSONFiles(s.agentsDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Agent, 0, len(files))
	for _, f := range files {
		var a model.Agent
		if err := readJSON(f, &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

// DeleteAgent hard-deletes an Agent.
func (s *Store) DeleteAgent(id string) error {
	return deleteFile(filepath.Join(s.agentsDir(), id+".json"), "agent", id)
}

// LoadAssignments reads the append-only assignment log from
// agents/assignments.json. A missing file yields an empty slice.
func (s *Store) LoadAssignments() ([]*model.AgentAssignment, error) {
	data, err := readFileIfExists(s.assignmentsPath())
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "read %s", s.assignmentsPath())
	}
	if data == nil {
		return nil, nil
	}
	var out []*model.AgentAssignment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperror.DeserializationError(s.assignmentsPath(), err)
	}
	return out, nil
}

// SaveAssignments overwrites the assignment log atomically. The Agent
// Manager holds the log in memory and rewrites it in full on every mutation
// (spec §4.4: "Persisted on every mutation").
func (s *Store) SaveAssignments(assignments []*model.AgentAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.assignmentsPath(), assignments)
}

package store

import (
	"path/filepath"

	"github.com/todozi/todozi/internal/model"
)

// SaveChunk upserts a CodeChunk.
func (s *Store) SaveChunk(c *model.CodeChunk) error {
	return writeJSONAtomic(filepath.Join(s.chunksDir(), c.ID+".json"), c)
}

// GetChunk loads a CodeChunk by id.
func (s *Store) GetChunk(id string) (*model.CodeChunk, error) {
	var c model.CodeChunk
	if err := s.getEntity(s.chunksDir(), id, "chunk", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChunks returns every persisted CodeChunk.
func (s *Store) ListChunks() ([]*model.CodeChunk, error) {
	files, err := listJSONFiles(s.chunksDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.CodeChunk, 0, len(files))
	for _, f := range files {
		var c model.CodeChunk
		if err := readJSON(f, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, nil
}

// DeleteChunk hard-deletes a CodeChunk.
func (s *Store) DeleteChunk(id string) error {
	return deleteFile(filepath.Join(s.chunksDir(), id+".json"), "chunk", id)
}

func (s *Store) projectStatePath() string {
	return filepath.Join(s.chunksDir(), "_project_state.json")
}

func (s *Store) contextWindowPath() string {
	return filepath.Join(s.chunksDir(), "_context_window.json")
}

// SaveProjectState persists the code-generation graph's ProjectState.
func (s *Store) SaveProjectState(ps *model.ProjectState) error {
	return writeJSONAtomic(s.projectStatePath(), ps)
}

// LoadProjectState loads the persisted ProjectState, or nil if none exists
// yet.
func (s *Store) LoadProjectState() (*model.ProjectState, error) {
	data, err := readFileIfExists(s.projectStatePath())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var ps model.ProjectState
	if err := unmarshalJSON(data, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// SaveContextWindow persists the code-generation graph's ContextWindow.
func (s *Store) SaveContextWindow(cw *model.ContextWindow) error {
	return writeJSONAtomic(s.contextWindowPath(), cw)
}

// LoadContextWindow loads the persisted ContextWindow, or nil if none
// exists yet.
func (s *Store) LoadContextWindow() (*model.ContextWindow, error) {
	var cw model.ContextWindow
	data, err := readFileIfExists(s.contextWindowPath())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := unmarshalJSON(data, &cw); err != nil {
		return nil, err
	}
	return &cw, nil
}

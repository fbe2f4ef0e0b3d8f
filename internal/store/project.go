package store

import (
	"path/filepath"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

func (s *Store) projectPath(name string) string {
	return filepath.Join(s.projectsDir(), name, "project.json")
}

func (s *Store) archivedProjectPath(name string) string {
	return filepath.Join(s.archivedProjectsDir(), name, "project.json")
}

// SaveProject upserts a Project under projects/<name>/project.json, moving
// it out of the archive directory if it was previously archived and is now
// Active again.
func (s *Store) SaveProject(p *model.Project) error {
	if p.Status == model.ProjectStatusArchived {
		_ = removeFile(s.projectPath(p.Name))
		return writeJSONAtomic(s.archivedProjectPath(p.Name), p)
	}
	_ = removeFile(s.archivedProjectPath(p.Name))
	return writeJSONAtomic(s.projectPath(p.Name), p)
}

// GetProject loads a Project by name, checking the active location first
// and falling back to the archive (spec §3.2: "Archiving preserves data").
func (s *Store) GetProject(name string) (*model.Project, error) {
	var p model.Project
	err := readJSON(s.projectPath(name), &p)
	if err == nil {
		return &p, nil
	}
	if apperror.KindOf(err) != apperror.NotFound {
		return nil, err
	}
	if err := readJSON(s.archivedProjectPath(name), &p); err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			return nil, apperror.EntityNotFound("project", name)
		}
		return nil, err
	}
	return &p, nil
}

// ListProjects returns every Project, active and archived.
func (s *Store) ListProjects() ([]*model.Project, error) {
	var out []*model.Project
	for _, root := range []string{s.projectsDir(), s.archivedProjectsDir()} {
		dirs, err := listSubdirs(root)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			if filepath.Base(dir) == "archive" {
				continue
			}
			var p model.Project
			if err := readJSON(filepath.Join(dir, "project.json"), &p); err != nil {
				if apperror.KindOf(err) == apperror.NotFound {
					continue
				}
				return nil, err
			}
			out = append(out, &p)
		}
	}
	return out, nil
}

// DeleteProject tombstones p (soft delete per spec §3.3), leaving the
// project file in place with Status=Deleted. Callers are responsible for
// detaching the project's tasks.
func (s *Store) DeleteProject(name string) error {
	p, err := s.GetProject(name)
	if err != nil {
		return err
	}
	p.Status = model.ProjectStatusDeleted
	return s.SaveProject(p)
}

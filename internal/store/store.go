package store

import (
	"path/filepath"
	"sync"

	"github.com/todozi/todozi/internal/logging"
)

// Store is the persistence layer rooted at a workspace directory, laid out
// per spec §4.1. It owns no in-memory state beyond a per-root mutex that
// serialises multi-file operations (single-file writes are already
// serialised by the OS rename guarantee; this mutex protects sequences like
// "read index, write index" that span more than one file).
type Store struct {
	root string
	mu   sync.Mutex
}

// New returns a Store rooted at root. It does not create the directory;
// callers that need the workspace to exist up front call EnsureLayout.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the workspace root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) tasksDir(project string) string {
	return filepath.Join(s.root, "tasks", project)
}

func (s *Store) memoriesDir() string   { return filepath.Join(s.root, "memories") }
func (s *Store) ideasDir() string      { return filepath.Join(s.root, "ideas") }
func (s *Store) errorsDir() string     { return filepath.Join(s.root, "errors") }
func (s *Store) remindersDir() string  { return filepath.Join(s.root, "reminders") }
func (s *Store) feelingsDir() string   { return filepath.Join(s.root, "feelings") }
func (s *Store) trainingDir() string   { return filepath.Join(s.root, "training") }
func (s *Store) summariesDir() string  { return filepath.Join(s.root, "summaries") }
func (s *Store) projectsDir() string   { return filepath.Join(s.root, "projects") }
func (s *Store) archivedProjectsDir() string {
	return filepath.Join(s.root, "projects", "archive")
}
func (s *Store) agentsDir() string      { return filepath.Join(s.root, "agents") }
func (s *Store) assignmentsPath() string {
	return filepath.Join(s.root, "agents", "assignments.json")
}
func (s *Store) chunksDir() string     { return filepath.Join(s.root, "chunks") }
func (s *Store) embeddingsDir() string { return filepath.Join(s.root, "embeddings") }
func (s *Store) backupsDir() string    { return filepath.Join(s.root, "backups") }

// EnsureLayout creates every top-level directory spec §4.1 names, so a
// fresh workspace is immediately browsable even before its first write.
func (s *Store) EnsureLayout() error {
	dirs := []string{
		filepath.Join(s.root, "tasks"),
		s.memoriesDir(), s.ideasDir(), s.errorsDir(), s.remindersDir(),
		s.feelingsDir(), s.trainingDir(), s.summariesDir(),
		s.projectsDir(), s.archivedProjectsDir(),
		s.agentsDir(), s.chunksDir(), s.embeddingsDir(), s.backupsDir(),
	}
	for _, d := range dirs {
		if err := ensureDir(d); err != nil {
			return err
		}
		logging.StoreDebug("ensured directory %s", d)
	}
	return nil
}

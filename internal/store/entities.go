package store

import (
	"path/filepath"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

// --- Task (grouped by project: tasks/<project>/<id>.json) ---

func (s *Store) taskPath(project, id string) string {
	return filepath.Join(s.tasksDir(project), id+".json")
}

// SaveTask upserts a Task under its project directory.
func (s *Store) SaveTask(t *model.Task) error {
	return writeJSONAtomic(s.taskPath(t.Project, t.ID), t)
}

// GetTask loads a Task by project and id.
func (s *Store) GetTask(project, id string) (*model.Task, error) {
	var t model.Task
	if err := readJSON(s.taskPath(project, id), &t); err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			return nil, apperror.EntityNotFound("task", id)
		}
		return nil, err
	}
	return &t, nil
}

// ListTasks returns every task under project, or every project's tasks if
// project is empty.
func (s *Store) ListTasks(project string) ([]*model.Task, error) {
	if project != "" {
		return s.listTasksInDir(s.tasksDir(project))
	}
	root := filepath.Join(s.root, "tasks")
	projectDirs, err := listSubdirs(root)
	if err != nil {
		return nil, err
	}
	var out []*model.Task
	for _, dir := range projectDirs {
		tasks, err := s.listTasksInDir(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, tasks...)
	}
	return out, nil
}

func (s *Store) listTasksInDir(dir string) ([]*model.Task, error) {
	files, err := listJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Task, 0, len(files))
	for _, f := range files {
		var t model.Task
		if err := readJSON(f, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, nil
}

// DeleteTask hard-deletes a task file (spec §3.3: tasks delete hard).
func (s *Store) DeleteTask(project, id string) error {
	return deleteFile(s.taskPath(project, id), "task", id)
}

// --- generic single-directory entity kinds ---

// SaveMemory upserts a Memory.
func (s *Store) SaveMemory(m *model.Memory) error {
	return writeJSONAtomic(filepath.Join(s.memoriesDir(), m.ID+".json"), m)
}

// GetMemory loads a Memory by id.
func (s *Store) GetMemory(id string) (*model.Memory, error) {
	var m model.Memory
	if err := s.getEntity(s.memoriesDir(), id, "memory", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMemories returns every persisted Memory.
func (s *Store) ListMemories() ([]*model.Memory, error) {
	files, err := listJSONFiles(s.memoriesDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Memory, 0, len(files))
	for _, f := range files {
		var m model.Memory
		if err := readJSON(f, &m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, nil
}

// DeleteMemory hard-deletes a Memory.
func (s *Store) DeleteMemory(id string) error {
	return deleteFile(filepath.Join(s.memoriesDir(), id+".json"), "memory", id)
}

// SaveIdea upserts an Idea.
func (s *Store) SaveIdea(i *model.Idea) error {
	return writeJSONAtomic(filepath.Join(s.ideasDir(), i.ID+".json"), i)
}

// GetIdea loads an Idea by id.
func (s *Store) GetIdea(id string) (*model.Idea, error) {
	var i model.Idea
	if err := s.getEntity(s.ideasDir(), id, "idea", &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// ListIdeas returns every persisted Idea.
func (s *Store) ListIdeas() ([]*model.Idea, error) {
	files, err := listJSONFiles(s.ideasDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Idea, 0, len(files))
	for _, f := range files {
		var i model.Idea
		if err := readJSON(f, &i); err != nil {
			return nil, err
		}
		out = append(out, &i)
	}
	return out, nil
}

// DeleteIdea hard-deletes an Idea.
func (s *Store) DeleteIdea(id string) error {
	return deleteFile(filepath.Join(s.ideasDir(), id+".json"), "idea", id)
}

// SaveErrorRecord upserts an ErrorRecord.
func (s *Store) SaveErrorRecord(e *model.ErrorRecord) error {
	return writeJSONAtomic(filepath.Join(s.errorsDir(), e.ID+".json"), e)
}

// GetErrorRecord loads an ErrorRecord by id.
func (s *Store) GetErrorRecord(id string) (*model.ErrorRecord, error) {
	var e model.ErrorRecord
	if err := s.getEntity(s.errorsDir(), id, "error", &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListErrorRecords returns every persisted ErrorRecord.
func (s *Store) ListErrorRecords() ([]*model.ErrorRecord, error) {
	files, err := listJSONFiles(s.errorsDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.ErrorRecord, 0, len(files))
	for _, f := range files {
		var e model.ErrorRecord
		if err := readJSON(f, &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, nil
}

// DeleteErrorRecord hard-deletes an ErrorRecord.
func (s *Store) DeleteErrorRecord(id string) error {
	return deleteFile(filepath.Join(s.errorsDir(), id+".json"), "error", id)
}

// SaveReminder upserts a Reminder.
func (s *Store) SaveReminder(r *model.Reminder) error {
	return writeJSONAtomic(filepath.Join(s.remindersDir(), r.ID+".json"), r)
}

// GetReminder loads a Reminder by id.
func (s *Store) GetReminder(id string) (*model.Reminder, error) {
	var r model.Reminder
	if err := s.getEntity(s.remindersDir(), id, "reminder", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReminders returns every persisted Reminder.
func (s *Store) ListReminders() ([]*model.Reminder, error) {
	files, err := listJSONFiles(s.remindersDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Reminder, 0, len(files))
	for _, f := range files {
		var r model.Reminder
		if err := readJSON(f, &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}

// DeleteReminder hard-deletes a Reminder.
func (s *Store) DeleteReminder(id string) error {
	return deleteFile(filepath.Join(s.remindersDir(), id+".json"), "reminder", id)
}

// SaveFeeling upserts a Feeling (terminal: create/list/show only).
func (s *Store) SaveFeeling(f *model.Feeling) error {
	return writeJSONAtomic(filepath.Join(s.feelingsDir(), f.ID+".json"), f)
}

// GetFeeling loads a Feeling by id.
func (s *Store) GetFeeling(id string) (*model.Feeling, error) {
	var f model.Feeling
	if err := s.getEntity(s.feelingsDir(), id, "feeling", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeelings returns every persisted Feeling.
func (s *Store) ListFeelings() ([]*model.Feeling, error) {
	files, err := listJSONFiles(s.feelingsDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Feeling, 0, len(files))
	for _, f := range files {
		var fe model.Feeling
		if err := readJSON(f, &fe); err != nil {
			return nil, err
		}
		out = append(out, &fe)
	}
	return out, nil
}

// SaveTraining upserts a Training record (terminal: create/list/show only).
func (s *Store) SaveTraining(t *model.Training) error {
	return writeJSONAtomic(filepath.Join(s.trainingDir(), t.ID+".json"), t)
}

// GetTraining loads a Training record by id.
func (s *Store) GetTraining(id string) (*model.Training, error) {
	var t model.Training
	if err := s.getEntity(s.trainingDir(), id, "training", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTraining returns every persisted Training record.
func (s *Store) ListTraining() ([]*model.Training, error) {
	files, err := listJSONFiles(s.trainingDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Training, 0, len(files))
	for _, f := range files {
		var t model.Training
		if err := readJSON(f, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, nil
}

// SaveSummary upserts a Summary (terminal: create/list/show only).
func (s *Store) SaveSummary(sm *model.Summary) error {
	return writeJSONAtomic(filepath.Join(s.summariesDir(), sm.ID+".json"), sm)
}

// GetSummary loads a Summary by id.
func (s *Store) GetSummary(id string) (*model.Summary, error) {
	var sm model.Summary
	if err := s.getEntity(s.summariesDir(), id, "summary", &sm); err != nil {
		return nil, err
	}
	return &sm, nil
}

// ListSummaries returns every persisted Summary.
func (s *Store) ListSummaries() ([]*model.Summary, error) {
	files, err := listJSONFiles(s.summariesDir())
	if err != nil {
		return nil, err
	}
	out := make([]*model.Summary, 0, len(files))
	for _, f := range files {
		var sm model.Summary
		if err := readJSON(f, &sm); err != nil {
			return nil, err
		}
		out = append(out, &sm)
	}
	return out, nil
}

// getEntity reads dir/<id>.json into v, translating a missing file into a
// properly-kinded EntityNotFound.
func (s *Store) getEntity(dir, id, kind string, v interface{}) error {
	err := readJSON(filepath.Join(dir, id+".json"), v)
	if err != nil && apperror.KindOf(err) == apperror.NotFound {
		return apperror.EntityNotFound(kind, id)
	}
	return err
}

// deleteFile removes path, translating a missing file into EntityNotFound.
func deleteFile(path, kind, id string) error {
	if err := removeFile(path); err != nil {
		if isNotExist(err) {
			return apperror.EntityNotFound(kind, id)
		}
		return apperror.Wrapf(apperror.Io, err, "delete %s", path)
	}
	return nil
}

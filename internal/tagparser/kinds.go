package tagparser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/todozi/todozi/internal/model"
)

// parseTodozi implements the `todozi`/`tz` grammar: >=5 fields — action,
// time, priority, project, status — plus optional named-field extensions
// (spec §4.2).
func parseTodozi(body string, now time.Time) (*model.Task, error) {
	pos, named := fields(body)
	if len(pos) < 5 {
		return nil, fmt.Errorf("todozi tag requires >=5 fields, got %d", len(pos))
	}
	action, timeEstimate, priorityRaw, project, statusRaw := pos[0], pos[1], pos[2], pos[3], pos[4]

	priority, ok := model.ParsePriority(priorityRaw)
	if !ok {
		return nil, fmt.Errorf("todozi priority: invalid value %q", priorityRaw)
	}
	status, ok := model.ParseTaskStatus(statusRaw)
	if !ok {
		return nil, fmt.Errorf("todozi status: invalid value %q", statusRaw)
	}

	t, err := model.NewTask(action, timeEstimate, priority, project, status, now)
	if err != nil {
		return nil, err
	}
	if tags, ok := named["tags"]; ok {
		t.AddTags(splitCSV(tags)...)
	}
	if ctx, ok := named["context"]; ok {
		t.Context = ctx
	}
	if len(pos) > 5 {
		t.AddTags(splitCSV(pos[5])...)
	}
	return t, nil
}

// parseMemory implements the `memory`/`mm` grammar: >=6 fields — type,
// moment, meaning, reason, importance, term (spec §4.2).
func parseMemory(body string, now time.Time) (*model.Memory, error) {
	pos, _ := fields(body)
	if len(pos) < 6 {
		return nil, fmt.Errorf("memory tag requires >=6 fields, got %d", len(pos))
	}
	typeRaw, moment, meaning, reason, importanceRaw, termRaw := pos[0], pos[1], pos[2], pos[3], pos[4], pos[5]

	kind, ok := model.ParseMemoryKind(typeRaw)
	if !ok {
		return nil, fmt.Errorf("memory type: invalid value %q", typeRaw)
	}
	importance, ok := model.ParseMemoryImportance(importanceRaw)
	if !ok {
		return nil, fmt.Errorf("memory importance: invalid value %q", importanceRaw)
	}
	term, ok := model.ParseMemoryTerm(termRaw)
	if !ok {
		return nil, fmt.Errorf("memory term: invalid value %q", termRaw)
	}
	switch strings.ToLower(strings.TrimSpace(typeRaw)) {
	case "short":
		term = model.MemoryTermShort
	case "long":
		term = model.MemoryTermLong
	}

	return model.NewMemory(moment, meaning, reason, importance, term, kind, now)
}

// parseIdea implements the `idea`/`id` grammar: >=3 fields — text, share,
// importance (spec §4.2).
func parseIdea(body string, now time.Time) (*model.Idea, error) {
	pos, _ := fields(body)
	if len(pos) < 3 {
		return nil, fmt.Errorf("idea tag requires >=3 fields, got %d", len(pos))
	}
	text, shareRaw, importanceRaw := pos[0], pos[1], pos[2]

	share, ok := model.ParseIdeaShare(shareRaw)
	if !ok {
		return nil, fmt.Errorf("idea share: invalid value %q", shareRaw)
	}
	importance, ok := model.ParseIdeaImportance(importanceRaw)
	if !ok {
		return nil, fmt.Errorf("idea importance: invalid value %q", importanceRaw)
	}
	return model.NewIdea(text, share, importance, now)
}

// parseChunk implements the `chunk`/`ch` grammar: >=3 fields — id, level,
// description; optional dependencies (CSV), code (spec §4.2).
//
// The tag's leading "id" field is advisory only: CodeChunk identity is
// always assigned by model.NewCodeChunk, matching every other entity kind.
func parseChunk(body string, now time.Time) (*model.CodeChunk, error) {
	pos, _ := fields(body)
	if len(pos) < 3 {
		return nil, fmt.Errorf("chunk tag requires >=3 fields, got %d", len(pos))
	}
	_, levelRaw, description := pos[0], pos[1], pos[2]

	level, ok := model.ParseChunkLevel(levelRaw)
	if !ok {
		return nil, fmt.Errorf("chunk level: invalid value %q", levelRaw)
	}
	c, err := model.NewCodeChunk(level, description, 0, now)
	if err != nil {
		return nil, err
	}
	if len(pos) > 3 {
		c.Dependencies = splitCSV(pos[3])
	}
	if len(pos) > 4 {
		c.Code = pos[4]
	}
	return c, nil
}

// parseError implements the `error`/`er` grammar: >=5 fields — title,
// description, severity, category, source (spec §4.2).
func parseError(body string, now time.Time) (*model.ErrorRecord, error) {
	pos, _ := fields(body)
	if len(pos) < 5 {
		return nil, fmt.Errorf("error tag requires >=5 fields, got %d", len(pos))
	}
	title, description, severityRaw, categoryRaw, source := pos[0], pos[1], pos[2], pos[3], pos[4]

	severity, ok := model.ParseErrorSeverity(severityRaw)
	if !ok {
		return nil, fmt.Errorf("error severity: invalid value %q", severityRaw)
	}
	category, ok := model.ParseErrorCategory(categoryRaw)
	if !ok {
		return nil, fmt.Errorf("error category: invalid value %q", categoryRaw)
	}
	return model.NewErrorRecord(title, description, severity, category, source, now)
}

// parseReminder implements the `reminder`/`rd` grammar: >=3 fields —
// message, trigger_at (ISO-8601), priority; optional status, tags
// (spec §4.2).
func parseReminder(body string, now time.Time) (*model.Reminder, error) {
	pos, _ := fields(body)
	if len(pos) < 3 {
		return nil, fmt.Errorf("reminder tag requires >=3 fields, got %d", len(pos))
	}
	message, triggerRaw, priorityRaw := pos[0], pos[1], pos[2]

	triggerAt, err := time.Parse(time.RFC3339, triggerRaw)
	if err != nil {
		return nil, fmt.Errorf("reminder trigger_at: %w", err)
	}
	priority, ok := model.ParsePriority(priorityRaw)
	if !ok {
		return nil, fmt.Errorf("reminder priority: invalid value %q", priorityRaw)
	}
	r, err := model.NewReminder(message, triggerAt, priority, now)
	if err != nil {
		return nil, err
	}
	if len(pos) > 3 {
		status, ok := model.ParseReminderStatus(pos[3])
		if !ok {
			return nil, fmt.Errorf("reminder status: invalid value %q", pos[3])
		}
		r.Status = status
	}
	if len(pos) > 4 {
		r.Tags = splitCSV(pos[4])
	}
	return r, nil
}

// parseFeel implements the `feel`/`fe` grammar: >=3 fields — emotion,
// intensity (1-10), description; optional context, tags (spec §4.2).
func parseFeel(body string, now time.Time) (*model.Feeling, error) {
	pos, _ := fields(body)
	if len(pos) < 3 {
		return nil, fmt.Errorf("feel tag requires >=3 fields, got %d", len(pos))
	}
	emotionRaw, intensityRaw, description := pos[0], pos[1], pos[2]

	emotion, ok := model.ParseEmotion(emotionRaw)
	if !ok {
		return nil, fmt.Errorf("feel emotion: invalid value %q", emotionRaw)
	}
	intensity, err := strconv.Atoi(strings.TrimSpace(intensityRaw))
	if err != nil {
		return nil, fmt.Errorf("feel intensity: %w", err)
	}
	f, err := model.NewFeeling(emotion, intensity, description, now)
	if err != nil {
		return nil, err
	}
	if len(pos) > 3 {
		f.Context = pos[3]
	}
	if len(pos) > 4 {
		f.Tags = splitCSV(pos[4])
	}
	return f, nil
}

// parseTrain implements the `train`/`tn` grammar: >=4 fields — data_type,
// prompt, completion, context; optional tags, quality_score, source
// (spec §4.2).
func parseTrain(body string, now time.Time) (*model.Training, error) {
	pos, _ := fields(body)
	if len(pos) < 4 {
		return nil, fmt.Errorf("train tag requires >=4 fields, got %d", len(pos))
	}
	dataType, prompt, completion, context := pos[0], pos[1], pos[2], pos[3]

	var quality *float64
	if len(pos) > 5 {
		quality = parseFloatPtr(pos[5])
	}
	tr, err := model.NewTraining(dataType, prompt, completion, context, quality, now)
	if err != nil {
		return nil, err
	}
	if len(pos) > 4 {
		tr.Tags = splitCSV(pos[4])
	}
	if len(pos) > 6 {
		tr.Source = pos[6]
	}
	return tr, nil
}

// parseSummary implements the `summary`/`sm` grammar: >=2 fields —
// content, priority; optional context, tags (spec §4.2).
func parseSummary(body string, now time.Time) (*model.Summary, error) {
	pos, _ := fields(body)
	if len(pos) < 2 {
		return nil, fmt.Errorf("summary tag requires >=2 fields, got %d", len(pos))
	}
	content, priorityRaw := pos[0], pos[1]

	priority, ok := model.ParsePriority(priorityRaw)
	if !ok {
		return nil, fmt.Errorf("summary priority: invalid value %q", priorityRaw)
	}
	s, err := model.NewSummary(content, priority, now)
	if err != nil {
		return nil, err
	}
	if len(pos) > 2 {
		s.Context = pos[2]
	}
	if len(pos) > 3 {
		s.Tags = splitCSV(pos[3])
	}
	return s, nil
}

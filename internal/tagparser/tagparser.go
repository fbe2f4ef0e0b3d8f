// Package tagparser extracts typed entities from free-form chat text that
// embeds custom markup: the <todozi>, <memory>, <idea>, <chunk>, <error>,
// <reminder>, <feel>, <train>, <summary> tag family and their shorthand
// aliases (tz, mm, id, ch, er, rd, fe, tn, sm).
//
// Parse is a pure function: no I/O, no clock reads beyond the now value the
// caller supplies, deterministic for identical input.
package tagparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/todozi/todozi/internal/model"
)

// canonicalNames maps every accepted tag name (canonical or alias) to its
// canonical form.
var canonicalNames = map[string]string{
	"todozi": "todozi", "tz": "todozi",
	"memory": "memory", "mm": "memory",
	"idea": "idea", "id": "idea",
	"chunk": "chunk", "ch": "chunk",
	"error": "error", "er": "error",
	"reminder": "reminder", "rd": "reminder",
	"feel": "feel", "fe": "feel",
	"train": "train", "tn": "train",
	"summary": "summary", "sm": "summary",
}

// tagPattern matches any <name>...</name> block for a known alias, non-greedy:
// a block ends at the nearest close tag of any known name. The close tag's
// name is not checked against the opening one, so <todozi>...</memory> is
// taken as a todozi block.
var tagPattern = regexp.MustCompile(`(?is)<(todozi|tz|memory|mm|idea|id|chunk|ch|error|er|reminder|rd|feel|fe|train|tn|summary|sm)>(.*?)</(?:todozi|tz|memory|mm|idea|id|chunk|ch|error|er|reminder|rd|feel|fe|train|tn|summary|sm)>`)

// RawTag is a successfully located tag block prior to field validation.
type RawTag struct {
	Kind string
	Body string
}

// ParsedChatContent is the aggregate result of parsing a chat message for
// embedded tags (spec §4.2).
type ParsedChatContent struct {
	Tasks       []*model.Task
	Memories    []*model.Memory
	Ideas       []*model.Idea
	Chunks      []*model.CodeChunk
	Errors      []*model.ErrorRecord
	Reminders   []*model.Reminder
	Feelings    []*model.Feeling
	Training    []*model.Training
	Summaries   []*model.Summary
	RawTags     []RawTag
	CleanedText string
	// Skipped records tag kinds that matched but failed field validation,
	// paired with the reason (spec §4.2's "Parse errors ... logged and
	// that tag is skipped").
	Skipped []SkippedTag
}

// SkippedTag records a tag block that was located but failed validation.
type SkippedTag struct {
	Kind   string
	Reason string
}

// Parse scans text left-to-right for non-overlapping <name>...</name>
// blocks, normalises aliases, field-parses each by kind, and returns the
// aggregate result plus cleaned_text with every successfully parsed block
// removed (spec §4.2). now is used to stamp created_at/updated_at on
// produced entities.
func Parse(text string, now time.Time) *ParsedChatContent {
	result := &ParsedChatContent{}

	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		result.CleanedText = collapseWhitespace(text)
		return result
	}

	var removedSpans [][2]int
	for _, m := range matches {
		start, end := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		bodyStart, bodyEnd := m[4], m[5]

		rawName := strings.ToLower(text[nameStart:nameEnd])
		kind := canonicalNames[rawName]
		body := strings.TrimSpace(text[bodyStart:bodyEnd])

		result.RawTags = append(result.RawTags, RawTag{Kind: kind, Body: body})

		ok, reason := dispatch(result, kind, body, now)
		if ok {
			removedSpans = append(removedSpans, [2]int{start, end})
		} else {
			result.Skipped = append(result.Skipped, SkippedTag{Kind: kind, Reason: reason})
		}
	}

	result.CleanedText = collapseWhitespace(removeSpans(text, removedSpans))
	return result
}

func dispatch(out *ParsedChatContent, kind, body string, now time.Time) (bool, string) {
	switch kind {
	case "todozi":
		t, err := parseTodozi(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Tasks = append(out.Tasks, t)
	case "memory":
		m, err := parseMemory(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Memories = append(out.Memories, m)
	case "idea":
		i, err := parseIdea(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Ideas = append(out.Ideas, i)
	case "chunk":
		c, err := parseChunk(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Chunks = append(out.Chunks, c)
	case "error":
		e, err := parseError(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Errors = append(out.Errors, e)
	case "reminder":
		r, err := parseReminder(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Reminders = append(out.Reminders, r)
	case "feel":
		f, err := parseFeel(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Feelings = append(out.Feelings, f)
	case "train":
		tr, err := parseTrain(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Training = append(out.Training, tr)
	case "summary":
		s, err := parseSummary(body, now)
		if err != nil {
			return false, err.Error()
		}
		out.Summaries = append(out.Summaries, s)
	}
	return true, ""
}

// fields splits a tag body on ';', trimming whitespace from each field, and
// dropping any named-field (key=value) extensions into a side map while
// returning only the positional fields in order.
func fields(body string) (positional []string, named map[string]string) {
	named = make(map[string]string)
	for _, raw := range strings.Split(body, ";") {
		f := strings.TrimSpace(raw)
		if f == "" {
			continue
		}
		if k, v, ok := strings.Cut(f, "="); ok && isIdentifier(strings.TrimSpace(k)) {
			named[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
			continue
		}
		positional = append(positional, f)
	}
	return positional, named
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// collapseWhitespace implements the output side-channel's whitespace rule:
// runs of whitespace are collapsed to a single space, and the result is
// trimmed (spec §4.2).
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// removeSpans deletes the given [start,end) byte ranges from s, assumed
// sorted and non-overlapping in encounter order.
func removeSpans(s string, spans [][2]int) string {
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, sp := range spans {
		b.WriteString(s[prev:sp[0]])
		prev = sp[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

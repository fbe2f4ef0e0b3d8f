package tagparser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todozi/todozi/internal/model"
)

func TestParseTodoziTag(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	result := Parse("Fix bug <todozi>Add login; 2h; high; auth; todo</todozi> now", now)

	require.Len(t, result.Tasks, 1)
	task := result.Tasks[0]
	assert.Equal(t, "Add login", task.Action)
	assert.Equal(t, "2h", task.TimeEstimate)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, "auth", task.Project)
	assert.Equal(t, model.TaskStatusTodo, task.Status)
	assert.Equal(t, "Fix bug now", result.CleanedText)
	assert.Empty(t, result.Skipped)
}

func TestParseShorthandAlias(t *testing.T) {
	now := time.Now()
	result := Parse("<tz>Ship it; 1h; low; ops; done</tz>", now)

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "Ship it", result.Tasks[0].Action)
	assert.Equal(t, 100, result.Tasks[0].Progress)
}

func TestParseInvalidTagIsSkippedNotFatal(t *testing.T) {
	now := time.Now()
	result := Parse("<todozi>bad; fields</todozi> and <memory>standard; m; meaning; reason; low; short</memory>", now)

	assert.Empty(t, result.Tasks)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "todozi", result.Skipped[0].Kind)
	require.Len(t, result.Memories, 1)
}

func TestParseMemoryShortTermForced(t *testing.T) {
	now := time.Now()
	result := Parse("<memory>short; moment; meaning; reason; high; long</memory>", now)

	require.Len(t, result.Memories, 1)
	assert.Equal(t, model.MemoryTermShort, result.Memories[0].Term)
}

func TestParseIdeaShareAliases(t *testing.T) {
	now := time.Now()
	result := Parse("<idea>Big idea; dont share; breakthrough</idea>", now)

	require.Len(t, result.Ideas, 1)
	assert.Equal(t, model.IdeaSharePrivate, result.Ideas[0].Share)
}

func TestParseMultipleTagsNonOverlapping(t *testing.T) {
	now := time.Now()
	text := "a <todozi>A; 1h; low; p; todo</todozi> b <idea>I; share; low</idea> c"
	result := Parse(text, now)

	require.Len(t, result.Tasks, 1)
	require.Len(t, result.Ideas, 1)
	assert.Equal(t, "a b c", result.CleanedText)
}

func TestParseNoTagsReturnsCollapsedCleanedText(t *testing.T) {
	now := time.Now()
	result := Parse("  just   plain   text  ", now)

	assert.Equal(t, "just plain text", result.CleanedText)
	assert.Empty(t, result.RawTags)
}

func TestParseDeterministic(t *testing.T) {
	now := time.Now()
	text := "<feel>happy; 7; great day; morning; focus</feel>"
	a := Parse(text, now)
	b := Parse(text, now)

	require.Len(t, a.Feelings, 1)
	require.Len(t, b.Feelings, 1)
	assert.Equal(t, a.Feelings[0].Emotion, b.Feelings[0].Emotion)
	assert.Equal(t, a.Feelings[0].Intensity, b.Feelings[0].Intensity)
	assert.Equal(t, a.CleanedText, b.CleanedText)
}

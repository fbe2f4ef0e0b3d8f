// Package codegraph drives hierarchical code generation: a dependency DAG
// of code chunks with a status lifecycle, readiness selection under token
// and prerequisite constraints, and project-state accounting (spec §4.5).
package codegraph

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

// Graph is the in-memory code-generation dependency graph, guarded by a
// single mutex (spec §5: "batch transitions should acquire once").
type Graph struct {
	mu            sync.Mutex
	store         *store.Store
	chunks        map[string]*model.CodeChunk
	insertOrder   []string // chunk ids in the order they were added
	projectState  *model.ProjectState
	contextWindow *model.ContextWindow
}

// NewGraph constructs a Graph. Call Load to populate it from disk.
func NewGraph(st *store.Store) *Graph {
	return &Graph{
		store:  st,
		chunks: make(map[string]*model.CodeChunk),
	}
}

// Load populates the graph from persisted chunks, project state, and
// context window.
func (g *Graph) Load(maxLines int, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	chunks, err := g.store.ListChunks()
	if err != nil {
		return err
	}
	// Preserve insertion order by creation time, the closest durable proxy
	// for the order add_chunk was originally called in.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].CreatedAt.Before(chunks[j].CreatedAt) })
	for _, c := range chunks {
		g.chunks[c.ID] = c
		g.insertOrder = append(g.insertOrder, c.ID)
	}

	ps, err := g.store.LoadProjectState()
	if err != nil {
		return err
	}
	if ps == nil {
		ps = model.NewProjectState(maxLines, now)
	}
	g.projectState = ps

	cw, err := g.store.LoadContextWindow()
	if err != nil {
		return err
	}
	if cw == nil {
		cw = &model.ContextWindow{}
	}
	g.contextWindow = cw
	return nil
}

// AddChunk inserts a Pending chunk. If id is empty, a fresh id is generated
// (matching every other entity kind's identity discipline); if id is
// supplied and already present, the call fails with Validation — this is
// what makes add_chunk idempotent-by-rejection on repeat calls (spec §8).
// The call also rejects if the new chunk's dependency edges would
// introduce a cycle among already-known chunks (spec §4.5, §8 invariant 3).
// Dependency ids that don't exist yet are permitted (deferred refs) but the
// chunk simply never becomes ready until they resolve.
func (g *Graph) AddChunk(id string, level model.ChunkLevel, description string, deps []string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryCodeGraph, "AddChunk")
	defer timer.Stop()

	if id != "" {
		if _, exists := g.chunks[id]; exists {
			return nil, apperror.New(apperror.Validation, "chunk "+id+" already exists")
		}
	}
	for _, dep := range deps {
		if dep == id && id != "" {
			return nil, apperror.New(apperror.Validation, "chunk cannot depend on itself")
		}
	}

	c, err := model.NewCodeChunk(level, description, 0, now)
	if err != nil {
		return nil, apperror.Wrap(apperror.Validation, "invalid chunk", err)
	}
	if id != "" {
		c.ID = id
	}
	c.Dependencies = deps

	if g.wouldCycle(c.ID, deps) {
		return nil, apperror.New(apperror.Validation, "adding chunk "+c.ID+" would introduce a dependency cycle")
	}

	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}
	g.chunks[c.ID] = c
	g.insertOrder = append(g.insertOrder, c.ID)
	logging.CodeGraph("added chunk %s (level=%s, deps=%v)", c.ID, c.Level, deps)
	return c, nil
}

// wouldCycle reports whether adding newID -> deps edges creates a cycle,
// via DFS over the existing+new dependency graph (spec §4.5's "tarjan-style
// check"; a full Tarjan SCC pass is unnecessary for single-node insertion —
// a DFS reachability check from each dependency back to newID suffices and
// is what the teacher's dependency-graph code (internal/store/local_graph.go)
// does for single-edge insertion).
func (g *Graph) wouldCycle(newID string, deps []string) bool {
	visited := make(map[string]bool)
	var dfs func(id string) bool
	dfs = func(id string) bool {
		if id == newID {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		c, ok := g.chunks[id]
		if !ok {
			return false
		}
		for _, d := range c.Dependencies {
			if dfs(d) {
				return true
			}
		}
		return false
	}
	for _, dep := range deps {
		if dfs(dep) {
			return true
		}
	}
	return false
}

// GetReadyChunks returns chunks in Pending status whose every dependency is
// Completed or Validated, ordered by level priority then insertion order
// (spec §4.5).
func (g *Graph) GetReadyChunks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readyChunksLocked()
}

func (g *Graph) readyChunksLocked() []string {
	var ready []string
	for _, id := range g.insertOrder {
		c, ok := g.chunks[id]
		if !ok || c.Status != model.ChunkStatusPending {
			continue
		}
		if g.dependenciesSatisfied(c) {
			ready = append(ready, id)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		ci, cj := g.chunks[ready[i]], g.chunks[ready[j]]
		pi, pj := model.LevelPriority(ci.Level), model.LevelPriority(cj.Level)
		if pi != pj {
			return pi < pj
		}
		return g.insertIndex(ready[i]) < g.insertIndex(ready[j])
	})
	return ready
}

func (g *Graph) insertIndex(id string) int {
	for i, x := range g.insertOrder {
		if x == id {
			return i
		}
	}
	return math.MaxInt32
}

func (g *Graph) dependenciesSatisfied(c *model.CodeChunk) bool {
	for _, dep := range c.Dependencies {
		d, ok := g.chunks[dep]
		if !ok || !d.Status.IsDependencySatisfying() {
			return false
		}
	}
	return true
}

// GetNextChunkToWorkOn returns the head of GetReadyChunks, or "" if none are
// ready.
func (g *Graph) GetNextChunkToWorkOn() string {
	ready := g.GetReadyChunks()
	if len(ready) == 0 {
		return ""
	}
	return ready[0]
}

// EstimateTokens implements the documented token-estimation function:
// ceil(chars/4) (spec §4.5's "Budget enforcement").
func EstimateTokens(code string) int {
	if code == "" {
		return 0
	}
	return int(math.Ceil(float64(len(code)) / 4.0))
}

// UpdateCode requires status in {Pending, InProgress, Failed}, sets code,
// transitions to InProgress, and recomputes token_estimate, rejecting
// content whose estimate exceeds max_tokens(level) (spec §4.5).
func (g *Graph) UpdateCode(id, code string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	if !isPreUpdateStatus(c.Status) {
		return nil, apperror.New(apperror.Conflict, fmt.Sprintf("chunk %s in status %s cannot accept code updates", id, c.Status))
	}

	estimate := EstimateTokens(code)
	if max := model.MaxTokens(c.Level); estimate > max {
		return nil, apperror.New(apperror.Validation, fmt.Sprintf("chunk %s token estimate %d exceeds max_tokens(%s)=%d", id, estimate, c.Level, max))
	}

	c.Code = code
	c.TokenEstimate = estimate
	c.Status = model.ChunkStatusInProgress
	c.Touch(now)

	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}
	return c, nil
}

func isPreUpdateStatus(s model.ChunkStatus) bool {
	return s == model.ChunkStatusPending || s == model.ChunkStatusInProgress || s == model.ChunkStatusFailed
}

// UpdateTests sets a chunk's tests field under the same preconditions as
// UpdateCode (spec §4.5).
func (g *Graph) UpdateTests(id, tests string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	if !isPreUpdateStatus(c.Status) {
		return nil, apperror.New(apperror.Conflict, fmt.Sprintf("chunk %s in status %s cannot accept test updates", id, c.Status))
	}
	c.Tests = tests
	c.Touch(now)
	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}
	return c, nil
}

// MarkCompleted requires non-empty code, transitions to Completed, updates
// ProjectState.LinesWritten, and appends to CompletedModules for Module-
// level chunks. A no-op (success) if already Completed, per the
// idempotence law in spec §8.
func (g *Graph) MarkCompleted(id string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	if c.Status == model.ChunkStatusCompleted {
		return c, nil
	}
	if c.Code == "" {
		return nil, apperror.New(apperror.Validation, "chunk "+id+" has no code to complete")
	}
	c.Status = model.ChunkStatusCompleted
	c.Touch(now)
	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}

	if g.projectState != nil {
		g.projectState.LinesWritten += c.LineCount()
		if c.Level == model.ChunkLevelModule {
			g.projectState.CompletedModules = append(g.projectState.CompletedModules, c.ID)
		}
		g.projectState.UpdatedAt = now.UTC()
		if err := g.store.SaveProjectState(g.projectState); err != nil {
			return nil, err
		}
	}
	logging.CodeGraph("completed chunk %s", id)
	return c, nil
}

// MarkValidated requires Completed, transitions to Validated (spec §4.5).
func (g *Graph) MarkValidated(id string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	if c.Status == model.ChunkStatusValidated {
		return c, nil
	}
	if c.Status != model.ChunkStatusCompleted {
		return nil, apperror.New(apperror.Conflict, "chunk "+id+" must be Completed before validation")
	}
	c.Status = model.ChunkStatusValidated
	c.Touch(now)
	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}
	return c, nil
}

// MarkFailed transitions a chunk to Failed, recording reason in its
// FailureReason field (spec §4.5). Only Validated chunks are refused;
// Pending/InProgress/Completed/Failed chunks accept the transition
// (re-failing is idempotent).
func (g *Graph) MarkFailed(id, reason string, now time.Time) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	if c.Status == model.ChunkStatusValidated {
		return nil, apperror.New(apperror.Conflict, "chunk "+id+" is already validated and cannot fail")
	}
	c.Status = model.ChunkStatusFailed
	c.FailureReason = reason
	c.Touch(now)
	if err := g.store.SaveChunk(c); err != nil {
		return nil, err
	}
	logging.Get(logging.CategoryCodeGraph).Warn("chunk %s failed: %s", id, reason)
	return c, nil
}

// GetProjectSummary produces a human-readable report including per-level
// counts and readiness (spec §4.5).
func (g *Graph) GetProjectSummary() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	counts := make(map[model.ChunkLevel]map[model.ChunkStatus]int)
	for _, c := range g.chunks {
		if counts[c.Level] == nil {
			counts[c.Level] = make(map[model.ChunkStatus]int)
		}
		counts[c.Level][c.Status]++
	}

	levels := []model.ChunkLevel{
		model.ChunkLevelProject, model.ChunkLevelModule, model.ChunkLevelClass,
		model.ChunkLevelMethod, model.ChunkLevelBlock,
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Code generation graph: %d chunks\n", len(g.chunks))
	for _, lvl := range levels {
		byStatus, ok := counts[lvl]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "  %s: pending=%d in_progress=%d completed=%d validated=%d failed=%d\n",
			lvl, byStatus[model.ChunkStatusPending], byStatus[model.ChunkStatusInProgress],
			byStatus[model.ChunkStatusCompleted], byStatus[model.ChunkStatusValidated], byStatus[model.ChunkStatusFailed])
	}
	ready := g.readyChunksLocked()
	fmt.Fprintf(&sb, "  ready to work on: %d (%s)\n", len(ready), strings.Join(ready, ", "))
	if g.projectState != nil {
		fmt.Fprintf(&sb, "  lines written: %d/%d\n", g.projectState.LinesWritten, g.projectState.MaxLines)
	}
	return sb.String()
}

// ProjectState returns the current project state snapshot.
func (g *Graph) ProjectState() *model.ProjectState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.projectState
}

// ContextWindow returns the current context window snapshot.
func (g *Graph) ContextWindow() *model.ContextWindow {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.contextWindow
}

// SetContextWindow persists an updated context window.
func (g *Graph) SetContextWindow(cw *model.ContextWindow) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contextWindow = cw
	return g.store.SaveContextWindow(cw)
}

// GetChunk returns a chunk by id.
func (g *Graph) GetChunk(id string) (*model.CodeChunk, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.chunks[id]
	if !ok {
		return nil, apperror.EntityNotFound("chunk", id)
	}
	return c, nil
}

// ListChunks returns every chunk in insertion order.
func (g *Graph) ListChunks() []*model.CodeChunk {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.CodeChunk, 0, len(g.insertOrder))
	for _, id := range g.insertOrder {
		out = append(out, g.chunks[id])
	}
	return out
}

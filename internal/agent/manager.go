// Package agent maintains the in-memory agent registry and assignment log,
// and implements the selection algorithm that matches agents to tasks under
// availability and capability constraints (spec §4.4).
package agent

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

// Indexer is the subset of the embedding service's surface the manager
// needs to re-index an agent's description+capabilities on create/update
// (spec §4.4: "indexes description+capabilities into the embedding cache
// under type Agent"). Defined here rather than imported from package
// embedding to avoid a store<->embedding<->agent import cycle; the concrete
// *embedding.Service satisfies it.
type Indexer interface {
	IndexText(contentID string, contentType model.ContentType, text string, tags []string) error
}

// noopIndexer discards indexing requests; used when the manager is built
// without an embedding service wired in (e.g. pure CLI operations that
// don't need semantic search).
type noopIndexer struct{}

func (noopIndexer) IndexText(string, model.ContentType, string, []string) error { return nil }

// Manager is the in-memory agent registry plus append-only assignment log
// described by spec §4.4. All mutations persist immediately via the store
// and are serialised by a single mutex (spec §5: "guarded by a single
// mutex; operations are short").
type Manager struct {
	mu          sync.Mutex
	store       *store.Store
	indexer     Indexer
	agents      map[string]*model.Agent
	assignments []*model.AgentAssignment
}

// NewManager constructs a Manager. Call Load to populate it from disk
// before use.
func NewManager(st *store.Store, indexer Indexer) *Manager {
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &Manager{
		store:   st,
		indexer: indexer,
		agents:  make(map[string]*model.Agent),
	}
}

// defaultAgentSeeds is the fixed default set seeded on a fresh workspace
// (spec §4.4: "if empty, seed with a fixed default set").
var defaultAgentSeeds = []struct {
	name, description string
	category          model.AgentCategory
	specializations    []string
}{
	{"planner", "Breaks down goals into actionable tasks and tracks dependencies", model.AgentCategoryManagement, []string{"planning", "decomposition"}},
	{"coder", "Implements features and fixes in source code", model.AgentCategoryTechnical, []string{"coding", "implementation"}},
	{"tester", "Writes and runs tests, reports on coverage and regressions", model.AgentCategoryTechnical, []string{"testing", "qa"}},
	{"designer", "Designs interfaces and user experience flows", model.AgentCategoryCreative, []string{"design", "ux"}},
	{"devops", "Manages deployment, infrastructure, and operational concerns", model.AgentCategoryTechnical, []string{"devops", "infrastructure"}},
}

// Load populates the manager from disk. If no agents exist yet, it seeds
// the fixed default set (spec §4.4).
func (m *Manager) Load(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryAgent, "Load")
	defer timer.Stop()

	agents, err := m.store.ListAgents()
	if err != nil {
		return err
	}
	assignments, err := m.store.LoadAssignments()
	if err != nil {
		return err
	}
	m.assignments = assignments

	if len(agents) == 0 {
		logging.Agent("no agents on disk, seeding default set")
		for _, seed := range defaultAgentSeeds {
			a, err := model.NewAgent("", seed.name, seed.description, seed.category, now)
			if err != nil {
				return err
			}
			a.Specializations = seed.specializations
			if err := m.store.SaveAgent(a); err != nil {
				return err
			}
			agents = append(agents, a)
		}
	}

	m.agents = make(map[string]*model.Agent, len(agents))
	for _, a := range agents {
		m.agents[a.ID] = a
	}
	logging.Agent("loaded %d agents, %d assignments", len(m.agents), len(m.assignments))
	return nil
}

// CreateAgent assigns an id if absent, sets runtime_status=Available,
// persists, and indexes description+capabilities (spec §4.4).
func (m *Manager) CreateAgent(a *model.Agent, now time.Time) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = model.NewID()
	}
	if a.Name == "" || a.Description == "" {
		return nil, apperror.New(apperror.Validation, "agent name/description must be non-empty")
	}
	a.RuntimeStatus = model.AgentStatusAvailable
	if a.CreatedAt.IsZero() {
		a.Timestamps = model.NewTimestamps(now)
	}

	if err := m.store.SaveAgent(a); err != nil {
		return nil, err
	}
	m.agents[a.ID] = a
	if err := m.indexer.IndexText(a.ID, model.ContentTypeAgent, a.IndexText(), a.Capabilities); err != nil {
		logging.Get(logging.CategoryAgent).Warn("failed to index agent %s: %v", a.ID, err)
	}
	logging.Agent("created agent %s (%s)", a.ID, a.Name)
	return a, nil
}

// UpdateAgent applies a field-level patch. Only non-nil patch fields
// change; text-field changes trigger re-indexing (spec §4.4).
type AgentPatch struct {
	Name            *string
	Description     *string
	Category        *model.AgentCategory
	Capabilities    []string
	Specializations []string
	ModelProvider   *string
	ModelName       *string
	SystemPrompt    *string
}

func (m *Manager) UpdateAgent(id string, patch AgentPatch, now time.Time) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.agents[id]
	if !ok {
		return nil, apperror.EntityNotFound("agent", id)
	}

	textChanged := false
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Description != nil {
		a.Description = *patch.Description
		textChanged = true
	}
	if patch.Category != nil {
		a.Category = *patch.Category
	}
	if patch.Capabilities != nil {
		a.Capabilities = patch.Capabilities
		textChanged = true
	}
	if patch.Specializations != nil {
		a.Specializations = patch.Specializations
	}
	if patch.ModelProvider != nil {
		a.ModelProvider = *patch.ModelProvider
	}
	if patch.ModelName != nil {
		a.ModelName = *patch.ModelName
	}
	if patch.SystemPrompt != nil {
		a.SystemPrompt = *patch.SystemPrompt
	}
	a.Touch(now)

	if err := m.store.SaveAgent(a); err != nil {
		return nil, err
	}
	if textChanged {
		if err := m.indexer.IndexText(a.ID, model.ContentTypeAgent, a.IndexText(), a.Capabilities); err != nil {
			logging.Get(logging.CategoryAgent).Warn("failed to re-index agent %s: %v", a.ID, err)
		}
	}
	return a, nil
}

// DeleteAgent fails if any assignment with that agent has status=Assigned
// (spec §4.4).
func (m *Manager) DeleteAgent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agents[id]; !ok {
		return apperror.EntityNotFound("agent", id)
	}
	for _, as := range m.assignments {
		if as.AgentID == id && as.Status == model.AssignmentStatusAssigned {
			return apperror.New(apperror.Conflict, "agent has an active assignment and cannot be deleted")
		}
	}
	if err := m.store.DeleteAgent(id); err != nil {
		return err
	}
	delete(m.agents, id)
	return nil
}

// GetAgent returns the in-memory agent by id.
func (m *Manager) GetAgent(id string) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, apperror.EntityNotFound("agent", id)
	}
	return a, nil
}

// ListAgents returns every registered agent, sorted by id for determinism.
func (m *Manager) ListAgents() []*model.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// activeAssignment returns the most recent Assigned assignment for agentID,
// or nil. Must be called with m.mu held.
func (m *Manager) activeAssignment(agentID string) *model.AgentAssignment {
	var latest *model.AgentAssignment
	for _, as := range m.assignments {
		if as.AgentID != agentID || as.Status != model.AssignmentStatusAssigned {
			continue
		}
		if latest == nil || as.AssignedAt.After(latest.AssignedAt) {
			latest = as
		}
	}
	return latest
}

// Assign creates an AgentAssignment and marks the agent Busy. Preconditions:
// the agent exists and is Available (spec §4.4).
func (m *Manager) Assign(taskID, agentID, projectID string, now time.Time) (*model.AgentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.agents[agentID]
	if !ok {
		return nil, apperror.EntityNotFound("agent", agentID)
	}
	if a.RuntimeStatus != model.AgentStatusAvailable {
		return nil, apperror.New(apperror.Conflict, "agent "+agentID+" is not available")
	}

	as := model.NewAgentAssignment(agentID, taskID, projectID, now)
	newAssignments := append(append([]*model.AgentAssignment{}, m.assignments...), as)
	if err := m.store.SaveAssignments(newAssignments); err != nil {
		return nil, err
	}
	a.RuntimeStatus = model.AgentStatusBusy
	a.Touch(now)
	if err := m.store.SaveAgent(a); err != nil {
		return nil, err
	}
	m.assignments = newAssignments
	logging.Agent("assigned task %s to agent %s (assignment %s)", taskID, agentID, as.ID)
	return as, nil
}

// CompleteAssignment finds the most recent Assigned assignment for taskID,
// marks it Completed, and returns the agent to Available (spec §4.4).
func (m *Manager) CompleteAssignment(taskID string, now time.Time) (*model.AgentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var target *model.AgentAssignment
	for _, as := range m.assignments {
		if as.TaskID != taskID || as.Status != model.AssignmentStatusAssigned {
			continue
		}
		if target == nil || as.AssignedAt.After(target.AssignedAt) {
			target = as
		}
	}
	if target == nil {
		return nil, apperror.New(apperror.NotFound, "no active assignment for task "+taskID)
	}
	target.Complete(now)

	if err := m.store.SaveAssignments(m.assignments); err != nil {
		return nil, err
	}
	if a, ok := m.agents[target.AgentID]; ok {
		a.RuntimeStatus = model.AgentStatusAvailable
		a.Touch(now)
		if err := m.store.SaveAgent(a); err != nil {
			return nil, err
		}
	}
	logging.Agent("completed assignment %s for task %s", target.ID, taskID)
	return target, nil
}

// FindBestAgent selects among Available agents whose specializations
// contain requiredSpec (case-insensitive), ranking by preferredCapability
// presence desc, then updated_at desc (spec §4.4). Returns nil if no
// candidate qualifies.
func (m *Manager) FindBestAgent(requiredSpec string, preferredCapability string) *model.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()

	requiredSpec = strings.ToLower(requiredSpec)
	var candidates []*model.Agent
	for _, a := range m.agents {
		if a.RuntimeStatus != model.AgentStatusAvailable {
			continue
		}
		if !containsFold(a.Specializations, requiredSpec) {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci := containsFold(candidates[i].Capabilities, strings.ToLower(preferredCapability))
		cj := containsFold(candidates[j].Capabilities, strings.ToLower(preferredCapability))
		if preferredCapability != "" && ci != cj {
			return ci && !cj
		}
		return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
	})
	return candidates[0]
}

func containsFold(items []string, target string) bool {
	if target == "" {
		return false
	}
	for _, it := range items {
		if strings.ToLower(it) == target {
			return true
		}
	}
	return false
}

// Statistics summarises the registry and assignment log (spec §4.4).
type Statistics struct {
	CountByStatus   map[model.AgentRuntimeStatus]int
	TotalAssignments int
	Completed        int
	CompletionRate   float64
}

func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Statistics{CountByStatus: make(map[model.AgentRuntimeStatus]int)}
	for _, a := range m.agents {
		stats.CountByStatus[a.RuntimeStatus]++
	}
	stats.TotalAssignments = len(m.assignments)
	for _, as := range m.assignments {
		if as.Status == model.AssignmentStatusCompleted {
			stats.Completed++
		}
	}
	if stats.TotalAssignments > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.TotalAssignments)
	}
	return stats
}

// Assignments returns a copy of the full assignment log.
func (m *Manager) Assignments() []*model.AgentAssignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AgentAssignment, len(m.assignments))
	copy(out, m.assignments)
	return out
}

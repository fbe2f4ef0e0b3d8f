package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/agent"
	"github.com/todozi/todozi/internal/model"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Agent management (add, list, show, update, delete, assign, complete, stats)",
}

func (a *app) agentManager(useEmbedding bool) (*agent.Manager, error) {
	var indexer agent.Indexer
	if useEmbedding {
		svc, err := a.embeddingService()
		if err != nil {
			return nil, err
		}
		indexer = svc
	}
	mgr := agent.NewManager(a.store, indexer)
	if err := mgr.Load(time.Now()); err != nil {
		return nil, err
	}
	return mgr, nil
}

func parseAgentCategory(s string) (model.AgentCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "technical":
		return model.AgentCategoryTechnical, true
	case "creative":
		return model.AgentCategoryCreative, true
	case "management":
		return model.AgentCategoryManagement, true
	case "general", "":
		return model.AgentCategoryGeneral, true
	default:
		return "", false
	}
}

var (
	agentCategory        string
	agentCapabilities    []string
	agentSpecializations []string
)

var agentAddCmd = &cobra.Command{
	Use:   "add <name> <description>",
	Short: "Register an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(true)
		if err != nil {
			return err
		}
		cat, ok := parseAgentCategory(agentCategory)
		if !ok {
			return fmt.Errorf("unknown agent category %q", agentCategory)
		}
		ag, err := model.NewAgent("", args[0], args[1], cat, time.Now())
		if err != nil {
			return err
		}
		ag.Capabilities = agentCapabilities
		ag.Specializations = agentSpecializations
		created, err := mgr.CreateAgent(ag, time.Now())
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		return printJSON(mgr.ListAgents())
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an agent by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		ag, err := mgr.GetAgent(args[0])
		if err != nil {
			return err
		}
		return printJSON(ag)
	},
}

var agentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an agent's description, category, or capabilities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(true)
		if err != nil {
			return err
		}
		var patch agent.AgentPatch
		if desc, _ := cmd.Flags().GetString("description"); desc != "" {
			patch.Description = &desc
		}
		if cat, _ := cmd.Flags().GetString("category"); cat != "" {
			parsed, ok := parseAgentCategory(cat)
			if !ok {
				return fmt.Errorf("unknown agent category %q", cat)
			}
			patch.Category = &parsed
		}
		if len(agentCapabilities) > 0 {
			patch.Capabilities = agentCapabilities
		}
		if len(agentSpecializations) > 0 {
			patch.Specializations = agentSpecializations
		}
		updated, err := mgr.UpdateAgent(args[0], patch, time.Now())
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an agent (fails if it holds an active assignment)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		if err := mgr.DeleteAgent(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted agent %s\n", args[0])
		return nil
	},
}

var agentAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <agent-id> [project]",
	Short: "Assign a task to an agent",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		project := ""
		if len(args) > 2 {
			project = args[2]
		}
		as, err := mgr.Assign(args[0], args[1], project, time.Now())
		if err != nil {
			return err
		}
		return printJSON(as)
	},
}

var agentCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Complete the active assignment for a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		as, err := mgr.CompleteAssignment(args[0], time.Now())
		if err != nil {
			return err
		}
		return printJSON(as)
	},
}

var agentFindCmd = &cobra.Command{
	Use:   "find <specialization> [preferred-capability]",
	Short: "Find the best available agent for a specialization",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		preferred := ""
		if len(args) > 1 {
			preferred = args[1]
		}
		best := mgr.FindBestAgent(args[0], preferred)
		if best == nil {
			return fmt.Errorf("no available agent matches specialization %q", args[0])
		}
		return printJSON(best)
	},
}

var agentStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show agent registry and assignment statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		return printJSON(mgr.Statistics())
	},
}

var agentAssignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List every recorded assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		mgr, err := a.agentManager(false)
		if err != nil {
			return err
		}
		return printJSON(mgr.Assignments())
	},
}

func init() {
	agentAddCmd.Flags().StringVar(&agentCategory, "category", "technical", "Agent category (technical|creative|management|general)")
	agentAddCmd.Flags().StringSliceVar(&agentCapabilities, "capabilities", nil, "Comma-separated capabilities")
	agentAddCmd.Flags().StringSliceVar(&agentSpecializations, "specializations", nil, "Comma-separated specializations")

	agentUpdateCmd.Flags().String("description", "", "New description")
	agentUpdateCmd.Flags().String("category", "", "New category (technical|creative|management|general)")
	agentUpdateCmd.Flags().StringSliceVar(&agentCapabilities, "capabilities", nil, "Replacement capabilities")
	agentUpdateCmd.Flags().StringSliceVar(&agentSpecializations, "specializations", nil, "Replacement specializations")

	agentCmd.AddCommand(agentAddCmd, agentListCmd, agentShowCmd, agentUpdateCmd, agentDeleteCmd, agentAssignCmd, agentCompleteCmd, agentFindCmd, agentStatsCmd, agentAssignmentsCmd)
}

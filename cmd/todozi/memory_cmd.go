package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/notify"
)

// -- memory --------------------------------------------------------------

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Memory CRUD (add, list, show, delete)",
}

var (
	memoryImportance string
	memoryTerm       string
	memoryKind       string
	memoryTags       []string
)

var memoryAddCmd = &cobra.Command{
	Use:   "add <moment> <meaning> <reason>",
	Short: "Record a memory",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		importance, _ := model.ParseMemoryImportance(memoryImportance)
		term, _ := model.ParseMemoryTerm(memoryTerm)
		kind, ok := model.ParseMemoryKind(memoryKind)
		if !ok {
			return fmt.Errorf("unknown memory kind %q", memoryKind)
		}
		m, err := model.NewMemory(args[0], args[1], args[2], importance, term, kind, time.Now())
		if err != nil {
			return err
		}
		m.Tags = memoryTags
		if err := a.store.SaveMemory(m); err != nil {
			return err
		}
		return printJSON(m)
	},
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ms, err := a.store.ListMemories()
		if err != nil {
			return err
		}
		return printJSON(ms)
	},
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a memory by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		m, err := a.store.GetMemory(args[0])
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteMemory(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted memory %s\n", args[0])
		return nil
	},
}

// -- idea ------------------------------------------------------------------

var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Idea CRUD (add, list, show, delete)",
}

var (
	ideaShare      string
	ideaImportance string
	ideaTags       []string
	ideaContext    string
)

var ideaAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Record an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		share, ok := model.ParseIdeaShare(ideaShare)
		if !ok {
			return fmt.Errorf("unknown idea share %q", ideaShare)
		}
		importance, _ := model.ParseIdeaImportance(ideaImportance)
		idea, err := model.NewIdea(args[0], share, importance, time.Now())
		if err != nil {
			return err
		}
		idea.Tags = ideaTags
		idea.Context = ideaContext
		if err := a.store.SaveIdea(idea); err != nil {
			return err
		}
		return printJSON(idea)
	},
}

var ideaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ideas",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ideas, err := a.store.ListIdeas()
		if err != nil {
			return err
		}
		return printJSON(ideas)
	},
}

var ideaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an idea by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		idea, err := a.store.GetIdea(args[0])
		if err != nil {
			return err
		}
		return printJSON(idea)
	},
}

var ideaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteIdea(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted idea %s\n", args[0])
		return nil
	},
}

// -- error -------------------------------------------------------------

var errorCmd = &cobra.Command{
	Use:   "error",
	Short: "Error record CRUD (add, list, show, resolve, delete)",
}

var (
	errorSeverity string
	errorCategory string
	errorSource   string
	errorTags     []string
)

var errorAddCmd = &cobra.Command{
	Use:   "add <title> <description>",
	Short: "Record an observed error",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		severity, _ := model.ParseErrorSeverity(errorSeverity)
		category, _ := model.ParseErrorCategory(errorCategory)
		e, err := model.NewErrorRecord(args[0], args[1], severity, category, errorSource, time.Now())
		if err != nil {
			return err
		}
		e.Tags = errorTags
		if err := a.store.SaveErrorRecord(e); err != nil {
			return err
		}
		return printJSON(e)
	},
}

var errorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List error records",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		errs, err := a.store.ListErrorRecords()
		if err != nil {
			return err
		}
		return printJSON(errs)
	},
}

var errorShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an error record by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		e, err := a.store.GetErrorRecord(args[0])
		if err != nil {
			return err
		}
		return printJSON(e)
	},
}

var errorResolveCmd = &cobra.Command{
	Use:   "resolve <id> <resolution>",
	Short: "Mark an error record resolved",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		e, err := a.store.GetErrorRecord(args[0])
		if err != nil {
			return err
		}
		e.Resolve(args[1], time.Now())
		if err := a.store.SaveErrorRecord(e); err != nil {
			return err
		}
		return printJSON(e)
	},
}

var errorDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an error record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteErrorRecord(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted error record %s\n", args[0])
		return nil
	},
}

// -- reminder ----------------------------------------------------------

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Reminder CRUD (add, list, show, activate, delete)",
}

var (
	reminderPriority string
	reminderAt       string
	reminderRepeat   int
	reminderTags     []string
)

var reminderAddCmd = &cobra.Command{
	Use:   "add <message>",
	Short: "Schedule a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		triggerAt, err := time.Parse(time.RFC3339, reminderAt)
		if err != nil {
			return fmt.Errorf("invalid --at time (want RFC3339): %w", err)
		}
		priority, _ := model.ParsePriority(reminderPriority)
		r, err := model.NewReminder(args[0], triggerAt, priority, time.Now())
		if err != nil {
			return err
		}
		if reminderRepeat > 0 {
			d := secondsToDuration(reminderRepeat)
			r.RepeatInterval = &d
		}
		r.Tags = reminderTags
		if err := a.store.SaveReminder(r); err != nil {
			return err
		}
		return printJSON(r)
	},
}

var reminderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		rs, err := a.store.ListReminders()
		if err != nil {
			return err
		}
		return printJSON(rs)
	},
}

var reminderShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a reminder by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		r, err := a.store.GetReminder(args[0])
		if err != nil {
			return err
		}
		return printJSON(r)
	},
}

// reminderActivateCmd transitions a due Pending reminder to Active and
// best-effort fires a desktop toast (failures are logged, not fatal, since
// notification delivery is outside the engine's durability guarantees).
var reminderActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate a pending reminder and fire a desktop notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		r, err := a.store.GetReminder(args[0])
		if err != nil {
			return err
		}
		r.Activate(time.Now())
		if err := a.store.SaveReminder(r); err != nil {
			return err
		}
		notifier := notify.NewToastNotifier("")
		if err := notifier.NotifyReminderActivated(r); err != nil {
			fmt.Printf("warning: notification failed: %v\n", err)
		}
		return printJSON(r)
	},
}

var reminderDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteReminder(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted reminder %s\n", args[0])
		return nil
	},
}

func init() {
	memoryAddCmd.Flags().StringVar(&memoryImportance, "importance", "medium", "Importance (low|medium|high|critical)")
	memoryAddCmd.Flags().StringVar(&memoryTerm, "term", "short", "Term (short|long)")
	memoryAddCmd.Flags().StringVar(&memoryKind, "kind", "standard", "Kind (standard|secret|human|<emotion>)")
	memoryAddCmd.Flags().StringSliceVar(&memoryTags, "tags", nil, "Comma-separated tags")
	memoryCmd.AddCommand(memoryAddCmd, memoryListCmd, memoryShowCmd, memoryDeleteCmd)

	ideaAddCmd.Flags().StringVar(&ideaShare, "share", "private", "Visibility (private|team|public)")
	ideaAddCmd.Flags().StringVar(&ideaImportance, "importance", "medium", "Importance (low|medium|high|breakthrough)")
	ideaAddCmd.Flags().StringSliceVar(&ideaTags, "tags", nil, "Comma-separated tags")
	ideaAddCmd.Flags().StringVar(&ideaContext, "context", "", "Free-text context")
	ideaCmd.AddCommand(ideaAddCmd, ideaListCmd, ideaShowCmd, ideaDeleteCmd)

	errorAddCmd.Flags().StringVar(&errorSeverity, "severity", "medium", "Severity (low|medium|high|critical)")
	errorAddCmd.Flags().StringVar(&errorCategory, "category", "", "Category")
	errorAddCmd.Flags().StringVar(&errorSource, "source", "", "Originating source")
	errorAddCmd.Flags().StringSliceVar(&errorTags, "tags", nil, "Comma-separated tags")
	errorCmd.AddCommand(errorAddCmd, errorListCmd, errorShowCmd, errorResolveCmd, errorDeleteCmd)

	reminderAddCmd.Flags().StringVar(&reminderPriority, "priority", "medium", "Priority (low|medium|high|critical|urgent)")
	reminderAddCmd.Flags().StringVar(&reminderAt, "at", "", "Trigger instant, RFC3339 (required)")
	reminderAddCmd.Flags().IntVar(&reminderRepeat, "repeat-secs", 0, "Repeat interval in seconds (0 = one-shot)")
	reminderAddCmd.Flags().StringSliceVar(&reminderTags, "tags", nil, "Comma-separated tags")
	_ = reminderAddCmd.MarkFlagRequired("at")
	reminderCmd.AddCommand(reminderAddCmd, reminderListCmd, reminderShowCmd, reminderActivateCmd, reminderDeleteCmd)
}

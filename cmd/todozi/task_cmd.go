package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/model"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task CRUD (add, list, show, update, complete, delete)",
}

var (
	taskPriority string
	taskProject  string
	taskEstimate string
	taskTags     []string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <action>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		priority, _ := model.ParsePriority(taskPriority)
		now := time.Now()
		t, err := model.NewTask(args[0], taskEstimate, priority, taskProject, "", now)
		if err != nil {
			return err
		}
		t.AddTags(taskTags...)
		if err := a.store.SaveTask(t); err != nil {
			return err
		}
		return printJSON(t)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally scoped to --project",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		tasks, err := a.store.ListTasks(taskProject)
		if err != nil {
			return err
		}
		return printJSON(tasks)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		t, err := a.store.GetTask(taskProject, args[0])
		if err != nil {
			return err
		}
		return printJSON(t)
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task's status and/or progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		t, err := a.store.GetTask(taskProject, args[0])
		if err != nil {
			return err
		}
		statusStr, _ := cmd.Flags().GetString("status")
		progressSet, _ := cmd.Flags().GetBool("progress-set")
		progress, _ := cmd.Flags().GetInt("progress")

		now := time.Now()
		if statusStr != "" {
			status, ok := model.ParseTaskStatus(statusStr)
			if !ok {
				return fmt.Errorf("unknown task status %q", statusStr)
			}
			var explicit *int
			if progressSet {
				explicit = &progress
			}
			if err := t.SetStatus(status, explicit, now); err != nil {
				return err
			}
		} else if progressSet {
			t.Progress = progress
			t.Touch(now)
		}
		t.AddTags(taskTags...)
		if err := t.Validate(); err != nil {
			return err
		}
		if err := a.store.SaveTask(t); err != nil {
			return err
		}
		return printJSON(t)
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a task Done (progress -> 100)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		t, err := a.store.GetTask(taskProject, args[0])
		if err != nil {
			return err
		}
		if err := t.SetStatus(model.TaskStatusDone, nil, time.Now()); err != nil {
			return err
		}
		if err := a.store.SaveTask(t); err != nil {
			return err
		}
		return printJSON(t)
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Hard-delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteTask(taskProject, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted task %s\n", args[0])
		return nil
	},
}

func init() {
	taskCmd.PersistentFlags().StringVar(&taskProject, "project", "", "Project scope")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (low|medium|high|critical|urgent)")
	taskAddCmd.Flags().StringVar(&taskEstimate, "estimate", "", "Free-text time estimate")
	taskAddCmd.Flags().StringSliceVar(&taskTags, "tags", nil, "Comma-separated tags")
	taskUpdateCmd.Flags().String("status", "", "New status (todo|in_progress|blocked|done|cancelled)")
	taskUpdateCmd.Flags().Int("progress", 0, "Explicit progress [0,100]")
	taskUpdateCmd.Flags().Bool("progress-set", false, "Set when --progress should be applied")
	taskUpdateCmd.Flags().StringSliceVar(&taskTags, "tags", nil, "Additional tags to add")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskUpdateCmd, taskCompleteCmd, taskDeleteCmd)
}

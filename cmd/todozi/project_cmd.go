package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/model"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management (add, list, show, archive, delete)",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name> [description]",
	Short: "Create a project",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		desc := ""
		if len(args) > 1 {
			desc = args[1]
		}
		p, err := model.NewProject(args[0], desc, time.Now())
		if err != nil {
			return err
		}
		if err := a.store.SaveProject(p); err != nil {
			return err
		}
		return printJSON(p)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project (active and archived)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		projects, err := a.store.ListProjects()
		if err != nil {
			return err
		}
		return printJSON(projects)
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a project by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		p, err := a.store.GetProject(args[0])
		if err != nil {
			return err
		}
		return printJSON(p)
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a project, preserving its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		p, err := a.store.GetProject(args[0])
		if err != nil {
			return err
		}
		p.Archive(time.Now())
		if err := a.store.SaveProject(p); err != nil {
			return err
		}
		return printJSON(p)
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Tombstone a project (soft delete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.store.DeleteProject(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted project %s\n", args[0])
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectShowCmd, projectArchiveCmd, projectDeleteCmd)
}

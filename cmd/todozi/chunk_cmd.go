package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/codegraph"
	"github.com/todozi/todozi/internal/model"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Hierarchical code-chunk generation graph management",
}

const defaultChunkMaxLines = 4000

func (a *app) codeGraph() (*codegraph.Graph, error) {
	g := codegraph.NewGraph(a.store)
	if err := g.Load(defaultChunkMaxLines, time.Now()); err != nil {
		return nil, err
	}
	return g, nil
}

var (
	chunkLevel string
	chunkDeps  []string
)

var chunkAddCmd = &cobra.Command{
	Use:   "add <id> <description>",
	Short: "Add a chunk node to the generation graph",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		level, ok := model.ParseChunkLevel(chunkLevel)
		if !ok {
			return fmt.Errorf("unknown chunk level %q", chunkLevel)
		}
		c, err := g.AddChunk(args[0], level, args[1], chunkDeps, time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every chunk in the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		return printJSON(g.ListChunks())
	},
}

var chunkShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a chunk by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		c, err := g.GetChunk(args[0])
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkReadyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List chunk ids whose dependencies are all satisfied",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		return printJSON(g.GetReadyChunks())
	},
}

var chunkNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Pick the next chunk to work on",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		id := g.GetNextChunkToWorkOn()
		if id == "" {
			fmt.Println("no chunk is ready")
			return nil
		}
		fmt.Println(id)
		return nil
	},
}

var chunkUpdateCodeCmd = &cobra.Command{
	Use:   "update-code <id> <code>",
	Short: "Attach generated code to a chunk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		c, err := g.UpdateCode(args[0], args[1], time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkUpdateTestsCmd = &cobra.Command{
	Use:   "update-tests <id> <tests>",
	Short: "Attach generated tests to a chunk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		c, err := g.UpdateTests(args[0], args[1], time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a chunk completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		c, err := g.MarkCompleted(args[0], time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkValidateCmd = &cobra.Command{
	Use:   "validate <id>",
	Short: "Mark a chunk validated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		c, err := g.MarkValidated(args[0], time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkFailCmd = &cobra.Command{
	Use:   "fail <id> <reason>",
	Short: "Mark a chunk failed with a reason",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		reason := strings.Join(args[1:], " ")
		c, err := g.MarkFailed(args[0], reason, time.Now())
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var chunkSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a human-readable project generation summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		g, err := a.codeGraph()
		if err != nil {
			return err
		}
		fmt.Println(g.GetProjectSummary())
		return nil
	},
}

func init() {
	chunkAddCmd.Flags().StringVar(&chunkLevel, "level", "block", "Chunk level (project|module|class|method|block)")
	chunkAddCmd.Flags().StringSliceVar(&chunkDeps, "deps", nil, "Comma-separated dependency chunk ids")

	chunkCmd.AddCommand(
		chunkAddCmd,
		chunkListCmd,
		chunkShowCmd,
		chunkReadyCmd,
		chunkNextCmd,
		chunkUpdateCodeCmd,
		chunkUpdateTestsCmd,
		chunkCompleteCmd,
		chunkValidateCmd,
		chunkFailCmd,
		chunkSummaryCmd,
	)
}

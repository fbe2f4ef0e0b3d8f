package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/embedding"
)

// searchCmd is the plain keyword search: a direct substring scan over task
// actions, memory meanings, idea texts and error descriptions, plus their
// tags, with no embedding engine involved. It is
// the fast path when semantic ranking isn't needed.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search across tasks, memories, ideas, and error records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		q := strings.ToLower(args[0])
		type hit struct {
			Kind string      `json:"kind"`
			ID   string      `json:"id"`
			Text string      `json:"text"`
		}
		var hits []hit

		tasks, _ := a.store.ListTasks("")
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Action), q) || containsTag(t.Tags, q) {
				hits = append(hits, hit{Kind: "task", ID: t.ID, Text: t.Action})
			}
		}
		memories, _ := a.store.ListMemories()
		for _, m := range memories {
			if strings.Contains(strings.ToLower(m.Meaning), q) || containsTag(m.Tags, q) {
				hits = append(hits, hit{Kind: "memory", ID: m.ID, Text: m.Meaning})
			}
		}
		ideas, _ := a.store.ListIdeas()
		for _, i := range ideas {
			if strings.Contains(strings.ToLower(i.Text), q) || containsTag(i.Tags, q) {
				hits = append(hits, hit{Kind: "idea", ID: i.ID, Text: i.Text})
			}
		}
		errs, _ := a.store.ListErrorRecords()
		for _, e := range errs {
			if strings.Contains(strings.ToLower(e.Description), q) || containsTag(e.Tags, q) {
				hits = append(hits, hit{Kind: "error", ID: e.ID, Text: e.Description})
			}
		}
		return printJSON(hits)
	},
}

func containsTag(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

var (
	searchMode  string
	searchLimit int
	searchWeight float64
)

// searchAllCmd searches the embedding cache, which spans every content type
// that has been indexed (tasks, memories, ideas, errors, agents, code
// chunks), selecting among keyword/semantic/hybrid per --mode.
var searchAllCmd = &cobra.Command{
	Use:   "search-all <query>",
	Short: "Search the embedding index (--mode keyword|semantic|hybrid)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		svc, err := a.embeddingService()
		if err != nil {
			return err
		}
		ctx := context.Background()
		opts := embedding.SearchOptions{Limit: searchLimit}

		switch strings.ToLower(searchMode) {
		case "", "semantic":
			results, err := svc.SemanticSearch(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(results)
		case "hybrid":
			results, err := svc.HybridSearch(ctx, args[0], searchWeight, opts)
			if err != nil {
				return err
			}
			return printJSON(results)
		case "keyword":
			results, err := svc.HybridSearch(ctx, args[0], 0.0, opts)
			if err != nil {
				return err
			}
			return printJSON(results)
		default:
			return fmt.Errorf("unknown search mode %q (want keyword|semantic|hybrid)", searchMode)
		}
	},
}

func init() {
	searchAllCmd.Flags().StringVar(&searchMode, "mode", "semantic", "Search mode (keyword|semantic|hybrid)")
	searchAllCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results")
	searchAllCmd.Flags().Float64Var(&searchWeight, "weight", 0.5, "Hybrid weight in [0,1] toward semantic score")
}

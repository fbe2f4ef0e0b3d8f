// Package main implements the todozi CLI: a thin cobra skeleton dispatching
// straight into the internal packages (spec §6.4). Argument parsing is a
// boundary concern; this file and its siblings merely wire flags to calls.
//
// # File Index
//
//   - main.go          - entry point, rootCmd, global flags, app() helper
//   - task_cmd.go       - task CRUD
//   - project_cmd.go    - project management
//   - agent_cmd.go      - agent management and assignment
//   - memory_cmd.go     - memory/idea/error/reminder CRUD
//   - search_cmd.go     - search, search-all
//   - chunk_cmd.go      - code chunk graph management
//   - emb_cmd.go        - embedding engine management
//   - backup_cmd.go     - backup/restore
//   - server_cmd.go     - server/tui launcher stubs
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/todozi/todozi/internal/config"
	"github.com/todozi/todozi/internal/embedding"
	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/store"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "todozi",
	Short: "todozi - a local-first knowledge and task management engine",
	Long: `todozi tracks tasks, projects, memories, ideas, errors, and
reminders in a plain-file workspace, with semantic search over everything
via local or cloud embeddings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: ~/.todozi)")

	rootCmd.AddCommand(
		taskCmd,
		projectCmd,
		agentCmd,
		memoryCmd,
		ideaCmd,
		errorCmd,
		reminderCmd,
		searchCmd,
		searchAllCmd,
		chunkCmd,
		embCmd,
		backupCmd,
		serverCmd,
		tuiCmd,
	)
}

// exitWithError prints err's single-line classification (spec §7's
// "user-visible behaviour") and exits with the mapped exit code (spec
// §6.4).
func exitWithError(err error) {
	kind := apperrorKindOf(err)
	if kind != "" {
		fmt.Fprintf(os.Stderr, "%s: %v\n", kind, err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCodeOf(err))
}

func workspaceRoot() (string, error) {
	if workspace != "" {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".todozi"), nil
}

// app bundles the store and config a command needs, after ensuring the
// workspace layout exists and logging is initialized from config.hlx.
type app struct {
	store *store.Store
	cfg   *config.Config
}

func newApp() (*app, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(root, cfg.ToLoggingConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
	}

	st := store.New(root)
	if err := st.EnsureLayout(); err != nil {
		return nil, err
	}
	return &app{store: st, cfg: cfg}, nil
}

// embeddingService constructs the embedding Service from the app's
// configuration, reconciling any persisted cache snapshot.
func (a *app) embeddingService() (*embedding.Service, error) {
	engine, err := embedding.NewEngine(embedding.Config{
		Provider:       a.cfg.Embedding.Provider,
		Dimensions:     a.cfg.Embedding.Dimensions,
		OllamaEndpoint: a.cfg.Embedding.OllamaEndpoint,
		OllamaModel:    a.cfg.Embedding.ModelName,
		GenAIAPIKey:    a.cfg.Embedding.GenAIAPIKey,
		GenAIModel:     a.cfg.Embedding.ModelName,
	})
	if err != nil {
		return nil, err
	}
	svc := embedding.NewService(engine, a.store, embedding.ServiceConfig{
		ModelName:     a.cfg.Embedding.ModelName,
		Dimensions:    a.cfg.Embedding.Dimensions,
		CacheTTL:      secondsToDuration(a.cfg.Embedding.CacheTTLSecs),
		MaxCacheBytes: int64(a.cfg.Embedding.MaxCacheMB) << 20,
	})
	if err := svc.Load(); err != nil {
		return nil, err
	}
	if a.cfg.Embedding.ANNIndexEnabled {
		if err := svc.EnableANNIndex(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ANN index unavailable: %v\n", err)
		}
	}
	return svc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}

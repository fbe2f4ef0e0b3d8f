package store

import (
	"fmt"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/config"
	"github.com/todozi/todozi/internal/logging"
)

// migrationStep is one ordered, idempotent upgrade from version N to N+1.
// Steps run against a Store whose layout directories already exist.
type migrationStep struct {
	fromVersion int
	description string
	apply       func(s *Store) error
}

// migrationSteps lists every schema migration in order. Each step is
// idempotent: re-running it against an already-migrated workspace is a
// no-op, matching spec §4.1's "Migrations are ordered, idempotent, applied
// on startup, and atomic".
var migrationSteps = []migrationStep{
	// v1 is the baseline layout created by EnsureLayout; no migration body
	// is needed to reach it from a nonexistent workspace.
}

// Migrate brings the on-disk workspace from cfg.Schema.Version up to
// config.CurrentSchemaVersion, running every applicable step in order. On
// any step's failure, the config's version is left untouched so a retry
// starts from the same point (spec §4.1: "any failure aborts with the
// prior version intact").
func Migrate(s *Store, cfg *config.Config) error {
	if cfg.Schema.Version > config.CurrentSchemaVersion {
		return apperror.New(apperror.SchemaMigration, fmt.Sprintf(
			"workspace schema version %d is newer than this build supports (%d)",
			cfg.Schema.Version, config.CurrentSchemaVersion))
	}
	if cfg.Schema.Version == config.CurrentSchemaVersion {
		return nil
	}

	version := cfg.Schema.Version
	for _, step := range migrationSteps {
		if step.fromVersion < version {
			continue
		}
		logging.Store("applying schema migration from v%d: %s", step.fromVersion, step.description)
		if err := step.apply(s); err != nil {
			return apperror.Wrapf(apperror.SchemaMigration, err, "migration from v%d (%s) failed", step.fromVersion, step.description)
		}
		version = step.fromVersion + 1
	}

	cfg.Schema.Version = config.CurrentSchemaVersion
	if err := config.Save(cfg); err != nil {
		return apperror.Wrapf(apperror.SchemaMigration, err, "persist schema version %d", cfg.Schema.Version)
	}
	return nil
}

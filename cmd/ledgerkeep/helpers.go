package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ledgerkeep/ledgerkeep/internal/audit"
	"github.com/ledgerkeep/ledgerkeep/internal/common"
	"github.com/ledgerkeep/ledgerkeep/internal/config"
	"github.com/ledgerkeep/ledgerkeep/internal/engine"
	"github.com/ledgerkeep/ledgerkeep/internal/pattern"
	"github.com/ledgerkeep/ledgerkeep/internal/storage"
)

// initStorage opens the database and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgerkeep/ledgerkeep.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// auditDir returns the configured audit log directory.
func auditDir() string {
	dir := viper.GetString("audit.dir")
	if dir == "" {
		dir = "$HOME/.local/share/ledgerkeep/audit"
	}
	return config.ExpandPath(dir)
}

// initAudit creates the audit logger over the configured directory.
func initAudit() *audit.Logger {
	return audit.NewLogger(auditDir())
}

// loadPatternMatcher loads the configured pattern file into a matcher.
func loadPatternMatcher() (*pattern.Matcher, string, error) {
	path := viper.GetString("patterns.path")
	if path == "" {
		return nil, "", common.NewUserError("patterns.path is not configured", common.ErrMissingConfig)
	}

	patterns, fileVersion, err := pattern.LoadFile(config.ExpandPath(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load patterns: %w", err)
	}

	return pattern.NewMatcher(patterns), fileVersion, nil
}

// engineConfig reads the classification thresholds, falling back to the
// hand-tuned defaults for anything not configured.
func engineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if v := viper.GetInt("engine.auto_apply_threshold"); v > 0 {
		cfg.AutoApplyThreshold = v
	}
	if viper.IsSet("engine.candidate_threshold") {
		cfg.CandidateThreshold = viper.GetInt("engine.candidate_threshold")
	}
	if v := viper.GetInt("engine.max_alternatives"); v > 0 {
		cfg.MaxAlternatives = v
	}

	return cfg
}

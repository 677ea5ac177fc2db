package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finos/architecture-as-code-sub007/internal/config"
	"github.com/finos/architecture-as-code-sub007/internal/lint"
	"github.com/finos/architecture-as-code-sub007/internal/logger"
)

// session is the per-invocation state shared by the subcommands: effective
// configuration, a configured rule engine and a logger tagged with a run id.
type session struct {
	cfg    *config.Config
	engine *lint.Engine
	runID  string
	log    *zap.SugaredLogger
}

// newSession loads configuration starting from the working directory, installs
// the stderr logger and configures the rule engine.
func newSession(cmd *cobra.Command, getwd func() (string, error), component string) (*session, error) {
	explicit, _ := cmd.Flags().GetString("config")

	cwd, err := getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	// Environment and defaults govern logging until the config is known.
	defaults := config.Default()
	logger.Initialize(defaults.Log.Level, defaults.Log.Format)
	cfg, err := config.NewLoader(logger.For(logger.ComponentConfig)).Load(cwd, explicit)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.For(logger.ComponentConfig).Debugw("configuration resolved",
		"log.level", cfg.Log.Level, "output.format", cfg.Output.Format, "rules.disabled", cfg.Rules.Disabled)

	sev, err := cfg.Severities()
	if err != nil {
		return nil, err
	}
	engine, err := lint.DefaultEngine().Configure(cfg.Rules.Disabled, sev)
	if err != nil {
		return nil, fmt.Errorf("invalid rules configuration: %w", err)
	}

	runID := uuid.NewString()
	return &session{
		cfg:    cfg,
		engine: engine,
		runID:  runID,
		log:    logger.For(component).With("run", runID),
	}, nil
}

// outputFormat resolves the --json flag against the configured format.
func (s *session) outputFormat(cmd *cobra.Command) string {
	if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
		return "json"
	}
	return s.cfg.Output.Format
}

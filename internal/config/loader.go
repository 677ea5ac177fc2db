package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Loader resolves configuration with layered precedence:
//  1. defaults
//  2. the nearest .calmlint.yaml in the start directory or its parents
//  3. an explicit file given with --config
type Loader struct {
	log *zap.SugaredLogger
}

// NewLoader returns a Loader. A nil logger disables logging.
func NewLoader(log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loader{log: log}
}

// Load builds the effective configuration. An explicit path that cannot be
// read is an error; a missing project file is not.
func (l *Loader) Load(startDir, explicit string) (*Config, error) {
	cfg := Default()

	if p := FindProjectFile(startDir); p != "" {
		project, err := LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		l.log.Debugw("loaded project config", "path", p)
		cfg.Merge(project)
	} else {
		l.log.Debugw("no project config found", "start", startDir)
	}

	if explicit != "" {
		c, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.log.Debugw("loaded explicit config", "path", explicit)
		cfg.Merge(c)
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindProjectFile walks from dir up to the filesystem root and returns the
// first FileName found, or "".
func FindProjectFile(dir string) string {
	if dir == "" {
		return ""
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// SaveToFile writes c as YAML, used by tests and by users bootstrapping a file.
func (c *Config) SaveToFile(path string) error {
	data, err := marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docket/internal/config"
	"docket/internal/ingest"
	"docket/internal/logging"
	"docket/internal/store"
)

// commandContext carries lazily-loaded configuration and logging shared by
// the subcommands.
type commandContext struct {
	configFlag *string
	regionFlag *string

	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

func newCommandContext(configFlag, regionFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, regionFlag: regionFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, resolvedPath, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.regionFlag != nil && strings.TrimSpace(*c.regionFlag) != "" {
		cfg.Ingest.Region = strings.ToLower(strings.TrimSpace(*c.regionFlag))
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "docket.log")},
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	c.cfg = cfg
	c.configPath = resolvedPath
	c.logger = logger
	return cfg, nil
}

func (c *commandContext) region() string {
	if c.cfg == nil {
		return ""
	}
	return c.cfg.Ingest.Region
}

// openStore opens the entity database for the loaded configuration. Callers
// own the returned store and must close it.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

func (c *commandContext) newRunner(st *store.Store) *ingest.Runner {
	return ingest.NewRunner(c.logger, st)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	return cmd.Annotations["skipConfigLoad"] == "true"
}

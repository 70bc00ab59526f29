package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/timeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withLibrary opens the project library for the duration of fn. The store
// holds the single-instance lock, so commands open late and close early.
func (c *commandContext) withLibrary(fn func(*config.Config, *library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// withProject resolves a project by id or name and hands it to fn along
// with the open store, saving afterwards when fn reports a mutation.
func (c *commandContext) withProject(ctx context.Context, ref string, fn func(*config.Config, *library.Store, *timeline.Project) (bool, error)) error {
	return c.withLibrary(func(cfg *config.Config, store *library.Store) error {
		project, err := store.FindProject(ctx, ref)
		if err != nil {
			return err
		}
		mutated, err := fn(cfg, store, project)
		if err != nil {
			return err
		}
		if mutated {
			return store.SaveProject(ctx, project)
		}
		return nil
	})
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

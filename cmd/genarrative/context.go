package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"genarrative/internal/capability"
	"genarrative/internal/config"
	"genarrative/internal/extraction"
	"genarrative/internal/generation"
	"genarrative/internal/logging"
	"genarrative/internal/services/ollama"
	"genarrative/internal/sisindex"
	"genarrative/internal/sisstore"
	"genarrative/internal/story"
	"genarrative/internal/workflow"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonRequested() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// openStores opens the document store and the link index; the close
// function must be deferred.
func (c *commandContext) openStores() (*sisstore.Store, *sisindex.Store, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	docs, err := sisstore.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	index, err := sisindex.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return docs, index, func() { _ = index.Close() }, nil
}

func (c *commandContext) extractor() (*extraction.Dispatcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := ollama.NewClient(cfg.Backends.Ollama)
	if err != nil {
		return nil, err
	}
	return extraction.NewDispatcher(client, logger), nil
}

func (c *commandContext) generator(docs *sisstore.Store, index *sisindex.Store) (*generation.Dispatcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	registry := capability.NewRegistryFromConfig(cfg)
	return generation.NewDispatcher(cfg, registry, index, docs, logger), nil
}

func (c *commandContext) storyService() (*story.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := ollama.NewClient(cfg.Backends.Ollama)
	if err != nil {
		return nil, err
	}
	return story.NewService(client, logger), nil
}

func (c *commandContext) openJournal() (*workflow.Journal, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return workflow.OpenJournal(cfg)
}

// withDataLock serializes whole-pipeline runs on this data directory.
// Index writes are safe concurrently; the lock exists so two workflow
// runs do not extract the same source twice side by side.
func (c *commandContext) withDataLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "genarrative.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire data lock: %w", err)
	}
	if !ok {
		return errors.New("another genarrative workflow is already running against this data directory")
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

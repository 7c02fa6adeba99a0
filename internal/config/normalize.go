package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	store := strings.TrimSpace(c.Paths.StorePath)
	if store == "" {
		if value, ok := os.LookupEnv(storePathEnv); ok {
			store = strings.TrimSpace(value)
		}
	}
	if store == "" {
		store = filepath.Join(c.Paths.DataDir, defaultStoreFileName)
	}
	if c.Paths.StorePath, err = expandPath(store); err != nil {
		return fmt.Errorf("paths.store_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	if c.Store.BatchSize <= 0 {
		c.Store.BatchSize = defaultBatchSize
	}
	if c.Store.MaxRetries < 0 {
		c.Store.MaxRetries = 0
	}
	if c.Store.RetryDelayMS < 0 {
		c.Store.RetryDelayMS = 0
	}
	if c.Store.BatchDelayMS < 0 {
		c.Store.BatchDelayMS = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

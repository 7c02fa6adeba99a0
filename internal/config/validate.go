package config

import (
	"fmt"

	"filtertree/internal/services"
)

// Validate ensures the configuration is usable. Errors wrap
// services.ErrConfiguration and name the offending key.
func (c *Config) Validate() error {
	if err := c.validateMatch(); err != nil {
		return err
	}
	if err := c.validateOutline(); err != nil {
		return err
	}
	if err := c.validateCollision(); err != nil {
		return err
	}
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (c *Config) validateMatch() error {
	if c.Match.Threshold <= 0 || c.Match.Threshold > 1 {
		return invalid("match.threshold must be in (0, 1], got %v", c.Match.Threshold)
	}
	if c.Match.FindThreshold <= 0 || c.Match.FindThreshold > 1 {
		return invalid("match.find_threshold must be in (0, 1], got %v", c.Match.FindThreshold)
	}
	return nil
}

func (c *Config) validateOutline() error {
	if c.Outline.MaxDepth < 0 {
		return invalid("outline.max_depth must be >= 0, got %d", c.Outline.MaxDepth)
	}
	return nil
}

func (c *Config) validateCollision() error {
	if c.Collision.Separator == "" {
		return invalid("collision.separator must not be empty")
	}
	if c.Collision.MaxAncestorDepth < 1 {
		return invalid("collision.max_ancestor_depth must be >= 1, got %d", c.Collision.MaxAncestorDepth)
	}
	return nil
}

func (c *Config) validateIdentity() error {
	if c.Identity.Separator == "" {
		return invalid("identity.separator must not be empty")
	}
	if c.Identity.SegmentMaxLen < 0 {
		return invalid("identity.segment_max_len must be >= 0, got %d", c.Identity.SegmentMaxLen)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

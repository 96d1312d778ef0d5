package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Sync targets are checked
// here so the reconciliation engine never sees an unrecognized format or
// an empty location.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePlaylists()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validatePlaylists() error {
	for i, target := range c.Playlists {
		if target.PlaylistID == "" {
			return fmt.Errorf("playlists[%d].id must be set", i)
		}
		if strings.TrimSpace(target.Location) == "" {
			return fmt.Errorf("playlists[%d].location must be set", i)
		}
		if _, err := ParseMediaFormat(string(target.Format)); err != nil {
			return fmt.Errorf("playlists[%d].format: %w", i, err)
		}
	}
	return nil
}

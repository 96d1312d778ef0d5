package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Target maps one remote playlist to a local directory.
type Target struct {
	PlaylistID   string      `toml:"id"`
	Location     string      `toml:"location"`
	Format       MediaFormat `toml:"format"`
	SavePlaylist bool        `toml:"save_playlist"`
}

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the run lock and the sync history database.
	StateDir string `toml:"state_dir"`
}

// Ytdlp contains acquisition tool configuration.
type Ytdlp struct {
	Binary string `toml:"binary"`
}

// History contains configuration for the sync run history store.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ytsync.
type Config struct {
	Paths     Paths    `toml:"paths"`
	Ytdlp     Ytdlp    `toml:"ytdlp"`
	History   History  `toml:"history"`
	Logging   Logging  `toml:"logging"`
	Playlists []Target `toml:"playlists"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ytsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When the file does
// not exist, defaults are returned with exists=false so the caller can
// decide whether to create it.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Save writes the configuration back to path as TOML. Used by the
// playlist management commands; the sync engine never persists config.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	stateDir, err := expandPath(c.Paths.StateDir)
	if err != nil {
		return err
	}
	c.Paths.StateDir = stateDir

	c.Ytdlp.Binary = strings.TrimSpace(c.Ytdlp.Binary)
	if c.Ytdlp.Binary == "" {
		c.Ytdlp.Binary = defaultYtdlpBinary
	}

	for i := range c.Playlists {
		target := &c.Playlists[i]
		target.PlaylistID = strings.TrimSpace(target.PlaylistID)
		target.Format = MediaFormat(strings.ToLower(strings.TrimSpace(string(target.Format))))
		location := strings.TrimSpace(target.Location)
		if location == "" {
			continue
		}
		expanded, err := expandPath(location)
		if err != nil {
			return err
		}
		target.Location = expanded
	}
	return nil
}

// EnsureStateDir creates the state directory used for the run lock and
// the history database.
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// YtdlpBinary returns the acquisition tool executable name.
func (c *Config) YtdlpBinary() string {
	return c.Ytdlp.Binary
}

// FFmpegBinary returns the ffmpeg executable name yt-dlp relies on for
// audio extraction and stream merging.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// HistoryDBPath returns the sync history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "ytsync.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

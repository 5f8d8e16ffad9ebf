// Package config handles configuration loading and validation for quill.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TokenEnvVar overrides github.token when the config file leaves it empty.
const TokenEnvVar = "QUILL_GITHUB_TOKEN"

const (
	defaultPattern   = "**/*.md"
	defaultBranch    = "main"
	defaultAPIURL    = "https://api.github.com"
	defaultEditorEnv = "EDITOR"
)

// Config holds the application configuration.
type Config struct {
	PostsDir string         `yaml:"posts_dir"`
	Pattern  string         `yaml:"pattern"`
	Editor   string         `yaml:"editor"`
	GitHub   GitHubConfig   `yaml:"github"`
	Database DatabaseConfig `yaml:"database"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// GitHubConfig holds the target repository for publishing.
type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Token  string `yaml:"token"`
	Branch string `yaml:"branch"`
	// Path is the folder inside the repository that holds posts.
	Path   string `yaml:"path"`
	APIURL string `yaml:"api_url"`
}

// IsValid reports whether enough is configured to call the API.
func (g GitHubConfig) IsValid() bool {
	return g.Owner != "" && g.Repo != "" && g.Token != ""
}

// BranchOrDefault returns the configured branch, or "main".
func (g GitHubConfig) BranchOrDefault() string {
	if g.Branch == "" {
		return defaultBranch
	}
	return g.Branch
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PostsDir: "posts",
		Pattern:  defaultPattern,
		GitHub: GitHubConfig{
			Branch: defaultBranch,
			APIURL: defaultAPIURL,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 4,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv(TokenEnvVar)
	}

	postsDir, err := expandHome(cfg.PostsDir)
	if err != nil {
		return nil, fmt.Errorf("expand posts_dir: %w", err)
	}
	cfg.PostsDir = postsDir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.PostsDir == "" {
		c.PostsDir = defaults.PostsDir
	}
	if c.Pattern == "" {
		c.Pattern = defaults.Pattern
	}
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = defaults.GitHub.Branch
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = defaults.GitHub.APIURL
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// EditorCommand returns the configured editor, then $EDITOR, then vi.
func (c *Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	if e := os.Getenv(defaultEditorEnv); e != "" {
		return e
	}
	return "vi"
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.PostsDir == "" {
		return fmt.Errorf("posts_dir cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if strings.Contains(c.GitHub.Owner, "/") {
		return fmt.Errorf("github.owner must not contain '/'")
	}

	if strings.Contains(c.GitHub.Repo, "/") {
		return fmt.Errorf("github.repo must not contain '/'")
	}

	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

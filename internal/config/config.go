package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Build   BuildConfig   `yaml:"build"`
	Site    SiteConfig    `yaml:"site"`
	Publish PublishConfig `yaml:"publish"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	History HistoryConfig `yaml:"history"`
}

// ProjectConfig identifies the Swift project whose documentation is built.
// Either Path (local checkout) or URL (remote repository cloned into the
// workspace) must be set; Path wins when both are present.
type ProjectConfig struct {
	Path   string      `yaml:"path,omitempty"`
	URL    string      `yaml:"url,omitempty"`
	Branch string      `yaml:"branch,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents authentication configuration for remote projects.
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// BuildConfig controls documentation compiler invocation.
type BuildConfig struct {
	// Scheme overrides first-in-listing scheme selection for Xcode projects.
	Scheme string `yaml:"scheme,omitempty"`
	// Destination is the xcodebuild destination for docbuild.
	Destination string `yaml:"destination,omitempty"`
	// DeveloperDir pins the toolchain (exported as DEVELOPER_DIR).
	DeveloperDir string `yaml:"developer_dir,omitempty"`
	// ShallowDepth limits clone depth for remote projects (0 = full).
	ShallowDepth int `yaml:"shallow_depth,omitempty"`
}

// SiteConfig controls static-site packaging.
type SiteConfig struct {
	// AssetsDir holds the site theme (CSS/JS) copied into the output tree.
	AssetsDir string `yaml:"assets_dir,omitempty"`
	// OutputDir is the publishable tree assembled by the packager.
	OutputDir string `yaml:"output_dir,omitempty"`
	Title     string `yaml:"title,omitempty"`
}

// PublishConfig controls the deployment target.
type PublishConfig struct {
	// Target selects the publisher backend: "pages", "dir" or "none".
	Target string `yaml:"target,omitempty"`
	// Branch is the pages branch the site tree is committed to.
	Branch string `yaml:"branch,omitempty"`
	// Remote is the push remote name for the pages backend.
	Remote string `yaml:"remote,omitempty"`
	// Dir is the destination directory for the dir backend.
	Dir  string      `yaml:"dir,omitempty"`
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// DaemonConfig controls continuous publishing mode.
type DaemonConfig struct {
	Listen        string `yaml:"listen,omitempty"`
	WebhookSecret string `yaml:"webhook_secret,omitempty"`
	// Schedule is an optional rebuild interval, e.g. "1h".
	Schedule string      `yaml:"schedule,omitempty"`
	Metrics  bool        `yaml:"metrics"`
	NATS     *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig mirrors run lifecycle events to a NATS subject.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HistoryConfig controls the run/event store.
type HistoryConfig struct {
	// Path to the SQLite database file; empty disables history.
	Path string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the pipeline cannot act on.
func (c *Config) Validate() error {
	switch c.Publish.Target {
	case "pages", "dir", "none":
	default:
		return fmt.Errorf("invalid publish target %q (want pages, dir or none)", c.Publish.Target)
	}
	if c.Publish.Target == "dir" && c.Publish.Dir == "" {
		return fmt.Errorf("publish target %q requires publish.dir", c.Publish.Target)
	}
	if c.Project.Path == "" && c.Project.URL == "" {
		return fmt.Errorf("project.path or project.url must be set")
	}
	return nil
}

// Package config provides configuration types and defaults for fmark.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vannrr/fmark/internal/log"
)

const (
	// DefaultBookmarkFile is the bookmark file name under the home directory.
	DefaultBookmarkFile = ".bookmarks"
	DefaultMenu         = "bemenu"
	DefaultBrowser      = "firefox"
	DefaultRows         = 20

	MinRows = 1
	MaxRows = 255
)

// SupportedMenus lists the menu programs fmark knows how to drive. "tui" is
// the built-in terminal picker.
var SupportedMenus = []string{"bemenu", "dmenu", "rofi", "fzf", "tui"}

// Config holds all configuration options for fmark.
type Config struct {
	Menu    string `mapstructure:"menu" yaml:"menu"`
	Browser string `mapstructure:"browser" yaml:"browser"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
	Rows    int    `mapstructure:"rows" yaml:"rows"`
	// Watch warns when the bookmark file changes on disk during a session.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// Defaults returns a Config with sensible default values.
// Path is left empty and resolved against the home directory at runtime.
func Defaults() Config {
	return Config{
		Menu:    DefaultMenu,
		Browser: DefaultBrowser,
		Rows:    DefaultRows,
		Watch:   true,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if !slices.Contains(SupportedMenus, c.Menu) {
		return fmt.Errorf("unsupported menu program %q (supported: %v)", c.Menu, SupportedMenus)
	}
	if c.Browser == "" {
		return fmt.Errorf("browser is required")
	}
	return nil
}

// ClampRows returns rows limited to the range menu programs accept. Values
// outside the range are clamped; zero means the default.
func ClampRows(rows int) int {
	if rows == 0 {
		return DefaultRows
	}
	return max(MinRows, min(rows, MaxRows))
}

// DefaultBookmarkPath returns $HOME/.bookmarks.
func DefaultBookmarkPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultBookmarkFile), nil
}

// DefaultConfigPath returns the user config location, ~/.config/fmark/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fmark", "config.yaml")
	}
	return filepath.Join(home, ".config", "fmark", "config.yaml")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# fmark configuration

# Menu program used to pick bookmarks.
# Supported: bemenu (default), dmenu, rofi, fzf, tui (built-in terminal picker)
menu: bemenu

# Browser used to open bookmarks (must be on $PATH)
browser: firefox

# Bookmark file (default: $HOME/.bookmarks)
# path: /home/me/.bookmarks

# Number of rows shown by the menu program (1-255)
rows: 20

# Warn when the bookmark file is changed by another program during a session.
# The last writer wins either way.
watch: true

# Every option can also be set through the environment:
#   BM_MENU, BM_BROWSER, BM_PATH, BM_ROWS, BM_WATCH
# and BM_DEFAULT_OPTS holds default command line options, e.g.
#   BM_DEFAULT_OPTS='--menu fzf --rows 30'
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

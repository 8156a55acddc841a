// Package config loads and validates ichthus configuration.
// Configuration resolves in three layers: built-in defaults, then
// .ichthus/config.yaml, then ICHTHUS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ichthus configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace root to lint
	Workspace string `yaml:"workspace"`

	// Naming conventions
	Naming NamingConfig `yaml:"naming"`

	// Per-rule toggles and severity overrides
	Rules RulesConfig `yaml:"rules"`

	// Namespace policy
	Namespaces NamespaceConfig `yaml:"namespaces"`

	// Style-guide document checks
	Docs DocsConfig `yaml:"docs"`

	// Baseline store
	Store StoreConfig `yaml:"store"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// NamingConfig configures identifier conventions.
type NamingConfig struct {
	// Acronyms that keep full capitalization inside PascalCase
	// identifiers (EDIParser, not EdiParser).
	Acronyms []string `yaml:"acronyms"`

	// WinForms control prefixes allowed on field names (btnSave, txtName).
	ControlPrefixes map[string]string `yaml:"control_prefixes"`

	// Hungarian prefixes that are always rejected.
	HungarianPrefixes []string `yaml:"hungarian_prefixes"`
}

// RulesConfig configures individual rule behavior.
type RulesConfig struct {
	// Disabled lists rule IDs that produce no findings.
	Disabled []string `yaml:"disabled"`

	// Severity maps rule ID to an override ("info", "warning", "error").
	Severity map[string]string `yaml:"severity"`
}

// NamespaceConfig configures namespace shape rules.
type NamespaceConfig struct {
	// Required first segment of every namespace (e.g. "Ichthus").
	RootSegment string `yaml:"root_segment"`

	// Segment that marks a dependency-free namespace.
	CoreSegment string `yaml:"core_segment"`

	// Maximum number of dot-separated segments.
	MaxDepth int `yaml:"max_depth"`
}

// DocsConfig configures style-guide document checks.
type DocsConfig struct {
	// Glob matching revision files, relative to the docs path.
	RevisionGlob string `yaml:"revision_glob"`

	// Marker that legitimizes a contradiction with an earlier revision.
	DeviationMarker string `yaml:"deviation_marker"`
}

// StoreConfig configures the baseline database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures filesystem watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:      "ichthus",
		Version:   "1.0.0",
		Workspace: ".",

		Naming: NamingConfig{
			Acronyms: []string{
				"EDI", "SQL", "XML", "IO", "ID", "URL", "URI", "HTTP",
				"FTP", "DB", "UI", "API", "GUID", "HTML", "JSON",
			},
			ControlPrefixes: map[string]string{
				"btn": "Button",
				"txt": "TextBox",
				"lbl": "Label",
				"cbo": "ComboBox",
				"chk": "CheckBox",
				"dgv": "DataGridView",
				"frm": "Form",
				"grp": "GroupBox",
				"lst": "ListBox",
				"mnu": "MenuStrip",
				"pnl": "Panel",
				"rdo": "RadioButton",
				"tab": "TabControl",
				"tmr": "Timer",
			},
			HungarianPrefixes: []string{
				"str", "int", "bln", "obj", "arr", "dbl", "lng", "m_", "g_",
			},
		},

		Rules: RulesConfig{
			Disabled: nil,
			Severity: map[string]string{},
		},

		Namespaces: NamespaceConfig{
			RootSegment: "Ichthus",
			CoreSegment: "Core",
			MaxDepth:    4,
		},

		Docs: DocsConfig{
			RevisionGlob:    "*.md",
			DeviationMarker: "Deviation",
		},

		Store: StoreConfig{
			DatabasePath: ".ichthus/ichthus.db",
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if ws := os.Getenv("ICHTHUS_WORKSPACE"); ws != "" {
		c.Workspace = ws
	}
	if path := os.Getenv("ICHTHUS_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if root := os.Getenv("ICHTHUS_NAMESPACE_ROOT"); root != "" {
		c.Namespaces.RootSegment = root
	}
	if disabled := os.Getenv("ICHTHUS_DISABLED_RULES"); disabled != "" {
		for _, id := range strings.Split(disabled, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				c.Rules.Disabled = append(c.Rules.Disabled, id)
			}
		}
	}
	if level := os.Getenv("ICHTHUS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if os.Getenv("ICHTHUS_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// validate rejects configurations no run could honor.
func (c *Config) validate() error {
	if c.Namespaces.MaxDepth < 1 {
		return fmt.Errorf("namespaces.max_depth must be at least 1, got %d", c.Namespaces.MaxDepth)
	}
	for id, sev := range c.Rules.Severity {
		switch sev {
		case "info", "warning", "error":
		default:
			return fmt.Errorf("rules.severity[%s]: unknown severity %q", id, sev)
		}
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); c.Watch.Debounce != "" && err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	return nil
}

// RuleDisabled reports whether a rule ID is disabled.
func (c *Config) RuleDisabled(id string) bool {
	for _, d := range c.Rules.Disabled {
		if d == id {
			return true
		}
	}
	return false
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// DefaultPath returns the conventional config path inside a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".ichthus", "config.yaml")
}

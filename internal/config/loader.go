package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sitecheck"

// File is the on-disk YAML configuration. All fields are optional
// overrides; absent fields keep the flag or default value.
type File struct {
	// AllowedAssetHost overrides the approved CDN host.
	AllowedAssetHost string `yaml:"allowed_asset_host"`

	// SkipChecks lists check names to exclude from the battery.
	SkipChecks []string `yaml:"skip_checks"`

	// HistoryDir overrides the history database directory.
	HistoryDir string `yaml:"history_dir"`
}

// LoadConfigFile loads overrides from a YAML file.
// A missing file returns ErrConfigNotFound so callers can distinguish
// "no file" from "broken file".
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile locates the configuration file:
// an explicit path wins, then .sitecheck in the current directory, then in
// the home directory. Returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply merges file overrides into the Config.
func (c *Config) Apply(file *File) {
	if file == nil {
		return
	}
	if file.AllowedAssetHost != "" {
		c.AllowedAssetHost = file.AllowedAssetHost
	}
	if len(file.SkipChecks) > 0 {
		c.SkipChecks = append(c.SkipChecks, file.SkipChecks...)
	}
	if file.HistoryDir != "" {
		c.HistoryDir = file.HistoryDir
	}
}

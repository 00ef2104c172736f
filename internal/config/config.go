// Package config stores persistent CLI settings in a YAML file and resolves
// the active firmware config repository.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/repo"
)

// Setting names used by commands.
const (
	SettingUserHome = "user.home" // Path to the firmware config repo

	// Tool settings kept for users migrating existing config files.
	// No command reads them yet.
	SettingCoreEditor   = "core.editor"   // Text editor tool
	SettingCoreExplorer = "core.explorer" // Directory editor tool
)

// Config holds dotted "section.option" settings backed by a YAML file.
type Config struct {
	path      string
	forceHome bool
	sections  map[string]map[string]string
}

// DefaultPath returns the settings file location for the current user.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ConfigNotFound, "Could not determine the user config directory")
	}
	return filepath.Join(dir, "kbforge", "config.yaml"), nil
}

// Load reads the settings file at path, or the default location when path is
// empty. A missing file yields an empty configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{path: path, sections: make(map[string]map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigNotFound, "Could not read the settings file").
			WithDetails("Path: " + path)
	}

	if err := yaml.Unmarshal(data, &cfg.sections); err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid, "The settings file is not valid YAML").
			WithDetails("Path: " + path).
			WithSuggestion("Fix or delete the file and set your options again")
	}
	if cfg.sections == nil {
		cfg.sections = make(map[string]map[string]string)
	}

	return cfg, nil
}

// Path returns the settings file location.
func (c *Config) Path() string {
	return c.path
}

// SetForceHome makes Repo ignore the working directory and always resolve the
// registered home repo.
func (c *Config) SetForceHome(force bool) {
	c.forceHome = force
}

// Get returns a setting value and whether it is set.
func (c *Config) Get(name string) (string, bool) {
	section, option := splitName(name)
	value, ok := c.sections[section][option]
	return value, ok
}

// Set stores a setting value.
func (c *Config) Set(name, value string) {
	section, option := splitName(name)
	if c.sections[section] == nil {
		c.sections[section] = make(map[string]string)
	}
	c.sections[section][option] = value
}

// Unset removes a setting. It reports whether the setting existed.
func (c *Config) Unset(name string) bool {
	section, option := splitName(name)
	if _, ok := c.sections[section][option]; !ok {
		return false
	}

	delete(c.sections[section], option)
	if len(c.sections[section]) == 0 {
		delete(c.sections, section)
	}
	return true
}

// Item is one setting as a dotted name and its value.
type Item struct {
	Name  string
	Value string
}

// Items returns all settings sorted by name.
func (c *Config) Items() []Item {
	var items []Item
	for section, options := range c.sections {
		for option, value := range options {
			items = append(items, Item{Name: section + "." + option, Value: value})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Write saves the settings back to the file used by Load, creating parent
// directories as needed.
func (c *Config) Write() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(err, errors.ConfigInvalid, "Could not create the settings directory").
			WithDetails("Path: " + filepath.Dir(c.path))
	}

	data, err := yaml.Marshal(c.sections)
	if err != nil {
		return errors.Wrap(err, errors.InternalError, "Could not encode the settings")
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ConfigInvalid, "Could not write the settings file").
			WithDetails("Path: " + c.path)
	}
	return nil
}

// HomePath returns the registered config repo path, or "" when unset.
func (c *Config) HomePath() string {
	home, _ := c.Get(SettingUserHome)
	return home
}

// SetHomePath registers the config repo path, resolved to an absolute path.
func (c *Config) SetHomePath(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.Set(SettingUserHome, path)
}

// Repo resolves the repo at the current working directory, falling back to
// the registered home repo.
func (c *Config) Repo() (*repo.Repo, error) {
	if !c.forceHome {
		if wd, err := os.Getwd(); err == nil {
			if path, ok := repo.FindContaining(wd); ok {
				return repo.New(path), nil
			}
		}
	}

	home := c.HomePath()
	if home == "" {
		return nil, errors.HomeNotSetError()
	}
	if !repo.IsRepo(home) {
		return nil, errors.HomeMissingError(home)
	}

	return repo.New(home), nil
}

// splitName splits a dotted "section.option" setting name.
func splitName(name string) (string, string) {
	section, option, ok := strings.Cut(name, ".")
	if !ok {
		return name, ""
	}
	return section, option
}

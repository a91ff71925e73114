// Package config manages the persistent, per-user settings file: scrollbar
// visibility and the color palette (spec section 6), modeled directly on
// the teacher's ConfigManager singleton.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Config holds every user-adjustable setting that survives across runs.
type Config struct {
	ShowScrollbar bool   `json:"show_scrollbar"`
	ColorScheme   string `json:"color_scheme"`
	ExpandTabs    bool   `json:"expand_tabs"`
	TabWidth      int    `json:"tab_width"`
}

func defaultConfig() Config {
	return Config{
		ShowScrollbar: true,
		ColorScheme:   "default",
		ExpandTabs:    true,
		TabWidth:      8,
	}
}

// ConfigManager loads/saves Config from a JSON file under the user's config
// directory, guarding concurrent access the same way the teacher's
// ConfigManager does.
type ConfigManager struct {
	config     Config
	configPath string
	mu         sync.RWMutex
}

var (
	instance *ConfigManager
	once     sync.Once
)

// Get returns the process-wide singleton ConfigManager, loading its
// backing file (or the defaults, if absent) on first use.
func Get() *ConfigManager {
	once.Do(func() {
		dir, _ := os.UserConfigDir()
		path := filepath.Join(dir, "list", "config.json")
		instance = &ConfigManager{configPath: path, config: defaultConfig()}
		_ = instance.load()
	})
	return instance
}

func (m *ConfigManager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Unmarshal(data, &m.config)
}

// Save persists the current config to disk, creating the config directory
// if needed.
func (m *ConfigManager) Save() error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.config, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.configPath, data, 0o644)
}

// Current returns a copy of the current settings.
func (m *ConfigManager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update applies fn to the settings under lock.
func (m *ConfigManager) Update(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.config)
}

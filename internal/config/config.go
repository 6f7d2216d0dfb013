// Package config holds the persistent application configuration.
//
// The tracker core treats the configuration as read-only: toggles gate which
// classification rules run, but nothing in the dispatch path ever writes a
// config value back.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// ChatLog is the path to the chat log file written by the game client.
	ChatLog string `json:"chat_log"`

	// ShowTaskMessages controls whether a confirmation notice is emitted
	// after each counted event.
	ShowTaskMessages bool `json:"show_task_messages"`

	// TrackBracelets gates the slaughter and expeditious bracelet rules.
	TrackBracelets bool `json:"track_bracelets"`

	// TrackCannon gates the cannon break rule.
	TrackCannon bool `json:"track_cannon"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme       string `json:"theme"`
	NoticeLimit int    `json:"notice_limit"` // max notices kept in the feed
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ChatLog:          defaultChatLog(),
		ShowTaskMessages: true,
		TrackBracelets:   true,
		TrackCannon:      true,
		UI: UIConfig{
			Theme:       "dark",
			NoticeLimit: 50,
		},
	}
}

// defaultChatLog returns the path the RuneLite chat logger plugin writes to.
func defaultChatLog() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".runelite", "chatlogs", "game", "latest.log")
}

// Path returns the path to the config file
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".slaytrack", "config.json")
}

// Load reads config from disk, or returns defaults.
//
// Unknown or absent fields keep their default values, so a config written by
// an older version still loads with the documented defaults filled in.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads config from an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal over the defaults so missing keys stay at their defaults
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}

	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes config to an explicit path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Package config loads and persists the pagerterm configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvHome overrides the configuration directory when set.
const EnvHome = "PAGERTERM_HOME"

// configFileName is the main configuration file inside Dir().
const configFileName = "config.yaml"

// Credential is one stored wireless network. The list order in the config
// file is the association priority order.
type Credential struct {
	SSID    string `yaml:"ssid"`
	Secret  string `yaml:"secret"`
	Enabled bool   `yaml:"enabled"`
}

// Endpoint is a shell server target. Path is unused by the raw SSH transport
// but kept for URI-based transports. An Endpoint handed to a session worker
// is never mutated afterwards.
type Endpoint struct {
	Name     string `yaml:"name,omitempty"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Path     string `yaml:"path,omitempty"`
	Username string `yaml:"username"`
	Secret   string `yaml:"secret"`
	UseTLS   bool   `yaml:"use_tls"`
	Enabled  bool   `yaml:"enabled"`
	Local    bool   `yaml:"local,omitempty"`
}

// Addr returns host:port for dialing.
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Servers holds the two configured shell targets and the ordering preference
// between them.
type Servers struct {
	Local        Endpoint `yaml:"local"`
	Remote       Endpoint `yaml:"remote"`
	PreferRemote bool     `yaml:"prefer_remote"`
}

// Timeouts groups the connection and retry parameters. All values are
// milliseconds to match the config file of the handheld firmware this client
// descends from.
type Timeouts struct {
	ConnectTimeoutMs    int `yaml:"connect_timeout_ms"`
	ReconnectDelayMs    int `yaml:"reconnect_delay_ms"`
	MaxReconnectDelayMs int `yaml:"max_reconnect_delay_ms"`
	ReadPollIntervalMs  int `yaml:"read_poll_interval_ms"`
	AssocAttempts       int `yaml:"assoc_attempts"`
	AssocPollIntervalMs int `yaml:"assoc_poll_interval_ms"`
}

// ConnectTimeout returns the dial timeout as a duration.
func (t Timeouts) ConnectTimeout() time.Duration {
	return time.Duration(t.ConnectTimeoutMs) * time.Millisecond
}

// ReconnectDelay returns the initial backoff delay.
func (t Timeouts) ReconnectDelay() time.Duration {
	return time.Duration(t.ReconnectDelayMs) * time.Millisecond
}

// MaxReconnectDelay returns the backoff cap.
func (t Timeouts) MaxReconnectDelay() time.Duration {
	return time.Duration(t.MaxReconnectDelayMs) * time.Millisecond
}

// ReadPollInterval returns the worker's read poll interval.
func (t Timeouts) ReadPollInterval() time.Duration {
	return time.Duration(t.ReadPollIntervalMs) * time.Millisecond
}

// AssocPollInterval returns the wifi association poll interval.
func (t Timeouts) AssocPollInterval() time.Duration {
	return time.Duration(t.AssocPollIntervalMs) * time.Millisecond
}

// Terminal holds the negotiated pseudo-terminal geometry.
type Terminal struct {
	Term            string `yaml:"term"`
	Cols            int    `yaml:"cols"`
	Rows            int    `yaml:"rows"`
	ScrollbackLines int    `yaml:"scrollback_lines"`
}

// Config is the whole configuration file.
type Config struct {
	Wifi       []Credential `yaml:"wifi"`
	Servers    Servers      `yaml:"servers"`
	Timeouts   Timeouts     `yaml:"timeouts"`
	Terminal   Terminal     `yaml:"terminal"`
	KeymapFile string       `yaml:"keymap_file,omitempty"`
	HistoryDB  string       `yaml:"history_db,omitempty"`
}

// Default returns the configuration used when no file exists yet. The
// endpoint and timing defaults mirror the handheld firmware defaults.
func Default() *Config {
	return &Config{
		Servers: Servers{
			Local: Endpoint{
				Name:    "local",
				Host:    "localhost",
				Port:    22,
				Enabled: true,
				Local:   true,
			},
			Remote: Endpoint{
				Name: "remote",
				Port: 22,
			},
			PreferRemote: false,
		},
		Timeouts: Timeouts{
			ConnectTimeoutMs:    10000,
			ReconnectDelayMs:    800,
			MaxReconnectDelayMs: 5000,
			ReadPollIntervalMs:  10,
			AssocAttempts:       20,
			AssocPollIntervalMs: 500,
		},
		Terminal: Terminal{
			Term:            "xterm-256color",
			Cols:            80,
			Rows:            24,
			ScrollbackLines: 500,
		},
	}
}

// Dir returns the configuration directory: $PAGERTERM_HOME when set,
// otherwise ~/.config/pagerterm.
func Dir() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	hd, err := os.UserHomeDir()
	if err != nil {
		return ".pagerterm"
	}
	return filepath.Join(hd, ".config", "pagerterm")
}

// Path returns the location of the main configuration file.
func Path() string {
	return filepath.Join(Dir(), configFileName)
}

// Load reads the configuration at path. A missing file yields Default()
// without error so first runs work out of the box.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyFloors()
	return cfg, nil
}

// Save writes the configuration to path atomically, taking a timestamped
// backup of any existing file first.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := backupFile(path, defaultKeepBackups); err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// applyFloors clamps nonsensical values back to usable defaults so a
// hand-edited file cannot produce a busy-spinning worker or a zero-size pty.
func (c *Config) applyFloors() {
	def := Default()
	if c.Timeouts.ConnectTimeoutMs <= 0 {
		c.Timeouts.ConnectTimeoutMs = def.Timeouts.ConnectTimeoutMs
	}
	if c.Timeouts.ReconnectDelayMs <= 0 {
		c.Timeouts.ReconnectDelayMs = def.Timeouts.ReconnectDelayMs
	}
	if c.Timeouts.MaxReconnectDelayMs < c.Timeouts.ReconnectDelayMs {
		c.Timeouts.MaxReconnectDelayMs = c.Timeouts.ReconnectDelayMs
	}
	if c.Timeouts.ReadPollIntervalMs <= 0 {
		c.Timeouts.ReadPollIntervalMs = def.Timeouts.ReadPollIntervalMs
	}
	if c.Timeouts.AssocAttempts <= 0 {
		c.Timeouts.AssocAttempts = def.Timeouts.AssocAttempts
	}
	if c.Timeouts.AssocPollIntervalMs <= 0 {
		c.Timeouts.AssocPollIntervalMs = def.Timeouts.AssocPollIntervalMs
	}
	if c.Terminal.Cols <= 0 {
		c.Terminal.Cols = def.Terminal.Cols
	}
	if c.Terminal.Rows <= 0 {
		c.Terminal.Rows = def.Terminal.Rows
	}
	if c.Terminal.ScrollbackLines <= 0 {
		c.Terminal.ScrollbackLines = def.Terminal.ScrollbackLines
	}
	if c.Terminal.Term == "" {
		c.Terminal.Term = def.Terminal.Term
	}
}

// HistoryPath returns the sqlite history database location, defaulting to
// history.db inside the config directory.
func (c *Config) HistoryPath() string {
	if c != nil && c.HistoryDB != "" {
		return c.HistoryDB
	}
	return filepath.Join(Dir(), "history.db")
}

// KeymapPath returns the keymap file location, or "" when the built-in
// table should be used.
func (c *Config) KeymapPath() string {
	if c == nil || c.KeymapFile == "" {
		return ""
	}
	if filepath.IsAbs(c.KeymapFile) {
		return c.KeymapFile
	}
	return filepath.Join(Dir(), c.KeymapFile)
}

// EnabledCredentials returns the wifi credentials that are enabled, in
// priority order.
func (c *Config) EnabledCredentials() []Credential {
	var out []Credential
	for _, cred := range c.Wifi {
		if cred.Enabled {
			out = append(out, cred)
		}
	}
	return out
}

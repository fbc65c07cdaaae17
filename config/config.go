// Package config persists the uploader settings: eQSL credentials, the
// auto-upload flag, the UDP listening port and the display flags. The file
// lives in the user's home directory with owner-only permissions because it
// holds the account password.
//
// Earlier releases stored the same settings as JSON in ~/.wsjtx2eqsl.conf;
// Load transparently imports that file once and rewrites it in the current
// format.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file, relative to the user's home directory.
	FileName = ".wsjtx2eqsl.yaml"
	// LegacyFileName is the JSON settings file written by old releases.
	LegacyFileName = ".wsjtx2eqsl.conf"

	// DefaultPort is the WSJT-X "logged ADIF" secondary UDP broadcast port.
	DefaultPort = 2333
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds all persisted settings. Username, Password and UDPPort bind at
// startup (socket and credentials); AutoUpload, Debug and Color are held by
// value in the running session and may change live through the menu.
type Config struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AutoUpload bool   `yaml:"auto_upload"`
	UDPPort    int    `yaml:"udp_port"`
	Debug      bool   `yaml:"debug"`
	Color      bool   `yaml:"color"`
}

// legacyConfig mirrors the JSON layout of the original conf file.
type legacyConfig struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	AutoUpload bool   `json:"auto_upload"`
	UDPPort    int    `json:"udp_port"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		AutoUpload: true,
		UDPPort:    DefaultPort,
		Color:      true,
	}
}

// Path returns the settings file path under dir. An empty dir resolves to the
// user's home directory (falling back to the working directory).
func Path(dir string) string {
	return filepath.Join(baseDir(dir), FileName)
}

// LegacyPath returns the old JSON settings file path under dir.
func LegacyPath(dir string) string {
	return filepath.Join(baseDir(dir), LegacyFileName)
}

func baseDir(dir string) string {
	if dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load reads the settings from dir. Missing or unreadable files fall back to
// defaults; configuration I/O never fails the process. When only the legacy
// JSON file exists it is imported and rewritten in the current format.
func Load(dir string) *Config {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return Default()
		}
		cfg.normalize()
		return cfg
	}

	if imported, ok := loadLegacy(dir); ok {
		imported.normalize()
		_ = imported.Save(dir)
		return imported
	}
	return cfg
}

func loadLegacy(dir string) (*Config, bool) {
	data, err := os.ReadFile(LegacyPath(dir))
	if err != nil {
		return nil, false
	}
	var old legacyConfig
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, false
	}
	cfg := Default()
	cfg.Username = old.Username
	cfg.Password = old.Password
	cfg.AutoUpload = old.AutoUpload
	if old.UDPPort > 0 {
		cfg.UDPPort = old.UDPPort
	}
	return cfg, true
}

// Save writes the settings to dir with owner-only permissions.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := Path(dir)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, err)
	}
	// WriteFile only applies the mode on creation; tighten pre-existing files.
	_ = os.Chmod(path, 0600)
	return nil
}

// Delete removes the settings files (current and legacy). Missing files are
// not an error.
func Delete(dir string) error {
	var firstErr error
	for _, p := range []string{Path(dir), LegacyPath(dir)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HasCredentials reports whether both username and password are set.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

func (c *Config) normalize() {
	if c.UDPPort <= 0 || c.UDPPort > 65535 {
		c.UDPPort = DefaultPort
	}
	c.Username = strings.TrimSpace(c.Username)
}

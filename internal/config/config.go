// Package config handles configuration for echochat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/echochat/internal/errors"
)

const appDirName = ".echochat"

// Config holds the user settings stored in ~/.echochat/config.json
type Config struct {
	// DataDir holds the storage slots. Empty means ~/.echochat.
	DataDir string `json:"data_dir,omitempty"`
	// ReplyDelayMs is how long the echo bot waits before answering.
	ReplyDelayMs    int    `json:"reply_delay_ms"`
	TUITheme        string `json:"tui_theme,omitempty"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	LogLevel        string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat       string `json:"log_format,omitempty"` // json or text
	LogFile         string `json:"log_file,omitempty"`
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() Config {
	return Config{
		ReplyDelayMs:    500,
		TUITheme:        "tokyonight",
		CopyToClipboard: true,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// ReplyDelay returns ReplyDelayMs as a duration
func (c Config) ReplyDelay() time.Duration {
	if c.ReplyDelayMs < 0 {
		return 0
	}
	return time.Duration(c.ReplyDelayMs) * time.Millisecond
}

// ResolveDataDir returns DataDir, falling back to the config directory
func (c Config) ResolveDataDir() (string, error) {
	if strings.TrimSpace(c.DataDir) != "" {
		return c.DataDir, nil
	}
	return GetConfigDir()
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, appDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig reads ~/.echochat/config.json, falling back to defaults
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to ~/.echochat/config.json
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes the configuration to path
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys returns the JSON keys accepted by Set
func Keys() []string {
	return []string{
		"data_dir",
		"reply_delay_ms",
		"tui_theme",
		"copy_to_clipboard",
		"log_level",
		"log_format",
		"log_file",
	}
}

// Get returns the value of key as shown in the JSON config
func Get(cfg Config, key string) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if !validKey(key) {
		return "", fmt.Errorf("%w: %s", apierrors.ErrInvalidConfigKey, key)
	}
	return gjson.GetBytes(data, key).String(), nil
}

// Set parses value for key and stores it in cfg
func Set(cfg *Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "data_dir":
		cfg.DataDir = value
	case "reply_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("reply_delay_ms must be a non-negative integer: %q", value)
		}
		cfg.ReplyDelayMs = n
	case "tui_theme":
		cfg.TUITheme = value
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false: %q", value)
		}
		cfg.CopyToClipboard = b
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown log level: %q", value)
		}
	case "log_format":
		switch strings.ToLower(value) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown log format: %q", value)
		}
	case "log_file":
		cfg.LogFile = value
	default:
		return fmt.Errorf("%w: %s", apierrors.ErrInvalidConfigKey, key)
	}
	return nil
}

func validKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

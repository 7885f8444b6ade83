package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultServerPort is where the backend listens for the GUI shell.
const DefaultServerPort = 8737

// Config represents application configuration
type Config struct {
	WorkspaceDir        string `json:"workspace_dir"`
	LogLevel            string `json:"log_level"` // debug, info, warn, error, none
	LogPath             string `json:"log_path,omitempty"`
	Editor              string `json:"editor,omitempty"`
	AssistantBinary     string `json:"assistant_binary,omitempty"`
	SearchEndpoint      string `json:"search_endpoint,omitempty"`
	UpdateEndpoint      string `json:"update_endpoint,omitempty"`
	UpdateIntervalHours int    `json:"update_interval_hours"`
	ServerPort          int    `json:"server_port"`
	DatabasePath        string `json:"database_path,omitempty"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "werkbank")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "werkbank")
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Application Support", "werkbank")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "werkbank")
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "werkbank")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "werkbank")
	default:
		return defaultConfigDir()
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	configDir := defaultConfigDir()
	stateDir := defaultStateDir()

	return &Config{
		WorkspaceDir:        ".",
		LogLevel:            "info",
		LogPath:             filepath.Join(stateDir, "werkbank.log"),
		AssistantBinary:     "codex",
		UpdateIntervalHours: 24,
		ServerPort:          DefaultServerPort,
		DatabasePath:        filepath.Join(configDir, "werkbank.db"),
	}
}

// Load loads configuration from file, then applies WERKBANK_* environment
// overrides. A .env file in the working directory is read first so local
// development overrides work the same way as real environment variables.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		return nil, err
	}

	// Unmarshal into default config (overrides only provided fields)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.WorkspaceDir == "" {
		config.WorkspaceDir = "."
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(defaultStateDir(), "werkbank.log")
	}
	if config.AssistantBinary == "" {
		config.AssistantBinary = "codex"
	}
	if config.UpdateIntervalHours <= 0 {
		config.UpdateIntervalHours = 24
	}
	if config.ServerPort <= 0 {
		config.ServerPort = DefaultServerPort
	}
	if config.DatabasePath == "" {
		config.DatabasePath = filepath.Join(defaultConfigDir(), "werkbank.db")
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("WERKBANK_WORKSPACE_DIR")); v != "" {
		c.WorkspaceDir = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_LOG_PATH")); v != "" {
		c.LogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_EDITOR")); v != "" {
		c.Editor = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_ASSISTANT_BINARY")); v != "" {
		c.AssistantBinary = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_SEARCH_ENDPOINT")); v != "" {
		c.SearchEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_UPDATE_ENDPOINT")); v != "" {
		c.UpdateEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.ServerPort = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("WERKBANK_DB_PATH")); v != "" {
		c.DatabasePath = v
	}
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

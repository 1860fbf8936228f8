package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port   string
	DBPath string
}

// LoadServerConfig loads the server settings from Viper with defaults.
func LoadServerConfig() ServerConfig {
	config := ServerConfig{
		Port:   viper.GetString("server.port"),
		DBPath: ExpandPath(viper.GetString("storage.db_path")),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.DBPath == "" {
		config.DBPath = DefaultDBPath()
	}
	return config
}

// DefaultDBPath is where the database lives when no path is configured.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bnk.db"
	}
	return filepath.Join(home, ".local", "share", "bnk", "bnk.db")
}

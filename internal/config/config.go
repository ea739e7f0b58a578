package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Host                string           `json:"host"`
	Port                int              `json:"port"`
	DBPath              string           `json:"db_path"`
	APIKeysFile         string           `json:"api_keys_file"`
	AdminAPIKey         string           `json:"admin_api_key"`
	MaxUploadBytes      int64            `json:"max_upload_bytes"`
	ChangeRetentionDays int              `json:"change_retention_days"`
	LogConfig           logger.LogConfig `json:"log_config"`
	Store               StoreConfig      `json:"store"`
}

type StoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
}

// Load reads the optional JSON config file, then applies environment
// overrides (a .env file is honored when present) and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyEnv()

	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "asset_server.sqlite3"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 512 * 1024 * 1024
	}
	if cfg.ChangeRetentionDays == 0 {
		cfg.ChangeRetentionDays = 30
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "local"
	}
	switch cfg.Store.Type {
	case "local":
		if cfg.Store.Dir == "" {
			cfg.Store.Dir = "storage_root"
		}
	case "s3":
		s3 := cfg.Store.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.SecretID == "" || s3.SecretKey == "" {
			return nil, fmt.Errorf("store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.Store.S3.Region == "" {
			cfg.Store.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("store.type must be local or s3")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WEB_SERVER_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("WEB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("STORAGE_ROOT"); v != "" {
		c.Store.Type = "local"
		c.Store.Dir = v
	}
	if v := os.Getenv("API_KEYS_FILE"); v != "" {
		c.APIKeysFile = v
	}
	if v := os.Getenv("WEB_API_KEY"); v != "" {
		c.AdminAPIKey = v
	}
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

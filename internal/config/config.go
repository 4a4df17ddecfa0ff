package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned by Validate when a required startup secret is
// absent.
var ErrMissingSecret = errors.New("missing required configuration")

type Config struct {
	BackendURL string `yaml:"backend_url"`
	AnonKey    string `yaml:"anon_key"`

	// SessionSecret signs session tokens. It never leaves the server.
	SessionSecret string `yaml:"session_secret"`

	ListenAddr    string `yaml:"listen_addr"`
	PublicBaseURL string `yaml:"public_base_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	SessionTTL       time.Duration `yaml:"session_ttl"`
	CookieName       string        `yaml:"cookie_name"`
	SessionCacheSize int64         `yaml:"session_cache_size"`
}

func Default() Config {
	return Config{
		ListenAddr:       "localhost:8080",
		PublicBaseURL:    "http://localhost:8080",
		LogLevel:         "info",
		LogFormat:        "json",
		SessionTTL:       7 * 24 * time.Hour,
		CookieName:       "taskflow_session",
		SessionCacheSize: 1000,
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskflow", "config.yaml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the YAML file at path over the defaults and then overlays the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnv(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// the file holds the anon key and session secret
	return os.WriteFile(path, data, 0o600)
}

func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("%w: backend url (TASKFLOW_BACKEND_URL)", ErrMissingSecret)
	}
	if c.AnonKey == "" {
		return fmt.Errorf("%w: anon key (TASKFLOW_ANON_KEY)", ErrMissingSecret)
	}
	if c.SessionSecret != "" && c.SessionSecret == c.AnonKey {
		return errors.New("session_secret must differ from anon_key")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.SessionCacheSize < 1 {
		return errors.New("session_cache_size must be >= 1")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	return nil
}

func loadEnv(cfg *Config) error {
	setString(&cfg.BackendURL, "TASKFLOW_BACKEND_URL")
	setString(&cfg.AnonKey, "TASKFLOW_ANON_KEY")
	setString(&cfg.SessionSecret, "TASKFLOW_SESSION_SECRET")
	setString(&cfg.ListenAddr, "TASKFLOW_LISTEN_ADDR")
	setString(&cfg.PublicBaseURL, "TASKFLOW_PUBLIC_BASE_URL")
	setString(&cfg.LogLevel, "TASKFLOW_LOG_LEVEL")
	setString(&cfg.LogFormat, "TASKFLOW_LOG_FORMAT")
	setString(&cfg.CookieName, "TASKFLOW_COOKIE_NAME")

	if v := os.Getenv("TASKFLOW_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKFLOW_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("TASKFLOW_SESSION_CACHE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TASKFLOW_SESSION_CACHE_SIZE: %w", err)
		}
		cfg.SessionCacheSize = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

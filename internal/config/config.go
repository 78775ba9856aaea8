package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host                string   `yaml:"host"`
	Port                int      `yaml:"port"`
	Mode                string   `yaml:"mode"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// ArtifactsConfig locates the fitted vectorizer and classifier files.
// Relative file names are resolved against Dir; an empty Dir means the
// directory of the running executable.
type ArtifactsConfig struct {
	Dir        string `yaml:"dir"`
	Vectorizer string `yaml:"vectorizer"`
	Classifier string `yaml:"classifier"`
}

// InferenceConfig tunes the prediction pipeline. An omitted cache_size keeps
// the default; an explicit 0 disables the prediction cache.
type InferenceConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Inference InferenceConfig `yaml:"inference"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			if err := applyEnvOverrides(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	// Keys absent from the file keep their default values.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/chatguard/config.yaml.
// If neither exists, it writes defaults to ~/.config/chatguard/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Addr returns the host:port the server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Paths resolves the artifact file locations. Absolute names are kept as-is.
func (c *ArtifactsConfig) Paths() (vectorizer, classifier string, err error) {
	dir := c.Dir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", "", fmt.Errorf("resolve artifact dir: %w", err)
		}
		dir = filepath.Dir(exe)
	}
	return resolve(dir, c.Vectorizer), resolve(dir, c.Classifier), nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatguard", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                5002,
			Mode:                "release",
			ReadTimeoutSecs:     30,
			WriteTimeoutSecs:    30,
			ShutdownTimeoutSecs: 30,
			AllowedOrigins:      []string{"*"},
		},
		Artifacts: ArtifactsConfig{
			Vectorizer: "tfidf_vectorizer.json",
			Classifier: "logistic_regression.json",
		},
		Inference: InferenceConfig{CacheSize: 1024},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = def.Server.Mode
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = def.Server.ReadTimeoutSecs
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = def.Server.WriteTimeoutSecs
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = def.Server.ShutdownTimeoutSecs
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if cfg.Artifacts.Vectorizer == "" {
		cfg.Artifacts.Vectorizer = def.Artifacts.Vectorizer
	}
	if cfg.Artifacts.Classifier == "" {
		cfg.Artifacts.Classifier = def.Artifacts.Classifier
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// applyEnvOverrides lets the environment (including a loaded .env) win over the file.
// PORT is honored unprefixed as hosting platforms set it.
func applyEnvOverrides(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}
	setString(&cfg.Server.Host, "CHATGUARD_HOST")
	setString(&cfg.Server.Mode, "CHATGUARD_GIN_MODE")
	setString(&cfg.Artifacts.Dir, "CHATGUARD_ARTIFACT_DIR")
	setString(&cfg.Artifacts.Vectorizer, "CHATGUARD_VECTORIZER_PATH")
	setString(&cfg.Artifacts.Classifier, "CHATGUARD_CLASSIFIER_PATH")
	setString(&cfg.Log.Level, "CHATGUARD_LOG_LEVEL")
	setString(&cfg.Log.Format, "CHATGUARD_LOG_FORMAT")
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

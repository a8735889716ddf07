package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modelmind/internal/models"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Compare models.CompareConfig `mapstructure:"compare" yaml:"compare"`
	Assist  models.AssistConfig  `mapstructure:"assist" yaml:"assist"`
	Server  models.ServerConfig  `mapstructure:"server" yaml:"server"`
}

// Manager handles configuration loading and management
type Manager struct {
	config *Config
	viper  *viper.Viper
	// lookupCredentials is replaced in tests.
	lookupCredentials func() (Credentials, error)
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		viper:             viper.New(),
		lookupCredentials: LoadCredentials,
	}
}

// Load loads configuration from file and environment variables
func (m *Manager) Load(configPath string) error {
	m.setDefaults()

	if configPath != "" {
		m.viper.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		m.viper.SetConfigName("modelmind")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath(filepath.Join(home, ".config", "modelmind"))
		m.viper.AddConfigPath("/etc/modelmind")
	}

	m.viper.SetEnvPrefix("MODELMIND")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults and the built-in catalog apply.
	}

	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Compare.Providers) == 0 {
		cfg.Compare.Providers = DefaultCatalog()
	}

	creds, err := m.lookupCredentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.Compare.Providers = creds.Apply(cfg.Compare.Providers)

	m.config = cfg
	return m.validate()
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	m.viper.SetDefault("compare.temperature", 0.7)
	m.viper.SetDefault("compare.concurrency", 0)
	m.viper.SetDefault("compare.timeout", "60s")
	m.viper.SetDefault("assist.timeout", "60s")
	m.viper.SetDefault("server.address", ":8501")
}

// validate validates the loaded configuration
func (m *Manager) validate() error {
	seen := make(map[string]bool)
	for i, p := range m.config.Compare.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("provider %s: duplicate name", p.Name)
		}
		seen[key] = true
		if !isKnownKind(p.Kind) {
			return fmt.Errorf("provider %s: unknown kind %q (expected one of %s)", p.Name, p.Kind, strings.Join(models.Kinds, ", "))
		}
		if p.Model == "" {
			return fmt.Errorf("provider %s: model is required", p.Name)
		}
	}

	compare := m.config.Compare
	if compare.Temperature < 0 || compare.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if compare.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if err := validateTimeout("compare.timeout", compare.Timeout); err != nil {
		return err
	}
	if err := validateTimeout("assist.timeout", m.config.Assist.Timeout); err != nil {
		return err
	}

	if name := m.config.Assist.Provider; name != "" && !seen[strings.ToLower(name)] {
		return fmt.Errorf("assist provider %q is not configured", name)
	}

	return nil
}

func validateTimeout(key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s format: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return nil
}

func isKnownKind(kind string) bool {
	for _, k := range models.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// GetConfig returns the loaded configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetCompareConfig returns the comparison configuration
func (m *Manager) GetCompareConfig() models.CompareConfig {
	if m.config == nil {
		return models.CompareConfig{}
	}
	return m.config.Compare
}

// GetAssistConfig returns the assist configuration
func (m *Manager) GetAssistConfig() models.AssistConfig {
	if m.config == nil {
		return models.AssistConfig{}
	}
	return m.config.Assist
}

// GetServerConfig returns the HTTP server configuration
func (m *Manager) GetServerConfig() models.ServerConfig {
	if m.config == nil {
		return models.ServerConfig{}
	}
	return m.config.Server
}

// CreateSampleConfig writes a sample configuration file listing the built-in
// catalog. API keys are left to the environment.
func (m *Manager) CreateSampleConfig(path string) error {
	sample := Config{
		Compare: models.CompareConfig{
			Providers:   DefaultCatalog(),
			Temperature: 0.7,
			Concurrency: 0,
			Timeout:     "60s",
		},
		Assist: models.AssistConfig{
			Provider: DefaultCatalog()[0].Name,
			Timeout:  "60s",
		},
		Server: models.ServerConfig{
			Address: ":8501",
		},
	}

	out, err := yaml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to render sample config: %w", err)
	}

	header := "# ModelMind configuration.\n" +
		"# API keys are read from OPENAI_API_KEY, GOOGLE_API_KEY, GROQ_API_KEY,\n" +
		"# HUGGINGFACE_API_KEY and DEEPSEEK_API_KEY (environment or .env), or from api_key.\n"

	return os.WriteFile(path, append([]byte(header), out...), 0644)
}

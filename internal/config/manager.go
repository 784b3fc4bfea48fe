package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"trendboard/pkg/locale"
	"trendboard/pkg/trends"
)

const envPrefix = "TRENDBOARD"

type manager struct {
	mu         sync.RWMutex
	config     *Config
	viper      *viper.Viper
	configPath string
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configPath when it exists, then overlays TRENDBOARD_* environment
// variables. An empty configPath uses defaults and the environment only.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configPath = configPath
	m.setupViper()

	config, err := m.read()
	if err != nil {
		return nil, err
	}

	m.config = config
	return config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}

	config, err := m.read()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) read() (*Config, error) {
	if m.configPath != "" {
		if _, err := os.Stat(m.configPath); err == nil {
			if err := m.viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := m.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (m *manager) setupViper() {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	m.viper.SetDefault("server.host", "0.0.0.0")
	m.viper.SetDefault("server.port", 8080)
	m.viper.SetDefault("server.read_timeout", "20s")
	m.viper.SetDefault("server.write_timeout", "40s")
	m.viper.SetDefault("server.shutdown_timeout", "10s")

	m.viper.SetDefault("trends.endpoint", trends.DefaultEndpoint)
	m.viper.SetDefault("trends.timeout", trends.DefaultTimeout)
	// credentials have no default; bind so env-only deployments unmarshal them
	_ = m.viper.BindEnv("trends.client_id")
	_ = m.viper.BindEnv("trends.client_secret")

	m.viper.SetDefault("session.cookie_name", "trendboard_session")
	m.viper.SetDefault("session.expiration", "24h")

	m.viper.SetDefault("logger.level", "info")
	m.viper.SetDefault("logger.format", "json")
	m.viper.SetDefault("logger.output", "stdout")

	m.viper.SetDefault("default_country", string(locale.Korea))
}

func (m *manager) validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Trends.ClientID == "" || config.Trends.ClientSecret == "" {
		return fmt.Errorf("trends.client_id and trends.client_secret are required (env %s_TRENDS_CLIENT_ID / %s_TRENDS_CLIENT_SECRET)", envPrefix, envPrefix)
	}

	if config.Trends.Timeout <= 0 {
		return fmt.Errorf("trends.timeout must be positive")
	}

	if _, err := config.CountryTable(); err != nil {
		return err
	}

	return nil
}

// CountryTable builds the country lookup, falling back to the built-in table
// when no countries are configured.
func (c *Config) CountryTable() (*locale.Table, error) {
	entries := locale.DefaultEntries()
	if len(c.Countries) > 0 {
		entries = lo.Map(c.Countries, func(cc CountryConfig, _ int) locale.Entry {
			return locale.Entry{
				Code:        locale.Country(cc.Code),
				Name:        cc.Name,
				Substitute:  cc.Substitute,
				EngineLabel: cc.EngineLabel,
				MapImageURL: cc.MapImageURL,
			}
		})
	}

	table, err := locale.NewTable(locale.Country(c.DefaultCountry), entries)
	if err != nil {
		return nil, fmt.Errorf("invalid country table: %w", err)
	}
	return table, nil
}

// TrendsClient converts the trends section into a client config.
func (c *Config) TrendsClient() trends.Config {
	return trends.Config{
		Endpoint:     c.Trends.Endpoint,
		ClientID:     c.Trends.ClientID,
		ClientSecret: c.Trends.ClientSecret,
		Timeout:      c.Trends.Timeout,
	}
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

package config

import (
	"time"

	"trendboard/pkg/logger"
)

type Config struct {
	Server         ServerConfig    `mapstructure:"server"`
	Trends         TrendsConfig    `mapstructure:"trends"`
	Session        SessionConfig   `mapstructure:"session"`
	Logger         logger.Config   `mapstructure:"logger"`
	DefaultCountry string          `mapstructure:"default_country"`
	Countries      []CountryConfig `mapstructure:"countries"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TrendsConfig holds the DataLab credentials. ClientID and ClientSecret have
// no defaults and must come from the config file or environment.
type TrendsConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// CountryConfig overrides one row of the built-in country table.
type CountryConfig struct {
	Code        string `mapstructure:"code"`
	Name        string `mapstructure:"name"`
	Substitute  string `mapstructure:"substitute"`
	EngineLabel string `mapstructure:"engine_label"`
	MapImageURL string `mapstructure:"map_image_url"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}

// backend/internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Scraping  ScrapingConfig  `yaml:"scraping"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Database  DatabaseConfig  `yaml:"database"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Env   string `yaml:"env"`
	Debug bool   `yaml:"debug"`
	Port  int    `yaml:"port"`
}

type ScrapingConfig struct {
	UserAgent         string  `yaml:"user_agent"`
	FetchTimeoutSec   int     `yaml:"fetch_timeout_sec"`
	APITimeoutSec     int     `yaml:"api_timeout_sec"`
	RequestTimeoutSec int     `yaml:"request_timeout_sec"`
	RatePerDomain     float64 `yaml:"rate_per_domain"`
	RateBurst         int     `yaml:"rate_burst"`

	// Per-site API base URL overrides; empty means the adapter default.
	Sites map[string]SiteConfig `yaml:"sites"`
}

type SiteConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
}

type GeocodingConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c ScrapingConfig) FetchTimeout() time.Duration {
	return secondsOr(c.FetchTimeoutSec, 15*time.Second)
}

func (c ScrapingConfig) APITimeout() time.Duration {
	return secondsOr(c.APITimeoutSec, 10*time.Second)
}

func (c ScrapingConfig) RequestTimeout() time.Duration {
	return secondsOr(c.RequestTimeoutSec, 30*time.Second)
}

func secondsOr(secs int, fallback time.Duration) time.Duration {
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// LoadConfig reads configs/app.yaml and configs/scraping.yaml, then
// applies environment overrides for the database credentials so secrets
// stay out of the YAML files.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	basePath := filepath.Join("configs", "app.yaml")
	yamlFile, err := os.ReadFile(basePath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return nil, err
	}

	scrapingPath := filepath.Join("configs", "scraping.yaml")
	scrapingFile, err := os.ReadFile(scrapingPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(scrapingFile, &cfg.Scraping); err != nil {
		return nil, err
	}

	cfg.Database.Host = getEnv("POSTGRES_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("POSTGRES_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("POSTGRES_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("POSTGRES_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("POSTGRES_DB", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("POSTGRES_SSLMODE", cfg.Database.SSLMode)

	return cfg, nil
}

// Site returns the config block for a site id, zero-valued when the
// YAML has no entry for it.
func (c ScrapingConfig) Site(name string) SiteConfig {
	return c.Sites[name]
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

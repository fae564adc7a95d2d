package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Memory    MemoryConfig              `json:"memory"`
	Catalog   CatalogConfig             `json:"catalog"`
}

type AppConfig struct {
	Name string `json:"name"`
}

type GatewayConfig struct {
	Token   string `json:"token,omitempty"`
	Listen  string `json:"listen,omitempty"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type CatalogConfig struct {
	Endpoint   string `json:"endpoint,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetWebConfig returns the web gateway config if enabled
func (c *Config) GetWebConfig() (GatewayConfig, bool) {
	web, ok := c.Gateways["web"]
	if ok && web.Enabled {
		if web.Listen == "" {
			web.Listen = ":8080"
		}
		return web, true
	}
	return GatewayConfig{}, false
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}

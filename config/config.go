// Package config loads the accounts file that drives collection runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Version    string    `yaml:"version"`
	StorageDir string    `yaml:"storage_dir,omitempty"`
	Accounts   []Account `yaml:"accounts"`

	// StoreProviderRaw controls whether the original raw record is kept in
	// persisted metadata. Default true.
	StoreProviderRaw *bool `yaml:"store_provider_raw,omitempty"`
}

// Account describes one cloud account to collect from. Credential fields are
// provider dependent: AWS uses a shared-config profile, Cloudflare an API
// token, Aliyun an access key pair.
type Account struct {
	Name          string            `yaml:"name"`
	Provider      string            `yaml:"provider"`
	AccountID     string            `yaml:"account_id"`
	DefaultRegion string            `yaml:"default_region,omitempty"`
	Regions       []string          `yaml:"regions,omitempty"`
	Profile       string            `yaml:"profile,omitempty"`
	APIToken      string            `yaml:"api_token,omitempty"`
	AccessKeyID   string            `yaml:"access_key_id,omitempty"`
	AccessSecret  string            `yaml:"access_key_secret,omitempty"`
	Tags          map[string]string `yaml:"tags,omitempty"`
}

// Region returns the account's default region, falling back to the first
// listed region.
func (a *Account) Region() string {
	if a.DefaultRegion != "" {
		return a.DefaultRegion
	}
	if len(a.Regions) > 0 {
		return a.Regions[0]
	}
	return ""
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	for i, acct := range c.Accounts {
		if acct.Provider == "" {
			return fmt.Errorf("account %d: provider is required", i)
		}
		if acct.AccountID == "" {
			return fmt.Errorf("account %d: account_id is required", i)
		}
	}
	return nil
}

// RetainProviderRaw reports whether raw records should be persisted.
func (c *Config) RetainProviderRaw() bool {
	if c.StoreProviderRaw == nil {
		return true
	}
	return *c.StoreProviderRaw
}

// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for issuepilot.
//
// Configuration is loaded from a single file specified by either the
// ISSUEPILOT_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]); there is no automatic file discovery. When no
// file is named, Load falls back to the defaults. In either case the
// GITHUB_TOKEN, GITHUB_REPO, and DEVIN_API_KEY environment variables
// override the file, so the file never needs to hold secrets and a
// purely environment-driven deployment needs no file at all.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the issuepilot service.
type Config struct {
	// Listen is the HTTP listen address. Defaults to "127.0.0.1:8000".
	Listen string `yaml:"listen"`

	// FrontendOrigins are the origins permitted by the CORS layer.
	FrontendOrigins []string `yaml:"frontend_origins"`

	// GitHub configures the issue tracker client.
	GitHub GitHubConfig `yaml:"github"`

	// Devin configures the AI-agent client and session polling.
	Devin DevinConfig `yaml:"devin"`
}

// GitHubConfig configures the GitHub REST client.
type GitHubConfig struct {
	// Token is the API token. Overridden by GITHUB_TOKEN when set.
	Token string `yaml:"token"`

	// Repo is the target repository in "owner/name" form.
	Repo string `yaml:"repo"`

	// APIBase is the REST API root. Defaults to the public API.
	APIBase string `yaml:"api_base"`
}

// DevinConfig configures the Devin API client.
type DevinConfig struct {
	// APIKey is the bearer token. Overridden by DEVIN_API_KEY when set.
	APIKey string `yaml:"api_key"`

	// APIBase is the API root. Defaults to "https://api.devin.ai/v1".
	APIBase string `yaml:"api_base"`

	// PollIntervalSeconds is the delay between session status fetches
	// while waiting for an analysis to finish. Defaults to 5.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// MaxWaitSeconds is the total polling budget for a synchronous
	// analysis before the partial session state is returned as-is.
	// Defaults to 300.
	MaxWaitSeconds int `yaml:"max_wait_seconds"`
}

// PollInterval returns the poll interval as a duration.
func (c DevinConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// MaxWait returns the polling budget as a duration.
func (c DevinConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

// Default returns a Config with development defaults. Credentials and
// the repository are empty; Validate reports them missing until the
// caller fills them in.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:8000",
		FrontendOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
		GitHub: GitHubConfig{
			APIBase: "https://api.github.com",
		},
		Devin: DevinConfig{
			APIBase:             "https://api.devin.ai/v1",
			PollIntervalSeconds: 5,
			MaxWaitSeconds:      300,
		},
	}
}

// Load reads the configuration file named by the ISSUEPILOT_CONFIG
// environment variable. When the variable is unset the defaults are
// used with credential environment variables folded in, so a
// deployment configured purely through GITHUB_TOKEN, GITHUB_REPO, and
// DEVIN_API_KEY needs no file at all.
func Load() (*Config, error) {
	path := os.Getenv("ISSUEPILOT_CONFIG")
	if path == "" {
		cfg := Default()
		cfg.applyEnvironment()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the configuration file at path.
// Defaults are applied for unset fields and credential environment
// variables are folded in before validation.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults restores defaults for fields an explicit config file
// entry set to the zero value.
func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Listen == "" {
		c.Listen = defaults.Listen
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = defaults.GitHub.APIBase
	}
	if c.Devin.APIBase == "" {
		c.Devin.APIBase = defaults.Devin.APIBase
	}
	if c.Devin.PollIntervalSeconds <= 0 {
		c.Devin.PollIntervalSeconds = defaults.Devin.PollIntervalSeconds
	}
	if c.Devin.MaxWaitSeconds <= 0 {
		c.Devin.MaxWaitSeconds = defaults.Devin.MaxWaitSeconds
	}
}

// applyEnvironment folds credential environment variables over the
// file contents. Environment wins so deployments can keep secrets out
// of the config file entirely.
func (c *Config) applyEnvironment() {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.GitHub.Token = token
	}
	if repo := os.Getenv("GITHUB_REPO"); repo != "" {
		c.GitHub.Repo = repo
	}
	if key := os.Getenv("DEVIN_API_KEY"); key != "" {
		c.Devin.APIKey = key
	}
}

// Validate checks structural requirements. A missing credential is not
// an error here — the health endpoint reports configuration
// completeness and the fallback layer covers unconfigured integrations
// — but a malformed repository reference is.
func (c *Config) Validate() error {
	if c.GitHub.Repo != "" {
		owner, name, ok := strings.Cut(c.GitHub.Repo, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("github.repo must be \"owner/name\" (got %q)", c.GitHub.Repo)
		}
	}
	if !strings.HasPrefix(c.GitHub.APIBase, "https://") {
		return fmt.Errorf("github.api_base must use HTTPS (got %q)", c.GitHub.APIBase)
	}
	if !strings.HasPrefix(c.Devin.APIBase, "https://") {
		return fmt.Errorf("devin.api_base must use HTTPS (got %q)", c.Devin.APIBase)
	}
	return nil
}

// Complete reports whether every credential needed for full operation
// is present. Mirrors the health endpoint's configuration probe.
func (c *Config) Complete() bool {
	return c.GitHub.Token != "" && c.GitHub.Repo != "" && c.Devin.APIKey != ""
}

// RepoOwnerName splits the configured repository into owner and name.
// Both are empty when no repository is configured.
func (c *Config) RepoOwnerName() (owner, name string) {
	owner, name, _ = strings.Cut(c.GitHub.Repo, "/")
	return owner, name
}

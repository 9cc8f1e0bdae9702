// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"
)

// FetchConfig holds the shared HTTP settings used by every adapter.
type FetchConfig struct {
	// Timeout bounds a single request attempt, body read included.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every request (e.g. "votewallet/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxConcurrent is the global ceiling on in-flight requests.
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBaseDelay is the first backoff; attempt n waits base * 2^(n-1).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay"`
}

// SourceConfig holds the settings every adapter shares.
type SourceConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// RateLimit is the declared upstream budget in requests per hour.
	RateLimit int `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// Reliability weights this source's evidence, in [0,1].
	Reliability float64 `json:"reliability" yaml:"reliability" mapstructure:"reliability"`
}

// GeodataConfig configures the place-search adapter.
type GeodataConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent to the place-search service as a contact address.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// Keywords are the business-type terms searched in every city.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// CuratedConfig configures the curated-list adapter.
type CuratedConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	// File replaces the built-in list when set.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// DonationConfig configures the donation-registry evidence source.
type DonationConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MinYear drops donations older than this cycle year.
	MinYear int `json:"min_year,omitempty" yaml:"min_year,omitempty" mapstructure:"min_year"`
}

// StatementConfig configures the statement-feed evidence source.
type StatementConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	Feeds []string `json:"feeds" yaml:"feeds" mapstructure:"feeds"`
}

// SourcesConfig groups all adapter settings.
type SourcesConfig struct {
	Geodata      GeodataConfig   `json:"geodata" yaml:"geodata" mapstructure:"geodata"`
	Encyclopedic SourceConfig    `json:"encyclopedic" yaml:"encyclopedic" mapstructure:"encyclopedic"`
	Curated      CuratedConfig   `json:"curated" yaml:"curated" mapstructure:"curated"`
	Pattern      SourceConfig    `json:"pattern" yaml:"pattern" mapstructure:"pattern"`
	Donations    DonationConfig  `json:"donations" yaml:"donations" mapstructure:"donations"`
	Statements   StatementConfig `json:"statements" yaml:"statements" mapstructure:"statements"`
}

// OrchestratorConfig holds the tiered scheduler settings.
type OrchestratorConfig struct {
	// BatchSize is the number of businesses persisted between batch delays.
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay" mapstructure:"batch_delay"`
	TierDelay  time.Duration `json:"tier_delay" yaml:"tier_delay" mapstructure:"tier_delay"`

	// TiersFile is a YAML file holding the tier table; empty uses the
	// configured or built-in table.
	TiersFile string `json:"tiers_file,omitempty" yaml:"tiers_file,omitempty" mapstructure:"tiers_file"`

	// IdentityStrategy selects the dedup key: "name_city_state" or
	// "name_city_state_address".
	IdentityStrategy string `json:"identity_strategy" yaml:"identity_strategy" mapstructure:"identity_strategy"`
}

// CacheConfig selects and configures the alignment cache.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `json:"backend" yaml:"backend" mapstructure:"backend"`
	TTL     time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty" mapstructure:"redis_db"`
}

// BlendPolicy decides how community submissions combine with the
// evidence-based vector.
type BlendPolicy string

const (
	PolicyOverwrite BlendPolicy = "overwrite"
	PolicyBlend     BlendPolicy = "blend"
)

// ContribConfig configures the contribution aggregator.
type ContribConfig struct {
	Policy BlendPolicy `json:"policy" yaml:"policy" mapstructure:"policy"`

	// EvidenceWeight is the evidence share under PolicyBlend, in [0,1].
	EvidenceWeight float64 `json:"evidence_weight" yaml:"evidence_weight" mapstructure:"evidence_weight"`
}

// StoreConfig selects the persistence gateway.
type StoreConfig struct {
	// Driver is "sqlite3", "postgres" or "memory".
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// LogoConfig configures the logo fetcher.
type LogoConfig struct {
	Dir   string        `json:"dir" yaml:"dir" mapstructure:"dir"`
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups every configuration section.
type PipelineConfig struct {
	Fetch        FetchConfig        `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Sources      SourcesConfig      `json:"sources" yaml:"sources" mapstructure:"sources"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator" mapstructure:"orchestrator"`
	Cache        CacheConfig        `json:"cache" yaml:"cache" mapstructure:"cache"`
	Contrib      ContribConfig      `json:"contrib" yaml:"contrib" mapstructure:"contrib"`
	Store        StoreConfig        `json:"store" yaml:"store" mapstructure:"store"`
	Logo         LogoConfig         `json:"logo" yaml:"logo" mapstructure:"logo"`
	Log          LogConfig          `json:"log" yaml:"log" mapstructure:"log"`
	Tiers        []TierTarget       `json:"tiers,omitempty" yaml:"tiers,omitempty" mapstructure:"tiers"`
}

// DefaultPipelineConfig returns the settings used when no config file
// overrides them.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			Timeout:        30 * time.Second,
			UserAgent:      "votewallet/0.1 (contact@example.com)",
			MaxConcurrent:  4,
			MaxRetries:     3,
			RetryBaseDelay: 2 * time.Second,
		},
		Sources: SourcesConfig{
			Geodata: GeodataConfig{
				SourceConfig: SourceConfig{Enabled: true, RateLimit: 3600, Reliability: 0.8},
				Keywords: []string{
					"restaurant", "cafe", "supermarket", "pharmacy", "bank",
					"hardware store", "clothing store", "fuel", "gym", "hotel",
				},
			},
			Encyclopedic: SourceConfig{Enabled: true, RateLimit: 1800, Reliability: 0.5},
			Curated:      CuratedConfig{SourceConfig: SourceConfig{Enabled: true, RateLimit: 0, Reliability: 0.95}},
			Pattern:      SourceConfig{Enabled: true, RateLimit: 0, Reliability: 0.2},
			Donations: DonationConfig{
				SourceConfig: SourceConfig{Enabled: true, RateLimit: 1000, Reliability: 0.9},
			},
			Statements: StatementConfig{
				SourceConfig: SourceConfig{Enabled: false, RateLimit: 600, Reliability: 0.6},
			},
		},
		Orchestrator: OrchestratorConfig{
			BatchSize:        50,
			BatchDelay:       5 * time.Second,
			TierDelay:        30 * time.Second,
			IdentityStrategy: "name_city_state",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
		Contrib: ContribConfig{
			Policy:         PolicyOverwrite,
			EvidenceWeight: 0.5,
		},
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    "data/votewallet.db",
		},
		Logo: LogoConfig{
			Dir:   "company_logos",
			Delay: 3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports every configuration problem found, joined.
func (c PipelineConfig) Validate() error {
	var errs []error
	if c.Fetch.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_concurrent must be positive, got %d", c.Fetch.MaxConcurrent))
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries must not be negative, got %d", c.Fetch.MaxRetries))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be positive, got %v", c.Fetch.Timeout))
	}
	if c.Orchestrator.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("orchestrator.batch_size must be positive, got %d", c.Orchestrator.BatchSize))
	}
	switch c.Orchestrator.IdentityStrategy {
	case "", "name_city_state", "name_city_state_address":
	default:
		errs = append(errs, fmt.Errorf("orchestrator.identity_strategy %q is not supported", c.Orchestrator.IdentityStrategy))
	}
	switch c.Cache.Backend {
	case "", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend))
	}
	switch c.Contrib.Policy {
	case "", PolicyOverwrite, PolicyBlend:
	default:
		errs = append(errs, fmt.Errorf("contrib.policy %q is not supported", c.Contrib.Policy))
	}
	if c.Contrib.EvidenceWeight < 0 || c.Contrib.EvidenceWeight > 1 {
		errs = append(errs, fmt.Errorf("contrib.evidence_weight must be in [0,1], got %v", c.Contrib.EvidenceWeight))
	}
	switch c.Store.Driver {
	case "sqlite3", "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not supported", c.Store.Driver))
	}
	for _, t := range c.Tiers {
		if t.Tier < 1 || t.Tier > 4 {
			errs = append(errs, fmt.Errorf("tier for %s must be 1..4, got %d", t.State, t.Tier))
		}
		if t.Quota <= 0 {
			errs = append(errs, fmt.Errorf("quota for %s must be positive, got %d", t.State, t.Quota))
		}
	}
	return errors.Join(errs...)
}

// Package config holds the provisiond configuration, loaded through Viper
// from a TOML file with PROVISIOND_* environment overrides.
package config

// Config represents the core provisiond configuration
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Provisioner ProvisionerConfig `mapstructure:"provisioner"`
	Thresholds  []ThresholdTarget `mapstructure:"thresholds"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig configures the recurring job scheduler
type SchedulerConfig struct {
	Enabled               bool   `mapstructure:"enabled"`                 // Start the ticker at bootstrap
	TickerIntervalSeconds int    `mapstructure:"ticker_interval_seconds"` // How often to check for due jobs (default: 30)
	DefaultRegion         string `mapstructure:"default_region"`          // Fallback when region discovery fails (default: SIT1)
}

// ProvisionerConfig configures provisioning attempt execution
type ProvisionerConfig struct {
	Workers               int     `mapstructure:"workers"`                 // Concurrent provisioning attempts per run (default: 1 = sequential)
	AttemptTimeoutSeconds int     `mapstructure:"attempt_timeout_seconds"` // Per-attempt timeout; expiry counts as a failed outcome (default: 120)
	RatePerSecond         float64 `mapstructure:"rate_per_second"`         // Attempt pacing against the banking backends; 0 = unpaced
	MiningPercent         int     `mapstructure:"mining_percent"`          // Default mining share for blended jobs (default: 50)
	Seed                  int64   `mapstructure:"seed"`                    // Seed for demographic/product attribute selection; 0 = time-based
	GatewayURL            string  `mapstructure:"gateway_url"`             // Account gateway base URL; empty = synthetic local provisioning
	GatewayTimeoutSeconds int     `mapstructure:"gateway_timeout_seconds"` // Whole-request bound per gateway call (default: 30)
}

// ThresholdTarget declares how many NEW reserved accounts a
// (account type, customer type, region, source) combination should hold.
// An empty region is the region-agnostic default, mirroring job_control
// flag lookup.
type ThresholdTarget struct {
	AccountType  string `mapstructure:"account_type"`  // dda, cca
	CustomerType string `mapstructure:"customer_type"` // P, B
	Region       string `mapstructure:"region"`        // SIT1, SIT2, ... or "" for all regions
	Source       string `mapstructure:"source"`        // Mining, SDG
	Target       int    `mapstructure:"target"`
}

// Target looks up the configured threshold target for a combination.
// Lookup order matches the flag gate: exact region first, then the
// region-agnostic default. Returns false when no target is configured.
func (c *Config) Target(accountType, customerType, region, source string) (int, bool) {
	fallback := -1
	for i := range c.Thresholds {
		t := &c.Thresholds[i]
		if t.AccountType != accountType || t.CustomerType != customerType || t.Source != source {
			continue
		}
		if t.Region == region {
			return t.Target, true
		}
		if t.Region == "" {
			fallback = i
		}
	}
	if fallback >= 0 {
		return c.Thresholds[fallback].Target, true
	}
	return 0, false
}

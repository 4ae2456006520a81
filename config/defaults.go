package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "provisiond.db")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", false) // Jobs register but the ticker stays idle unless enabled
	v.SetDefault("scheduler.ticker_interval_seconds", 30)
	v.SetDefault("scheduler.default_region", "SIT1")

	// Provisioner defaults
	v.SetDefault("provisioner.workers", 1) // Sequential; bump for concurrent attempts
	v.SetDefault("provisioner.attempt_timeout_seconds", 120)
	v.SetDefault("provisioner.rate_per_second", 0.0) // Unpaced
	v.SetDefault("provisioner.mining_percent", 50)
	v.SetDefault("provisioner.seed", 0)
	v.SetDefault("provisioner.gateway_url", "") // Synthetic provisioning unless a gateway is configured
	v.SetDefault("provisioner.gateway_timeout_seconds", 30)
}

// DefaultThresholds returns the built-in threshold targets used when the
// config file declares none. Values match the long-standing per-customer
// defaults: personal DDA 100, business DDA 50, personal CCA 50, business
// CCA 30, split evenly across both sources.
func DefaultThresholds() []ThresholdTarget {
	return []ThresholdTarget{
		{AccountType: "dda", CustomerType: "P", Region: "", Source: "Mining", Target: 50},
		{AccountType: "dda", CustomerType: "P", Region: "", Source: "SDG", Target: 50},
		{AccountType: "dda", CustomerType: "B", Region: "", Source: "Mining", Target: 25},
		{AccountType: "dda", CustomerType: "B", Region: "", Source: "SDG", Target: 25},
		{AccountType: "cca", CustomerType: "P", Region: "", Source: "Mining", Target: 25},
		{AccountType: "cca", CustomerType: "P", Region: "", Source: "SDG", Target: 25},
		{AccountType: "cca", CustomerType: "B", Region: "", Source: "Mining", Target: 15},
		{AccountType: "cca", CustomerType: "B", Region: "", Source: "SDG", Target: 15},
	}
}

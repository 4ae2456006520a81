package config

import "github.com/meridianbank/provisiond/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Scheduler ticker interval: 0 = no periodic ticking, negative = invalid
	if c.Scheduler.TickerIntervalSeconds < 0 {
		return errors.Newf("scheduler.ticker_interval_seconds must be >= 0, got %d", c.Scheduler.TickerIntervalSeconds)
	}
	if c.Scheduler.DefaultRegion == "" {
		return errors.New("scheduler.default_region cannot be empty")
	}

	// Provisioner workers: at least one attempt slot
	if c.Provisioner.Workers < 1 {
		return errors.Newf("provisioner.workers must be >= 1, got %d", c.Provisioner.Workers)
	}
	if c.Provisioner.AttemptTimeoutSeconds < 0 {
		return errors.Newf("provisioner.attempt_timeout_seconds must be >= 0, got %d", c.Provisioner.AttemptTimeoutSeconds)
	}
	if c.Provisioner.RatePerSecond < 0 {
		return errors.Newf("provisioner.rate_per_second must be >= 0, got %f", c.Provisioner.RatePerSecond)
	}
	if c.Provisioner.MiningPercent < 0 || c.Provisioner.MiningPercent > 100 {
		return errors.Newf("provisioner.mining_percent must be in [0,100], got %d", c.Provisioner.MiningPercent)
	}
	if c.Provisioner.GatewayURL != "" && c.Provisioner.GatewayTimeoutSeconds < 1 {
		return errors.Newf("provisioner.gateway_timeout_seconds must be >= 1 when a gateway is configured, got %d", c.Provisioner.GatewayTimeoutSeconds)
	}

	for _, t := range c.Thresholds {
		if t.AccountType == "" || t.CustomerType == "" || t.Source == "" {
			return errors.Newf("threshold target missing account_type/customer_type/source: %+v", t)
		}
		if t.Target < 0 {
			return errors.Newf("threshold target must be >= 0, got %d for %s/%s/%s/%s",
				t.Target, t.AccountType, t.CustomerType, t.Region, t.Source)
		}
	}

	return nil
}

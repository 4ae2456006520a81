package commands

import (
	"database/sql"
	"time"

	"github.com/meridianbank/provisiond/accounts"
	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/flags"
	"github.com/meridianbank/provisiond/job"
	"github.com/meridianbank/provisiond/logger"
	"github.com/meridianbank/provisiond/quota"
	"github.com/meridianbank/provisiond/runner"
)

// buildFactory wires the job factory from configuration and an open database.
func buildFactory(cfg *config.Config, database *sql.DB) *job.Factory {
	accountStore := accounts.NewStore(database)

	poolCfg := runner.PoolConfig{
		Workers:        cfg.Provisioner.Workers,
		AttemptTimeout: time.Duration(cfg.Provisioner.AttemptTimeoutSeconds) * time.Second,
		RatePerSecond:  cfg.Provisioner.RatePerSecond,
	}

	var provisioner accounts.Provisioner
	if cfg.Provisioner.GatewayURL != "" {
		provisioner = accounts.NewHTTPProvisioner(
			cfg.Provisioner.GatewayURL,
			time.Duration(cfg.Provisioner.GatewayTimeoutSeconds)*time.Second,
			logger.Logger)
	} else {
		provisioner = accounts.NewSyntheticProvisioner(cfg.Provisioner.Seed, 0, logger.Logger)
	}

	deps := job.Deps{
		Gate:        flags.NewGate(flags.NewStore(database), logger.Logger),
		Calculator:  quota.NewCalculator(accountStore, cfg, logger.Logger),
		Pool:        runner.NewPool(poolCfg, logger.Logger),
		Provisioner: provisioner,
		Records:     accountStore,
		Picker:      accounts.NewPicker(cfg.Provisioner.Seed),
		Logger:      logger.Logger,
	}

	return job.NewFactory(deps, cfg.Provisioner.MiningPercent)
}

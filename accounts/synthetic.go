package accounts

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/errors"
)

// SyntheticProvisioner creates test accounts locally instead of calling a
// downstream banking core. Account numbers are ten digits prefixed by a
// region-independent product discriminator, unique per process.
type SyntheticProvisioner struct {
	logger *zap.SugaredLogger

	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
	issued      map[string]struct{}
}

// NewSyntheticProvisioner creates a provisioner seeded for reproducible
// account numbers. failureRate in [0,1] injects creation failures for
// exercising partial-completion paths; 0 disables injection.
func NewSyntheticProvisioner(seed int64, failureRate float64, logger *zap.SugaredLogger) *SyntheticProvisioner {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	return &SyntheticProvisioner{
		logger:      logger,
		rng:         rand.New(rand.NewSource(seed)),
		failureRate: failureRate,
		issued:      make(map[string]struct{}),
	}
}

// CreateAccount provisions one synthetic account.
func (p *SyntheticProvisioner) CreateAccount(ctx context.Context, req Request) (EntityRef, error) {
	if err := ctx.Err(); err != nil {
		return EntityRef{}, err
	}

	code, err := ProductCode(req.AccountType, req.CustomerType)
	if err != nil {
		return EntityRef{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failureRate > 0 && p.rng.Float64() < p.failureRate {
		return EntityRef{}, errors.Newf("synthetic creation failure for %s/%s in %s", req.AccountType, req.CustomerType, req.Region)
	}

	number := p.nextAccountNumber()

	p.logger.Debugw("Provisioned synthetic account",
		"account_number", number,
		"product_code", code,
		"product_hint", req.ProductHint,
		"region", req.Region,
		"source", req.Source)

	return EntityRef{AccountNumber: number, ProductCode: code}, nil
}

// nextAccountNumber draws numbers until one is unused. Caller holds mu.
func (p *SyntheticProvisioner) nextAccountNumber() string {
	for {
		n := fmt.Sprintf("9%09d", p.rng.Intn(1_000_000_000))
		if _, taken := p.issued[n]; taken {
			continue
		}
		p.issued[n] = struct{}{}
		return n
	}
}

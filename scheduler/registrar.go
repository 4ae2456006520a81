package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/regions"
)

// Registrar registers the job catalog across every known region at startup.
type Registrar struct {
	store         *Store
	directory     regions.Directory
	defaultRegion string
	logger        *zap.SugaredLogger
}

// NewRegistrar creates a registrar. defaultRegion is the single region used
// when discovery fails or yields nothing.
func NewRegistrar(store *Store, directory regions.Directory, defaultRegion string, logger *zap.SugaredLogger) *Registrar {
	return &Registrar{
		store:         store,
		directory:     directory,
		defaultRegion: defaultRegion,
		logger:        logger,
	}
}

// Bootstrap discovers regions and registers the full catalog in each.
// Discovery failure degrades to the default region rather than leaving
// the scheduler empty.
func (r *Registrar) Bootstrap(ctx context.Context) error {
	regionCodes, err := r.directory.ListRegions(ctx)
	if err != nil {
		r.logger.Errorw("Region discovery failed, falling back to default region",
			"default_region", r.defaultRegion,
			"error", err)
		regionCodes = []string{r.defaultRegion}
	}
	if len(regionCodes) == 0 {
		r.logger.Warnw("Region discovery returned no regions, falling back to default region",
			"default_region", r.defaultRegion)
		regionCodes = []string{r.defaultRegion}
	}

	catalog := Catalog()
	registered := 0

	for _, region := range regionCodes {
		for _, desc := range catalog {
			if err := r.store.Register(ctx, desc.JobType, region, desc); err != nil {
				return errors.Wrapf(err, "failed to register %s in %s", desc.JobType, region)
			}
			registered++
		}
		r.logger.Infow("Registered job catalog for region",
			"region", region,
			"jobs", len(catalog))
	}

	r.logger.Infow("Scheduler bootstrap complete",
		"regions", len(regionCodes),
		"registered", registered)
	return nil
}

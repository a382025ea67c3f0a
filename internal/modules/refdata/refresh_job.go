package refdata

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob rebuilds the reference dataset from SQLite and swaps it into
// the store. Registered with the scheduler at a configurable cadence so
// edits to the underlying tables become visible without a restart.
type RefreshJob struct {
	loader *Loader
	store  *Store
	log    zerolog.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(loader *Loader, store *Store, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		loader: loader,
		store:  store,
		log:    log.With().Str("job", "refdata_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refdata_refresh"
}

// Run rebuilds the dataset and publishes it. The previous dataset stays
// live until the swap, so a failed rebuild never leaves readers without
// data.
func (j *RefreshJob) Run() error {
	started := time.Now()

	dataset, err := j.loader.BuildDataset()
	if err != nil {
		return fmt.Errorf("failed to rebuild reference dataset: %w", err)
	}
	j.store.Swap(dataset)

	j.log.Info().
		Int("clients", len(dataset.Clients)).
		Int("instruments", len(dataset.Instruments)).
		Int("snapshots", len(dataset.Snapshots)).
		Int("orders", len(dataset.Orders)).
		Dur("duration_ms", time.Since(started)).
		Msg("Reference dataset refreshed")

	return nil
}

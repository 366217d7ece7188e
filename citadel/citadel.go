// Package citadel runs the scheduled background refresh: it snapshots
// every watchlist symbol and files the result as a research bundle.
package citadel

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/store"
)

// Snapshotter fetches a compact per-symbol market view.
type Snapshotter interface {
	SymbolSnapshot(ctx context.Context, symbol string) (map[string]any, error)
}

// Refresher periodically refreshes research for watchlist symbols.
type Refresher struct {
	snapshots Snapshotter
	store     *store.Store
	cron      *cron.Cron
	timeout   time.Duration
	log       zerolog.Logger
}

// New creates a Refresher.
func New(snapshots Snapshotter, st *store.Store, log zerolog.Logger) *Refresher {
	return &Refresher{
		snapshots: snapshots,
		store:     st,
		timeout:   2 * time.Minute,
		log:       log.With().Str("component", "citadel").Logger(),
	}
}

// Start schedules the refresh at the given interval.
func (r *Refresher) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	r.cron = cron.New()
	_, err := r.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.RefreshOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.cron.Start()
	r.log.Info().Dur("interval", interval).Msg("refresh scheduled")
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *Refresher) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// RefreshOnce runs a single pass over the watchlist. Per-symbol failures
// are logged and skipped; the pass itself only fails when the watchlist
// cannot be read. Returns how many symbols were refreshed.
func (r *Refresher) RefreshOnce(ctx context.Context) int {
	items, err := r.store.Watchlist(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("load watchlist failed")
		return 0
	}

	refreshed := 0
	for _, item := range items {
		snapshot, err := r.snapshots.SymbolSnapshot(ctx, item.Symbol)
		if err != nil {
			r.log.Warn().Str("symbol", item.Symbol).Err(err).Msg("snapshot failed")
			continue
		}
		if _, err := r.store.StoreResearchBundle(ctx, item.Symbol, 1, snapshot); err != nil {
			r.log.Warn().Str("symbol", item.Symbol).Err(err).Msg("store bundle failed")
			continue
		}
		refreshed++
	}
	r.log.Info().Int("refreshed", refreshed).Int("watched", len(items)).Msg("refresh pass done")
	return refreshed
}

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lpiteam/autoorder/internal/cache"
	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/engine"
	"github.com/lpiteam/autoorder/internal/ingest"
	"github.com/lpiteam/autoorder/internal/settings"
)

// RunOptions tune one calculation run.
type RunOptions struct {
	// ExcludeKeywords overrides the default pseudo-item markers.
	ExcludeKeywords []string
	// UrgentRatioPct selects the share of urgent items to surface,
	// largest recommendation first.
	UrgentRatioPct int
}

// RunResult is the full outcome of one calculation run.
type RunResult struct {
	SnapshotID         string               `json:"snapshot_id"`
	PeriodDays         int                  `json:"period_days"`
	TotalRows          int                  `json:"total_rows"`
	ExcludedByKeyword  int                  `json:"excluded_by_keyword"`
	ExcludedByMinSales int                  `json:"excluded_by_min_sales"`
	OrderNeeded        []domain.OrderResult `json:"order_needed"`
	Overstock          []domain.OrderResult `json:"overstock"`
	Urgent             []domain.OrderResult `json:"urgent"`
	Summary            domain.RunSummary    `json:"summary"`
}

// OrderService runs replenishment calculations against a caller-owned
// settings store. The service itself is stateless between runs; every
// run resolves through one settings snapshot.
type OrderService struct {
	store   *settings.Store
	cache   cache.SummaryCache
	persist settings.Persistence
}

// NewOrderService wires the service. A nil cache degrades to noop; a
// nil persistence means settings live only in memory.
func NewOrderService(store *settings.Store, cacheImpl cache.SummaryCache, persist settings.Persistence) *OrderService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSummaryCache()
	}
	return &OrderService{store: store, cache: cacheImpl, persist: persist}
}

// Store exposes the underlying settings store for handlers.
func (s *OrderService) Store() *settings.Store {
	return s.store
}

// LoadPersistedSettings restores the last saved store state, if any.
func (s *OrderService) LoadPersistedSettings() error {
	if s.persist == nil {
		return nil
	}

	snap, err := s.persist.Load()
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	s.store.Restore(*snap)
	log.Info().Int("supplier_defaults", len(snap.Suppliers)).Int("item_overrides", len(snap.Items)).
		Msg("restored persisted settings")
	return nil
}

// ApplySettingsWorkbook replaces the store configuration with a parsed
// supplier workbook: master defaults when present, and the complete
// override set. Existing overrides are dropped first, matching the
// upstream full-replace behavior. Persistence failures are logged, not
// fatal; read-only deployments calculate fine without saving.
func (s *OrderService) ApplySettingsWorkbook(parsed *ingest.ParsedSettings) {
	s.store.ClearAllOverrides()
	if parsed.Master != nil {
		s.store.ReplaceMasterDefaults(*parsed.Master)
	}
	for code, patch := range parsed.Overrides {
		s.store.UpsertItemOverride(code, patch)
	}

	if s.persist != nil {
		if err := s.persist.Save(s.store.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("failed to persist settings")
		}
	}
}

// ClearOverrides drops every supplier default and item override and
// persists the reset state.
func (s *OrderService) ClearOverrides() {
	s.store.ClearAllOverrides()
	if s.persist != nil {
		if err := s.persist.Save(s.store.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("failed to persist settings")
		}
	}
}

// RunFromFile reads a snapshot workbook and runs the calculation.
func (s *OrderService) RunFromFile(ctx context.Context, path string, period domain.Period, opts RunOptions) (*RunResult, error) {
	items, err := ingest.ReadSnapshotFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot ingestion failed: %w", err)
	}
	return s.Run(ctx, path, items, period.Days(), opts)
}

// Run executes one batch calculation: filter, calculate, split,
// classify overstock, aggregate. A non-positive period does not abort
// the run; every row is marked period-invalid so counts still report.
func (s *OrderService) Run(ctx context.Context, snapshotID string, items []domain.ItemRecord, periodDays int, opts RunOptions) (*RunResult, error) {
	keywords := opts.ExcludeKeywords
	if keywords == nil {
		keywords = engine.DefaultExcludeKeywords
	}

	snap := s.store.Snapshot()

	if periodDays <= 0 {
		log.Warn().Int("period_days", periodDays).Msg("non-positive analysis period, all rows will be period-invalid")
	}

	filtered := engine.Filter(items, snap, keywords)
	results := engine.Calculate(filtered.Kept, snap, periodDays)
	orderNeeded, overstock := engine.Split(results)
	overstock = engine.ClassifyOverstock(overstock)
	summary := engine.Aggregate(orderNeeded, overstock)

	run := &RunResult{
		SnapshotID:         snapshotID,
		PeriodDays:         periodDays,
		TotalRows:          len(items),
		ExcludedByKeyword:  filtered.ExcludedByKeyword,
		ExcludedByMinSales: filtered.ExcludedByMinSales,
		OrderNeeded:        orderNeeded,
		Overstock:          overstock,
		Urgent:             engine.TopUrgent(orderNeeded, opts.UrgentRatioPct),
		Summary:            summary,
	}

	fp := cache.RunFingerprint{SnapshotID: snapshotID, PeriodDays: periodDays, SettingsRevision: snap.Revision}
	if err := s.cache.Set(ctx, fp, summary); err != nil {
		log.Warn().Err(err).Msg("failed to cache run summary")
	}

	log.Info().
		Str("snapshot", snapshotID).
		Int("total_rows", run.TotalRows).
		Int("excluded_by_keyword", run.ExcludedByKeyword).
		Int("excluded_by_min_sales", run.ExcludedByMinSales).
		Int("order_items", summary.Order.ItemCount).
		Int("overstock_items", summary.Overstock.ItemCount).
		Msg("calculation run complete")

	return run, nil
}

// CachedSummary returns the summary of a previous run over the same
// snapshot, period and settings revision, when one is cached.
func (s *OrderService) CachedSummary(ctx context.Context, snapshotID string, periodDays int) (*domain.RunSummary, bool) {
	fp := cache.RunFingerprint{
		SnapshotID:       snapshotID,
		PeriodDays:       periodDays,
		SettingsRevision: s.store.Revision(),
	}

	summary, ok, err := s.cache.Get(ctx, fp)
	if err != nil {
		log.Warn().Err(err).Msg("summary cache get failed")
		return nil, false
	}
	return summary, ok
}

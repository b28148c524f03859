package service

import (
	"context"
	"parkdesk/internal/entities"
	"parkdesk/internal/utils"
	"sync"
	"time"

	"go.uber.org/zap"
)

type SummarySource interface {
	GetSummary(ctx context.Context) (*entities.DashboardSummary, error)
}

// DashboardService serves the occupancy counters and the slot grid. The last
// good summary is cached and refreshed by the poller and after every change.
type DashboardService struct {
	summaries SummarySource
	slots     SlotLister
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	snapshot *entities.SummarySnapshot
}

func NewDashboardService(summaries SummarySource, slots SlotLister, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		summaries: summaries,
		slots:     slots,
		logger:    logger,
		now:       time.Now,
	}
}

// RefreshSummary fetches the summary. On failure the cached snapshot is kept
// and marked stale.
func (s *DashboardService) RefreshSummary(ctx context.Context) error {
	summary, err := s.summaries.GetSummary(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.snapshot != nil {
			// Readers may still hold the old pointer; swap in a copy.
			stale := *s.snapshot
			stale.Stale = true
			s.snapshot = &stale
		}
		s.logger.Warn("Refreshing dashboard summary failed", zap.Error(err))
		return err
	}
	s.snapshot = &entities.SummarySnapshot{Summary: *summary, FetchedAt: s.now()}
	return nil
}

// Summary returns the cached snapshot, fetching it first if none exists yet.
func (s *DashboardService) Summary(ctx context.Context) (entities.SummarySnapshot, error) {
	if snap, ok := s.cached(); ok {
		return snap, nil
	}
	if err := s.RefreshSummary(ctx); err != nil {
		return entities.SummarySnapshot{}, err
	}
	snap, _ := s.cached()
	return snap, nil
}

func (s *DashboardService) cached() (entities.SummarySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return entities.SummarySnapshot{}, false
	}
	return *s.snapshot, true
}

// Grid lays out the slots matching the filter category and returns the
// normalized category.
func (s *DashboardService) Grid(ctx context.Context, category string) ([]utils.GridRow, string, error) {
	category = utils.NormalizeFilter(category)
	var filter entities.SlotFilter
	if t, ok := utils.SlotTypeForFilter(category); ok {
		filter.Type = t
	}
	slots, err := s.slots.ListSlots(ctx, filter)
	if err != nil {
		return nil, category, err
	}
	return utils.BuildGrid(slots), category, nil
}

// Notify is the change hook handed to the entry, slot and session services.
func (s *DashboardService) Notify(ctx context.Context) {
	// The caller's request may end right after this returns.
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_ = s.RefreshSummary(ctx)
	}()
}

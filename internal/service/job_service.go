package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type JobService struct {
	Dashboard *DashboardService
	Entries   *EntryService
	FormTTL   time.Duration
	logger    *zap.Logger
}

func NewJobService(dashboard *DashboardService, entries *EntryService, formTTL time.Duration, logger *zap.Logger) *JobService {
	return &JobService{Dashboard: dashboard, Entries: entries, FormTTL: formTTL, logger: logger}
}

// PollDashboardSummary refreshes the cached occupancy counters.
func (s *JobService) PollDashboardSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.Dashboard.RefreshSummary(ctx); err != nil {
		s.logger.Warn("Cron Job: dashboard summary poll failed", zap.Error(err))
		return
	}
	s.logger.Debug("Cron Job: dashboard summary refreshed")
}

// EvictIdleForms discards entry forms nobody has touched within FormTTL.
func (s *JobService) EvictIdleForms() {
	n := s.Entries.EvictIdleForms(s.FormTTL)
	if n == 0 {
		return
	}
	s.logger.Info("Cron Job: evicted idle entry forms",
		zap.Int("evicted", n),
		zap.Int("open", s.Entries.OpenForms()),
	)
}

// NewScheduler builds the cron runner with both jobs registered. Overlapping
// runs of the same job are skipped.
func (s *JobService) NewScheduler(pollSpec string) (*cron.Cron, error) {
	logger := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(pollSpec, s.PollDashboardSummary); err != nil {
		return nil, fmt.Errorf("schedule dashboard poll %q: %w", pollSpec, err)
	}
	if _, err := c.AddFunc("@every 1m", s.EvictIdleForms); err != nil {
		return nil, fmt.Errorf("schedule form eviction: %w", err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

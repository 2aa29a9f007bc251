package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	applog "budgetly/internal/log"
)

// DigestScheduler runs AlertWorker.RunDigest for the previous month on a cron schedule.
type DigestScheduler struct {
	worker  *AlertWorker
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.Mutex
	running bool
	base    context.Context
	cancel  context.CancelFunc
}

// NewDigestScheduler parses a standard five-field cron spec evaluated in loc.
func NewDigestScheduler(w *AlertWorker, spec string, loc *time.Location) (*DigestScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &DigestScheduler{
		worker:  w,
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling. Returns an error if already running.
func (s *DigestScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("digest scheduler is already running")
	}
	s.running = true
	s.base, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	slog.InfoContext(ctx, "Digest scheduler started", "entries", len(s.cron.Entries()))
	return nil
}

// Stop halts scheduling and waits for a running digest, or for ctx to end.
func (s *DigestScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		slog.InfoContext(ctx, "Digest scheduler stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Digest scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *DigestScheduler) runOnce() {
	s.mu.Lock()
	base := s.base
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()

	period := s.worker.reports.CurrentPeriod().Previous()
	if _, err := s.worker.RunDigest(ctx, period); err != nil {
		slog.ErrorContext(ctx, "Digest failed",
			"period", period.Key(),
			applog.FieldError, err)
	}
}

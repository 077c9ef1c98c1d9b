// Package retention purges stored call transcripts on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/logging"
)

const purgeTimeout = time.Minute

// Purger deletes transcripts created before cutoff.
type Purger interface {
	PurgeTranscripts(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs the transcript purge job.
type Scheduler struct {
	purger   Purger
	maxAge   time.Duration
	schedule string
	now      func() time.Time

	mu      sync.Mutex
	cron    *cronlib.Cron
	entryID cronlib.EntryID
}

// New creates a scheduler for cfg. It returns nil when retention is disabled.
func New(p Purger, cfg config.RetentionConfig) (*Scheduler, error) {
	if cfg.Transcripts <= 0 {
		return nil, nil
	}
	if _, err := cronlib.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("retention: invalid schedule %q: %w", cfg.Schedule, err)
	}
	return &Scheduler{
		purger:   p,
		maxAge:   cfg.Transcripts,
		schedule: cfg.Schedule,
		now:      time.Now,
	}, nil
}

// Start registers the purge job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cronlib.New()
	id, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Errorf("transcript purge failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	s.cron, s.entryID = c, id
	logging.Infof("transcript retention: keeping %s, schedule %q", s.maxAge, s.schedule)
	return nil
}

// Next reports when the purge job fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunOnce deletes every transcript older than the retention window.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.maxAge)
	n, err := s.purger.PurgeTranscripts(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Infof("purged %d transcript lines older than %s", n, cutoff.UTC().Format(time.RFC3339))
	}
	return n, nil
}

// Stop stops the cron runner and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

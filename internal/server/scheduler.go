package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/internal/telemetry"
)

const syncLockKey = "billbot:sync:lock"

// SyncScheduler re-runs the knowledge base sweep on a cron schedule. The
// redis lock keeps replicas from sweeping concurrently.
type SyncScheduler struct {
	Sync     *kb.Synchronizer
	CronSpec string
	Rdb      *redis.Client
	Logger   *log.Logger
	Metrics  *telemetry.Metrics
	Stop     chan struct{}

	mu      sync.Mutex
	lastRun *time.Time
}

func (s *SyncScheduler) Start() {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *SyncScheduler) tick() {
	ctx := context.Background()
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()
	if !isDue(s.CronSpec, last) {
		return
	}

	if s.Rdb != nil {
		ok, _ := s.Rdb.SetNX(ctx, syncLockKey, "1", 2*time.Minute).Result()
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, syncLockKey)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRun = &now
	s.mu.Unlock()

	n, err := s.Sync.Sync(ctx)
	if err != nil {
		s.Logger.Printf("scheduled sync failed after %d merged: %v", n, err)
		s.countRun("failed", n)
		return
	}
	s.countRun("ok", n)
}

func (s *SyncScheduler) countRun(result string, n int) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.SyncRuns.WithLabelValues(result).Inc()
	s.Metrics.SyncedRecords.Add(float64(n))
}

// isDue determines if a sweep with cronSpec should run now based on the last
// run time. Supports "@daily", "@hourly", and 5-field cron expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			// Fallback: treat as @daily if invalid
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}

// Package scheduler drives the polling loops. Tasks run synchronously in the
// scheduler's goroutine, so two runs of the same task can never overlap: a
// tick that fires while the task is still executing is absorbed, not queued.
package scheduler

import (
	"context"
	"time"

	"quotebot/internal/logger"
)

type IntervalScheduler struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewIntervalScheduler(ctx context.Context, name string, interval time.Duration) *IntervalScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntervalScheduler{
		Name:     name,
		Interval: interval,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks, invoking task once per interval until the context is done.
func (s *IntervalScheduler) Start(task func()) {
	if s == nil || task == nil {
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("scheduler %s: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	logger.Infof("scheduler %s: started interval=%s run_immediately=%v", s.Name, s.Interval, s.RunImmediately)
	if s.RunImmediately {
		task()
	}

	timer := time.NewTimer(s.Interval)
	defer timer.Stop()
	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("scheduler %s: context done, exit", s.Name)
			return
		case <-timer.C:
		}
		started := s.nowFn()
		task()
		// If the task overran the interval, skip the missed ticks and
		// re-arm relative to completion.
		wait := s.Interval - s.nowFn().Sub(started)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

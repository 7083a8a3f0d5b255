// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs jobs on cron schedules. A job that is still
// running when its next slot comes up is skipped, not queued.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled task.
type Job func(ctx context.Context) error

// JobInfo describes a registered job.
type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

// Scheduler manages periodic jobs.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	timeout  time.Duration

	mu   sync.Mutex
	jobs map[string]cron.EntryID

	// ctx is cancelled by Stop only when running jobs outlast its deadline.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler in the given timezone ("Local" or an IANA name).
// timeout bounds each job run; zero means no limit.
func New(timezone string, timeout time.Duration) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     c,
		location: loc,
		timeout:  timeout,
		jobs:     make(map[string]cron.EntryID),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// AddJob registers a job. schedule accepts standard five-field cron
// expressions and descriptors such as "@every 5m" or "@hourly".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule job %s (%q): %w", name, schedule, err)
	}

	s.jobs[name] = entryID
	slog.Info("job scheduled", "job", name, "schedule", schedule)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Debug("job started", "job", name)
	if err := job(ctx); err != nil {
		slog.Error("job failed", "job", name, "error", err)
		return
	}
	slog.Debug("job completed", "job", name, "duration", time.Since(start))
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	slog.Info("scheduler started", "timezone", s.location.String())
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish. If ctx
// expires first, the jobs' context is cancelled and an error returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("scheduler stopping")
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// Jobs returns info about scheduled jobs.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}
	return infos
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"replybot/internal/config"
	"replybot/internal/handlers"
	"replybot/internal/middleware"
	"replybot/internal/render"
	"replybot/internal/router"
	"replybot/internal/scheduler"
	"replybot/internal/trigger"
)

const (
	tickJob = "tick"

	// tickTimeout bounds one scheduled tick.
	tickTimeout = 10 * time.Minute

	shutdownTimeout = 30 * time.Second
)

// runServe starts the dashboard and the scheduled pipeline, then blocks
// until SIGINT or SIGTERM.
func runServe(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	sched, err := scheduler.New(cfg.Timezone, tickTimeout)
	if err != nil {
		return err
	}
	err = sched.AddJob(tickJob, cfg.TickSchedule, func(ctx context.Context) error {
		summary := c.pipeline.Tick(ctx)
		slog.Info("scheduled tick finished", "summary", summary.String(), "duration", summary.Duration)
		return nil
	})
	if err != nil {
		return err
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RunNowLimit, time.Minute)
	defer limiter.Stop()

	api := handlers.NewAPI(c.store, c.engine, c.pipeline, c.poster, c.generator)
	if feed, ok := c.evaluator.(*trigger.Feed); ok {
		api.OnRuleDeleted(feed.ForgetRule)
	}
	pages := handlers.NewPages(renderer, c.store, pageInfo(cfg, c, sched))

	// WriteTimeout must cover a synchronous run-now tick, including AI
	// replies and simulated posting latency.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, pages, limiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	sched.Start()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopScheduler(sched)
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	stopScheduler(sched)

	slog.Info("server stopped gracefully")
	return nil
}

func stopScheduler(sched *scheduler.Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		slog.Error("scheduler did not stop cleanly", "error", err)
	}
}

// pageInfo describes the running setup for the settings page.
func pageInfo(cfg *config.Config, c *components, sched *scheduler.Scheduler) handlers.PageInfo {
	info := handlers.PageInfo{
		Platform:    c.poster.Platform(),
		TriggerMode: cfg.TriggerMode,
		Schedule:    cfg.TickSchedule,
		Notifiers:   c.notifier.Channels(),
		NextRun: func() time.Time {
			for _, j := range sched.Jobs() {
				if j.Name == tickJob {
					return j.NextRun
				}
			}
			return time.Time{}
		},
	}
	if c.generator.Available() {
		info.AIProvider = c.registry.ActiveName()
	}
	return info
}

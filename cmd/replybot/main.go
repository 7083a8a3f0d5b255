// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for replybot. It loads configuration,
// wires the posting pipeline and either serves the dashboard with a
// scheduled tick or runs a single tick from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"replybot/internal/config"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "replybot",
		Usage: "rule-driven templated replies with a web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity: debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(cctx *cli.Context) error {
			return setupLogging(cctx.String("log-level"))
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the dashboard and the scheduled pipeline",
				Action: runServe,
			},
			{
				Name:  "tick",
				Usage: "run pipeline ticks once and print the summary",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "number of ticks to run",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "write the resulting templates, rules and settings as a TOML seed file",
					},
				},
				Action: runTick,
			},
		},
		// Running without a command serves.
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("replybot failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs a text slog handler at the given level as default.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads and logs the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"trigger_mode", cfg.TriggerMode,
		"schedule", cfg.TickSchedule,
	)
	return cfg, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"replybot/internal/seed"
)

// runTick runs one or more pipeline ticks in the foreground and prints
// each summary, optionally exporting the resulting data as a seed file.
func runTick(cctx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := build(cctx.Context, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	count := cctx.Int("count")
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}

	for i := 1; i <= count; i++ {
		summary := c.pipeline.Tick(cctx.Context)
		fmt.Fprintf(cctx.App.Writer, "tick %d: %s (%s)\n", i, summary, summary.Duration.Round(time.Millisecond))
	}

	for _, e := range c.store.History() {
		line := fmt.Sprintf("  %s  %-7s  %s", e.Timestamp.Format("15:04:05"), e.Status, e.Content)
		if e.ErrorMessage != "" {
			line += "  (" + e.ErrorMessage + ")"
		}
		fmt.Fprintln(cctx.App.Writer, line)
	}

	if path := cctx.String("export"); path != "" {
		if err := exportSeed(path, c); err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "seed written to %s\n", path)
	}
	return nil
}

// exportSeed writes the store's contents to path as TOML.
func exportSeed(path string, c *components) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create seed export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close seed export: %w", cerr)
		}
	}()

	if err := seed.Export(f, c.store); err != nil {
		return fmt.Errorf("export seed: %w", err)
	}
	return nil
}

// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package network brings container network interfaces up.
//
// The bring-up strategy depends on the init system owning PID 1: with
// systemd the interface is managed by systemd-networkd, which is restarted
// to pick it up. With a minimal init the link is set up directly via
// netlink.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baseup/baseup/internal/initsys"
)

// Config are the parameters for interface bring-up.
type Config struct {
	// Interface is the name of the network interface to bring up.
	Interface string

	// RetryDelay is the delay before the single retry after a failed
	// bring-up attempt.
	RetryDelay time.Duration
}

// Up brings the configured interface up using the strategy matching the
// given init system.
//
// If the first attempt fails, it waits for [Config.RetryDelay] and retries
// exactly once. Early boot has a known timing race where the interface or
// the network manager is not ready yet when provisioning starts.
func Up(ctx context.Context, system initsys.System, cfg Config) error {
	var bringUp func(context.Context) error

	switch system {
	case initsys.Systemd:
		bringUp = restartNetworkd
	default:
		bringUp = func(_ context.Context) error {
			return linkUp(cfg.Interface)
		}
	}

	err := retryOnce(ctx, cfg.RetryDelay, bringUp)
	if err != nil {
		return fmt.Errorf("bring up %s (%s): %w", cfg.Interface, system, err)
	}

	return nil
}

// retryOnce runs fn and, if it fails, waits for the given delay and runs it
// a second time. The delay honors context cancellation.
func retryOnce(ctx context.Context, delay time.Duration, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}

	slog.Warn("Bring-up attempt failed, retrying once",
		slog.Duration("delay", delay),
		slog.Any("error", err))

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return fmt.Errorf("retry aborted: %w", ctx.Err())
	}

	return fn(ctx)
}

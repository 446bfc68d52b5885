// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

const networkdUnit = "systemd-networkd.service"

// ErrJobFailed is returned if systemd reports an unsuccessful job result.
var ErrJobFailed = errors.New("systemd job failed")

// restartNetworkd restarts systemd-networkd via D-Bus and waits for the job
// result. A restart is used instead of a start so a networkd that came up
// before the interface existed re-evaluates its links.
func restartNetworkd(ctx context.Context) error {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}
	defer conn.Close()

	results := make(chan string, 1)

	_, err = conn.RestartUnitContext(ctx, networkdUnit, "replace", results)
	if err != nil {
		return fmt.Errorf("restart %s: %w", networkdUnit, err)
	}

	select {
	case result := <-results:
		if result != "done" {
			return fmt.Errorf("%w: %s: %s", ErrJobFailed, networkdUnit, result)
		}
	case <-ctx.Done():
		return fmt.Errorf("wait for %s: %w", networkdUnit, ctx.Err())
	}

	return nil
}

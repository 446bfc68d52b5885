// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/baseup/baseup/internal/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGABRT,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	defer cancel()

	rc := cmd.Execute(ctx, os.Args[1:], cmd.IO{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	})

	cancel()
	os.Exit(rc)
}

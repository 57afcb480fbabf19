// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command campuschat is a terminal client for the UIT regulations chatbot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/campuschat/internal/cli"
	"github.com/jeranaias/campuschat/internal/config"
)

func main() {
	log.SetFlags(0)

	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "campuschat: %v\n\n%s", err, cli.Usage())
		os.Exit(2)
	}
	if cmd == cli.CommandHelp {
		fmt.Print(cli.Usage())
		return
	}

	path, err := config.Path()
	if err != nil {
		fmt.Fprintf(os.Stderr, "campuschat: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "campuschat: %v\n", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "campuschat: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "campuschat: %v\n", err)
		os.Exit(1)
	}
}

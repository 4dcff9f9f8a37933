// Package main provides operator tools for the waitlist service:
//
//	tools token -user u1 [-admin] [-email a@x.com] [-name "Alice"]
//	tools seed-stats -user u1 -followers 120 -collabs 4
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lllypuk/waitlist/internal/config"
)

var errUnknownCommand = errors.New("unknown command")

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if runErr := run(context.Background(), cfg, os.Args[1], os.Args[2:], logger); runErr != nil {
		logger.Error("command failed",
			slog.String("command", os.Args[1]),
			slog.String("error", runErr.Error()))
		if errors.Is(runErr, errUnknownCommand) {
			usage()
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string, logger *slog.Logger) error {
	switch command {
	case "token":
		return runToken(cfg, args, os.Stdout)
	case "seed-stats":
		return runSeedStats(ctx, cfg, args, logger)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tools <token|seed-stats> [flags]")
}

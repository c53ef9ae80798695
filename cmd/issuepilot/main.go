// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// issuepilot bridges GitHub issues and the Devin API: it lists issues,
// drives analysis and implementation sessions, posts results back to
// the issues, and relays live session progress to a frontend over
// server-sent events.
//
// Configuration comes from a YAML file (--config or ISSUEPILOT_CONFIG)
// with credentials overridable through GITHUB_TOKEN, GITHUB_REPO, and
// DEVIN_API_KEY. The service starts with either integration
// unconfigured and serves degraded fallback responses for it, so a
// fresh checkout runs before any credentials exist.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/issuepilot/issuepilot/lib/clock"
	"github.com/issuepilot/issuepilot/lib/config"
	"github.com/issuepilot/issuepilot/lib/devin"
	"github.com/issuepilot/issuepilot/lib/github"
	"github.com/issuepilot/issuepilot/lib/process"
	"github.com/issuepilot/issuepilot/lib/service"
	"github.com/issuepilot/issuepilot/lib/store"
	"github.com/issuepilot/issuepilot/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		listen      string
		logLevel    string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("issuepilot", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML configuration file (default: $ISSUEPILOT_CONFIG)")
	flagSet.StringVar(&listen, "listen", "", "HTTP listen address (overrides the configuration file)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		version.Print("issuepilot")
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := &Service{
		config: cfg,
		cache:  store.New(),
		clock:  clock.Real(),
		logger: logger,
	}

	if cfg.GitHub.Token != "" && cfg.GitHub.Repo != "" {
		githubClient, err := github.NewClient(github.Config{
			BaseURL: cfg.GitHub.APIBase,
			Token:   cfg.GitHub.Token,
			Repo:    cfg.GitHub.Repo,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		svc.issues = githubClient
	} else {
		logger.Warn("github integration not configured, issue endpoints disabled")
	}

	if cfg.Devin.APIKey != "" {
		devinClient, err := devin.NewClient(devin.Config{
			BaseURL: cfg.Devin.APIBase,
			APIKey:  cfg.Devin.APIKey,
			Clock:   svc.clock,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		svc.agent = devinClient
	} else {
		logger.Warn("devin integration not configured, analyses will use fallback results")
	}

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Listen,
		Handler: svc.routes(),
		Logger:  logger,
	})

	logger.Info("issuepilot starting",
		"listen", cfg.Listen,
		"repo", cfg.GitHub.Repo,
		"configured", cfg.Complete(),
		"version", version.Info(),
	)
	return server.Serve(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/home"
	"github.com/inkwell-ai/inkwell/internal/logsink"
	"github.com/inkwell-ai/inkwell/internal/pipeline"
	"github.com/inkwell-ai/inkwell/internal/polling"
	"github.com/inkwell-ai/inkwell/internal/prompts"
	"github.com/inkwell-ai/inkwell/internal/providers"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg      *config.Config
	project  *home.Project
	pipeline *pipeline.Pipeline
	logger   *slog.Logger

	runLog *os.File
}

// newApp loads configuration and constructs the pipeline for the project
// named by the global flags. Callers must invoke close when done.
func newApp() (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	manager, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}
	cfg := manager.Get()

	project, err := home.NewProject(projectDir)
	if err != nil {
		return nil, err
	}
	if err := project.EnsureExists(); err != nil {
		return nil, err
	}

	runLog, err := os.OpenFile(project.RunLogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	registry := providers.NewRegistry(cfg.ToRegistryConfig(), logger)
	sink := logsink.NewWriterSink(os.Stdout)
	executor := polling.NewExecutor(registry, polling.Options{
		Mode:    polling.Mode(cfg.Polling.Mode),
		Rounds:  cfg.Polling.Rounds,
		Primary: cfg.Polling.Primary,
		Pool:    cfg.Polling.Pool,
		RunLog:  runLog,
	}, sink, logger)

	resolver := prompts.NewResolver(project.PromptOverridesPath(), logger)
	pipe := pipeline.New(project, resolver, executor, cfg.Generation, sink, logger)

	return &app{
		cfg:      cfg,
		project:  project,
		pipeline: pipe,
		logger:   logger,
		runLog:   runLog,
	}, nil
}

func (a *app) close() {
	if a.runLog != nil {
		a.runLog.Close()
	}
}

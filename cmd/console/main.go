package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/adventure-console/internal/config"
	"github.com/jwebster45206/adventure-console/internal/logger"
	"github.com/jwebster45206/adventure-console/internal/services"
	"github.com/jwebster45206/adventure-console/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", cfg.LogFile, err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()

	log := logger.Setup(cfg, logFile)
	log.Info("Starting adventure console",
		"backend", cfg.Backend,
		"model", cfg.Model,
		"language", cfg.Language)

	llm, err := newLLMService(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM service: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	if err := llm.InitModel(initCtx, cfg.Model); err != nil {
		cancel()
		log.Error("Failed to initialize model", "model", cfg.Model, "error", err)
		fmt.Fprintf(os.Stderr, "Failed to initialize model %s: %v\n", cfg.Model, err)
		os.Exit(1)
	}
	cancel()

	narrator := services.NewNarrator(llm, log,
		services.WithLanguage(cfg.Language),
		services.WithHistoryLimit(cfg.HistoryLimit))

	ctrl := session.New(narrator,
		session.WithLogger(log),
		session.WithJournal(newJournal(ctx, cfg, log)))
	defer func() {
		_ = ctrl.Close() // Flushes queued journal writes
	}()

	p := tea.NewProgram(NewConsoleUI(ctrl, cfg.RequestTimeout),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Error("Console exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Info("Adventure console stopped", "session_id", ctrl.Snapshot().ID)
}

// Command todoboard is a terminal client for a shared todo service.
// It keeps the list, session, and form state in local stores and talks
// to the service's REST API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoboard/internal/api"
	"github.com/nhle/todoboard/internal/credential"
	"github.com/nhle/todoboard/internal/logger"
	"github.com/nhle/todoboard/internal/model"
	"github.com/nhle/todoboard/internal/session"
	"github.com/nhle/todoboard/internal/storage"
	"github.com/nhle/todoboard/internal/theme"
	"github.com/nhle/todoboard/internal/todos"
	"github.com/nhle/todoboard/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todoboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	log, closer := logger.New(logger.Config{
		LogDir:     cfg.Log.Dir,
		LogFile:    cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Level:      logger.ParseLevel(cfg.Log.Level),
	})
	defer closer.Close()
	slog.SetDefault(log)

	kv, err := storage.NewStore(model.DefaultStatePath())
	if err != nil {
		return fmt.Errorf("opening local state: %w", err)
	}
	defer kv.Close()

	ctx := context.Background()

	client := api.NewClient(cfg.API.BaseURL, log)

	sess := session.New(client, credential.SystemVault{}, kv, log)
	sess.Restore(ctx)

	todoStore := todos.New(client, log)
	todoStore.SetPageSize(cfg.API.PageSize)

	themes := theme.NewManager(kv)
	theme.Apply(themes.Current(ctx))

	log.Info("starting",
		slog.String("base_url", cfg.API.BaseURL),
		slog.Bool("session_restored", sess.IsAuthenticated()),
	)

	program := tea.NewProgram(
		ui.New(sess, todoStore, themes, kv, log),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	return nil
}

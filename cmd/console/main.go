package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nekogravitycat/case-admin-backend/internal/console"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := console.LoadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	log := logger.NewLogger("console", cfg.LogLevel)

	backend, err := console.NewHTTPBackend(cfg.Addr, cfg.Timeout, log)
	if err != nil {
		return err
	}

	state := console.NewAppState(cfg.Query())
	notifier := console.NewWriterNotifier(os.Stderr, log)
	grid := console.NewGridController(backend, state, console.DefaultColumns, notifier, console.NewStateNavigator(state, log), log)

	if err := grid.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := grid.Refresh(ctx); err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	switch {
	case cfg.Activate != "":
		err = grid.SetActive(ctx, cfg.Activate, true)
	case cfg.Deactivate != "":
		err = grid.SetActive(ctx, cfg.Deactivate, false)
	case cfg.Delete != "":
		err = grid.Delete(ctx, cfg.Delete)
	case cfg.Open != "":
		return openCase(ctx, grid, state, cfg.Open)
	}
	if err != nil {
		return err
	}

	page, total := grid.Page()
	return console.Render(os.Stdout, console.DefaultColumns, grid.Rows(), page, cfg.PageSize, total)
}

func openCase(ctx context.Context, grid *console.GridController, state *console.AppState, id string) error {
	if err := grid.Open(ctx, id); err != nil {
		return err
	}

	view, payload := state.View()
	c, ok := payload.(console.Case)
	if view != console.ViewApp || !ok {
		fmt.Fprintln(os.Stderr, "user is inactive, nothing to open")
		return nil
	}

	fmt.Printf("case %s (%s)\n", c.ID, c.Status)
	fmt.Printf("  location: %.5f, %.5f %s %s\n", c.Latitude, c.Longitude, c.City, c.Country)
	fmt.Printf("  opened:   %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	if c.Notes != "" {
		fmt.Printf("  notes:    %s\n", c.Notes)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hitblow/internal/history"
	"github.com/robalobadob/hitblow/internal/httpserver"
	"github.com/robalobadob/hitblow/internal/solver"
	"github.com/robalobadob/hitblow/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP solver and web UI",
	RunE:  runServe,
}

// addServeFlags binds server flags on both root and serve.
func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	f.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite file for game history (empty disables)")
	f.StringVar(&cfg.ClientOrigin, "origin", cfg.ClientOrigin, "allowed CORS origin")
	f.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "idle session lifetime")
}

func runServe(cmd *cobra.Command, args []string) error {
	space, sel, err := cfg.Solver()
	if err != nil {
		return err
	}
	if cfg.InsecureSecret() {
		log.Warn().Msg("SESSION_SECRET not set; using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hist *history.Store
	if cfg.DatabasePath != "" {
		db, err := history.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := history.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.DatabasePath, err)
		}
		hist = history.NewStore(db)
		log.Info().Str("path", cfg.DatabasePath).Msg("game history enabled")
	}

	// Warm the shared opening before the first player asks for it.
	start := time.Now()
	opening, err := sel.Opening()
	if err != nil {
		return err
	}
	log.Info().
		Int("length", space.Len()).
		Int("symbols", space.Symbols()).
		Int("codes", space.Size()).
		Str("pool", sel.Pool().String()).
		Str("opening", opening.String()).
		Dur("took", time.Since(start)).
		Msg("solver ready")

	srv := httpserver.New(httpserver.Options{
		Sessions:   store.NewMemoryStore(),
		NewSolver:  func() *solver.Solver { return solver.New(space, sel) },
		History:    hist,
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
		Origin:     cfg.ClientOrigin,
	})
	go srv.SweepSessions(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting hitblow server")
		errc <- srv.Start(":" + cfg.Port)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return nil
	}
}

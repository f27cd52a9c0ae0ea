// BarNest server — Steel Bar Cut List Optimizer
//
// HTTP front end: upload part lists, nest them onto stock bars, and
// download PDF / Excel / label / DXF output.
//
// Build:
//
//	go build -o barnest-server ./cmd/barnest-server
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piwi3910/BarNest/internal/config"
	"github.com/piwi3910/BarNest/internal/project"
	"github.com/piwi3910/BarNest/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("barnest-server: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := cfg.NewLogger()

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting BarNest server")

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Store:    project.NewStore(cfg.DataDir),
		Settings: cfg.Settings(),
		DevMode:  cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("Server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dice_coverage/config"
	"github.com/domino14/dice_coverage/internal/coverageserver"
	"github.com/domino14/dice_coverage/internal/stores"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading-config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if strings.ToLower(cfg.LogLevel) == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	server := &coverageserver.Server{
		Trials:    cfg.Trials,
		Tolerance: cfg.Tolerance,
		Workers:   cfg.Workers,
	}
	if cfg.DBPath != "" {
		h, err := stores.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening-history")
		}
		defer h.Close()
		server.History = h
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: coverageserver.Handler(log.Logger, server),
	}
	idleConnsClosed := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}

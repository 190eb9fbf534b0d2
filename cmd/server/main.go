package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/adapters/fanout"
	router "github.com/love4pets/realtime/internal/adapters/http"
	"github.com/love4pets/realtime/internal/adapters/ws"
	"github.com/love4pets/realtime/internal/app"
	"github.com/love4pets/realtime/internal/config"
	"github.com/love4pets/realtime/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	verifier := app.NewVerifier(cfg.WebhookSecret)
	if !verifier.Enabled() {
		log.Warn().Msg("WEBHOOK_SECRET unset: webhook signature verification is disabled")
	}

	store := storage.Open(ctx, cfg.DBPath)
	defer store.Close()

	registry := app.NewRegistry()
	broadcaster := app.NewBroadcaster(registry)

	fo := fanout.New(ctx, cfg.RedisURL, broadcaster)
	defer fo.Close()
	broadcaster.SetFanout(fo)

	api := &router.API{
		Registry: registry,
		Dispatch: broadcaster,
		Verifier: verifier,
		Store:    store,
	}
	gateway := ws.NewGateway(registry, cfg.ReadLimit, cfg.PingPeriod)
	r := router.SetupRouter(ctx, cfg, api, gateway)

	// The default port is popular in dev setups; walk forward until a
	// free one is found instead of failing on EADDRINUSE.
	var ln net.Listener
	for i := 0; i < cfg.PortRetries; i++ {
		addr := fmt.Sprintf(":%d", cfg.Port+i)
		ln, err = net.Listen("tcp", addr)
		if err == nil {
			break
		}
		log.Warn().Str("addr", addr).Err(err).Msg("port unavailable, trying next")
	}
	if ln == nil {
		log.Fatal().Err(err).Msg("no free port")
	}

	srv := &http.Server{Handler: r}

	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("realtime relay started")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

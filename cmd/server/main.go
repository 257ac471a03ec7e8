package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Office/internal/adapters/http"
	"github.com/dkeye/Office/internal/app"
	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(config.ParseLevel(cfg.LogLevel))

	reg := app.NewRegistry()
	policy := app.PolicyFor(cfg.BackpressurePolicy)
	rooms := app.NewRoomManager(ctx, app.OfficeOptions(cfg, policy, reg))
	rooms.EnsurePublicRoom(domain.RoomID(cfg.PublicRoomID), cfg.PublicRoomName)

	o := &orch.Orchestrator{
		Registry: reg,
		Rooms:    rooms,
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Office server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	rooms.Wait()
	log.Info().Msg("Server exited gracefully")
}

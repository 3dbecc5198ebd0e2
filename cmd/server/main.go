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

	router "github.com/dkeye/Tandem/internal/adapters/http"
	"github.com/dkeye/Tandem/internal/adapters/rtc"
	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
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
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	// Sessions outlive the signal context so the shutdown notice can still
	// be delivered.
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	peerCfg := rtc.Configuration(cfg.ICEServers)
	newMedia := func(uid domain.UserID) (core.MediaConnection, error) {
		pc, err := rtc.NewWebRTCConnection(peerCfg, uid)
		if err != nil {
			return nil, err
		}
		return pc, nil
	}
	relayCfg := app.RelayConfig{
		SpeechCooldown:  cfg.SpeechCooldown,
		VolumeThreshold: cfg.VolumeThreshold,
		MaxSilentFrames: cfg.MaxSilentFrames,
		AudioMode:       app.AudioMode(cfg.AudioMode),
	}
	o := orch.New(appCtx, app.NewConnections(), app.NewRoomManager(), relayCfg, pipeline.Silent{}, newMedia)

	r := router.SetupRouter(appCtx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Tandem server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	o.Shutdown()
	stopApp()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

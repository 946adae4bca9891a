package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/adapters/eleven"
	router "github.com/cometvc/comet/internal/adapters/http"
	"github.com/cometvc/comet/internal/adapters/stt"
	"github.com/cometvc/comet/internal/adapters/translate"
	"github.com/cometvc/comet/internal/app"
	"github.com/cometvc/comet/internal/auth"
	"github.com/cometvc/comet/internal/config"
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
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("COMET_JWT_SECRET is required")
	}

	registry := app.NewRoomRegistry(cfg.RoomPolicy())
	metrics := &app.Metrics{}
	synth := eleven.NewClient(cfg.ElevenBaseURL, cfg.ElevenAPIKey, cfg.AdapterTimeout)
	engine := &app.FanoutEngine{
		Registry:   registry,
		Translator: translate.NewClient(cfg.TranslateURL, cfg.AdapterTimeout),
		Synth:      synth,
		Stt:        stt.NewClient(cfg.SttURL, cfg.AdapterTimeout),
		Policy:     cfg.RoomPolicy(),
		Timeout:    cfg.AdapterTimeout,
		Metrics:    metrics,
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Registry: registry,
		Engine:   engine,
		Verifier: auth.NewVerifier(cfg.JWTSecret),
		Voices:   synth,
		Stt:      engine.Stt,
		Trans:    engine.Translator,
		Synth:    synth,
		Metrics:  metrics,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Comet relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// Package http wires the gin router: websocket endpoints, the REST surface,
// and the operational read-only endpoints.
package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/adapters/ws"
	"github.com/cometvc/comet/internal/app"
	"github.com/cometvc/comet/internal/auth"
	"github.com/cometvc/comet/internal/config"
	"github.com/cometvc/comet/internal/core"
)

// VoiceRegistrar is the pass-through used by the voices/add endpoint.
type VoiceRegistrar interface {
	AddVoice(ctx context.Context, name, filename, contentType string, file io.Reader) ([]byte, error)
}

// Deps collects everything the router hands to handlers.
type Deps struct {
	Registry core.Registry
	Engine   *app.FanoutEngine
	Verifier *auth.Verifier
	Voices   VoiceRegistrar
	Stt      core.Transcriber
	Trans    core.Translator
	Synth    core.Synthesizer
	Metrics  *app.Metrics
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigins))

	session := &ws.SessionHandler{
		Registry:  deps.Registry,
		Engine:    deps.Engine,
		Verifier:  deps.Verifier,
		ReadLimit: cfg.ReadLimit,
	}

	r.GET("/ws/chat/:room/:model/:user/:username", func(c *gin.Context) {
		session.HandleChat(ctx, c)
	})
	r.GET("/ws/audio/:room/:model/:user/:username", func(c *gin.Context) {
		session.HandleAudio(ctx, c)
	})

	rest := &RestHandlers{
		Voices:  deps.Voices,
		Stt:     deps.Stt,
		Trans:   deps.Trans,
		Synth:   deps.Synth,
		Timeout: cfg.AdapterTimeout,
	}

	v1 := r.Group("/v1", authMiddleware(deps.Verifier))
	v1.POST("/voices/add", rest.AddVoice)
	v1.POST("/audio/translate", rest.AudioTranslate)

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Registry.List())
	})
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Metrics.Snapshot())
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

package http

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/core"
)

// defaultVoice is the TTS voice used when no participant model applies,
// e.g. the one-shot audio translate endpoint.
const defaultVoice = "default"

type RestHandlers struct {
	Voices  VoiceRegistrar
	Stt     core.Transcriber
	Trans   core.Translator
	Synth   core.Synthesizer
	Timeout time.Duration
}

// AddVoice registers a new voice profile from an uploaded sample. The request
// and response are passed through to the synthesis provider untouched.
func (h *RestHandlers) AddVoice(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	fileHdr, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	f, err := fileHdr.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()
	raw, err := h.Voices.AddVoice(ctx, name, fileHdr.Filename, fileHdr.Header.Get("Content-Type"), f)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("voice add failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "voice provider error"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// AudioTranslate is the one-shot, stateless pipeline: WAV in, transcript +
// translation + synthesized audio out. No room involved.
func (h *RestHandlers) AudioTranslate(c *gin.Context) {
	target := c.PostForm("target_language")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing target_language"})
		return
	}
	fileHdr, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio"})
		return
	}
	f, err := fileHdr.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio"})
		return
	}
	wav, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*h.Timeout)
	defer cancel()

	transcript, err := h.Stt.Transcribe(ctx, wav)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("transcription failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription service error"})
		return
	}
	if transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not transcribe the audio"})
		return
	}

	translated, err := h.Trans.Translate(ctx, transcript, target)
	if err != nil {
		// Same fallback policy as the relay path.
		log.Warn().Err(err).Str("module", "adapters.http").Str("lang", target).Msg("translation failed, using transcript")
		translated = transcript
	}

	audio, err := h.Synth.Synthesize(ctx, defaultVoice, translated, target)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("synthesis failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "synthesis service error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_text":   transcript,
		"translated_text": translated,
		"audio":           base64.StdEncoding.EncodeToString(audio),
	})
}

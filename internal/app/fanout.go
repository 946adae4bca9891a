package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/core"
	"github.com/cometvc/comet/internal/domain"
)

// ErrTranscription means the transcription service itself was unreachable.
// It fails the one utterance, not the connection.
var ErrTranscription = errors.New("transcription failed")

// FanoutEngine turns one inbound utterance into one tailored payload per
// recipient: translation into the recipient's language, synthesis in the
// sender's voice, delivery through the recipient's own connection.
//
// Recipients are processed concurrently and independently; no recipient's
// failure aborts the others. The engine works on a membership snapshot and
// holds no room lock across adapter calls.
type FanoutEngine struct {
	Registry   core.Registry
	Translator core.Translator
	Synth      core.Synthesizer
	Stt        core.Transcriber
	Policy     domain.RoomPolicy
	// Timeout bounds every single adapter call.
	Timeout time.Duration
	Metrics *Metrics
}

// Relay processes one utterance from sender and blocks until every
// recipient's delivery attempt has finished, so a sender's utterances leave
// in arrival order.
func (e *FanoutEngine) Relay(ctx context.Context, sender core.Member, utt domain.Utterance) error {
	e.Metrics.Utterances.Add(1)

	text := utt.Text
	if utt.Kind == domain.AudioUtterance {
		// Transcription is sender-side: done once, shared by all recipients.
		// An empty transcript is a valid result and fans out as-is.
		tctx, cancel := context.WithTimeout(ctx, e.Timeout)
		transcript, err := e.Stt.Transcribe(tctx, utt.Audio)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTranscription, err)
		}
		text = transcript
	}

	// Clients may omit their language on connect; detect it from the text so
	// same-language recipients are not pushed through the translator.
	senderLang := sender.Meta.Language
	if senderLang == "" && text != "" {
		if info := whatlanggo.Detect(text); info.IsReliable() {
			senderLang = info.Lang.Iso6391()
		}
	}

	snapshot := e.Registry.Snapshot(sender.Meta.Room)
	roomLang := ""
	if e.Policy.LanguageMode == domain.RoomShared {
		roomLang = e.Registry.RoomLanguage(sender.Meta.Room)
	}

	var wg sync.WaitGroup
	for _, rcpt := range snapshot {
		if rcpt.SID == sender.SID && !e.Policy.Echo {
			continue
		}
		wg.Add(1)
		go func(rcpt core.Member) {
			defer wg.Done()
			e.deliver(ctx, sender, rcpt, text, senderLang, roomLang)
		}(rcpt)
	}
	wg.Wait()
	return nil
}

// deliver computes and sends one recipient's payload.
func (e *FanoutEngine) deliver(ctx context.Context, sender, rcpt core.Member, text, senderLang, roomLang string) {
	target := rcpt.Meta.Language
	if e.Policy.LanguageMode == domain.RoomShared {
		target = roomLang
	}

	out := text
	if target != "" && target != senderLang {
		tctx, cancel := context.WithTimeout(ctx, e.Timeout)
		translated, err := e.Translator.Translate(tctx, text, target)
		cancel()
		if err != nil {
			// Fallback to the untranslated text; invisible to the user
			// but counted for operators.
			e.Metrics.TranslationFallbacks.Add(1)
			log.Warn().Err(err).Str("module", "app.fanout").Str("lang", target).Str("user", string(rcpt.Meta.UserID)).Msg("translation failed, sending original text")
		} else {
			out = translated
		}
	}

	audio := ""
	sctx, cancel := context.WithTimeout(ctx, e.Timeout)
	raw, err := e.Synth.Synthesize(sctx, string(sender.Meta.Model), out, target)
	cancel()
	if err != nil {
		// The recipient still gets the text, just without audio.
		e.Metrics.SynthesisFailures.Add(1)
		log.Warn().Err(err).Str("module", "app.fanout").Str("voice", string(sender.Meta.Model)).Str("user", string(rcpt.Meta.UserID)).Msg("synthesis failed, sending text only")
	} else {
		audio = base64.StdEncoding.EncodeToString(raw)
	}

	payload := domain.Payload{
		ModelID:  sender.Meta.Model,
		UserID:   sender.Meta.UserID,
		Username: sender.Meta.Username,
		Text:     out,
		Audio:    audio,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Msg("payload marshal")
		return
	}
	if err := rcpt.Conn.TrySend(b); err != nil {
		// Recipient is gone or slow; treated like a leave the registry has
		// not processed yet.
		e.Metrics.DroppedDeliveries.Add(1)
		log.Debug().Err(err).Str("module", "app.fanout").Str("user", string(rcpt.Meta.UserID)).Msg("delivery dropped")
	}
}

// Depart broadcasts a departure notice to every remaining member of the
// leaver's room. Best-effort: one failed delivery never blocks the rest,
// and no synthesis is involved.
func (e *FanoutEngine) Depart(leaver core.Member) {
	notice := domain.DepartureNotice(leaver.Meta)
	b, err := json.Marshal(notice)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Msg("departure marshal")
		return
	}
	for _, m := range e.Registry.Snapshot(leaver.Meta.Room) {
		if m.SID == leaver.SID {
			continue
		}
		if err := m.Conn.TrySend(b); err != nil {
			e.Metrics.DroppedDeliveries.Add(1)
			log.Debug().Err(err).Str("module", "app.fanout").Str("user", string(m.Meta.UserID)).Msg("departure delivery dropped")
		}
	}
}

package core

import "context"

// Translator converts text into a target language. A failed call must be
// treated by callers as "no translation available", never as a hard error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Synthesizer converts text into audio bytes spoken with the given voice.
// Concrete implementation wraps the TTS provider.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text, languageHint string) ([]byte, error)
}

// Transcriber converts raw audio into text. Unintelligible audio yields an
// empty string and a nil error; only an unreachable service is an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

package domain

import "fmt"

// UtteranceKind discriminates inbound content.
type UtteranceKind int

const (
	TextUtterance UtteranceKind = iota
	AudioUtterance
)

// Utterance is one unit of inbound content, ephemeral for the duration of a
// single fan-out.
type Utterance struct {
	Kind  UtteranceKind
	Text  string
	Audio []byte
}

// Payload is the outbound wire shape delivered to one recipient.
// Audio is base64-encoded synthesized audio, empty string when no audio
// applies (e.g. departure notices).
type Payload struct {
	ModelID  ModelID `json:"model_id"`
	UserID   UserID  `json:"user_id"`
	Username string  `json:"username"`
	Text     string  `json:"text"`
	Audio    string  `json:"audio"`
}

// DepartureNotice builds the payload broadcast to remaining members when a
// participant disconnects.
func DepartureNotice(p *Participant) Payload {
	return Payload{
		ModelID:  p.Model,
		UserID:   p.UserID,
		Username: p.Username,
		Text:     fmt.Sprintf("%s has disconnected from room %s.", p.Username, p.Room),
		Audio:    "",
	}
}

// Package ws drives one session per websocket connection: authenticate, join
// the room, relay utterances in arrival order, and clean up on disconnect.
package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cometvc/comet/internal/app"
	"github.com/cometvc/comet/internal/auth"
	"github.com/cometvc/comet/internal/core"
	"github.com/cometvc/comet/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type SessionHandler struct {
	Registry  core.Registry
	Engine    *app.FanoutEngine
	Verifier  *auth.Verifier
	ReadLimit int64
}

// HandleChat serves /ws/chat/...: inbound frames are UTF-8 text utterances.
func (h *SessionHandler) HandleChat(ctx context.Context, c *gin.Context) {
	h.handle(ctx, c, domain.TextUtterance)
}

// HandleAudio serves /ws/audio/...: inbound frames are raw audio, transcribed
// before fan-out.
func (h *SessionHandler) HandleAudio(ctx context.Context, c *gin.Context) {
	h.handle(ctx, c, domain.AudioUtterance)
}

// bearerToken pulls the JWT from the Authorization header or, for browser
// clients that cannot set websocket headers, the token query parameter.
func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	return strings.TrimPrefix(token, "Bearer ")
}

func (h *SessionHandler) handle(ctx context.Context, c *gin.Context, kind domain.UtteranceKind) {
	participant, err := domain.NewParticipant(
		domain.RoomKey(c.Param("room")),
		domain.UserID(c.Param("user")),
		c.Param("username"),
		domain.ModelID(c.Param("model")),
		c.Query("language"),
	)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	token := bearerToken(c.Request)

	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}
	if h.ReadLimit > 0 {
		wsc.SetReadLimit(h.ReadLimit)
	}
	conn := newConn(wsc)

	// No room mutation happens before the credential is verified.
	if _, err := h.Verifier.Verify(token); err != nil {
		log.Warn().Str("module", "ws").Str("user", string(participant.UserID)).Msg("rejected: invalid token")
		conn.CloseWithCode(core.CloseUnauthorized, "unauthorized")
		return
	}

	sid := core.SessionID(uuid.NewString())
	member := core.Member{SID: sid, Meta: participant, Conn: conn}

	if h.Registry.Join(participant.Room, member) == core.Rejected {
		conn.CloseWithCode(core.CloseRoomFull, "room full")
		return
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("room", string(participant.Room)).Str("user", string(participant.UserID)).Msg("session active")

	ctx, cancel := context.WithCancel(ctx)
	go conn.writePump(ctx)

	defer func() {
		// Teardown order matters: cancel in-flight fan-out, make the leave
		// visible, then notify whoever is left.
		cancel()
		h.Registry.Leave(participant.Room, sid)
		h.Engine.Depart(member)
		conn.Close()
		log.Info().Str("module", "ws").Str("sid", string(sid)).Str("room", string(participant.Room)).Msg("session closed")
	}()

	// One utterance at a time: a sender's messages fan out strictly in
	// arrival order.
	for {
		_, data, err := wsc.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("read error")
			}
			return
		}

		utt := domain.Utterance{Kind: kind}
		if kind == domain.AudioUtterance {
			utt.Audio = data
		} else {
			utt.Text = string(data)
		}

		if err := h.Engine.Relay(ctx, member, utt); err != nil {
			// Transcription outage kills the utterance, not the session.
			log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("utterance dropped")
		}
	}
}

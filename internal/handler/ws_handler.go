package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	ws "github.com/edusync/edusync-portal/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz attempt over WebSocket.
type WSHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:id/stream?token=
// Accepts answer, submit and ping actions for one attempt.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	attemptID := c.Param("id")

	// Ownership and existence are checked before the upgrade so they surface
	// as plain HTTP errors.
	if _, err := h.attempts.Get(c.Request.Context(), sc, attemptID); err != nil {
		fail(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	u, _ := sc.Current()
	wsLog := h.log.With().
		Str("user_id", u.UserID).
		Str("attempt_id", attemptID).
		Logger()

	wsLog.Info().Msg("Learner connected")
	ctx := c.Request.Context()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var werr error
		switch msg.Action {
		case ws.ActionAnswer:
			werr = h.handleAnswer(ctx, conn, sc, attemptID, &msg)
		case ws.ActionSubmit:
			werr = h.handleSubmit(ctx, conn, wsLog, sc, attemptID)
		case ws.ActionPing:
			werr = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			werr = ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
		if werr != nil {
			wsLog.Warn().Err(werr).Msg("Write failed")
			break
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, sc *session.Context, attemptID string, msg *ws.RequestPayload) error {
	if msg.QuestionKey == "" || msg.Value == "" {
		return ws.WriteError(conn, string(response.ErrInvalidPayload), "question_key and value are required")
	}
	v, err := h.attempts.Answer(ctx, sc, attemptID, msg.QuestionKey, msg.Value)
	if err != nil {
		return h.writeFailure(conn, err)
	}
	return ws.WriteTyped(conn, ws.AttemptResponse{Event: ws.EventAnswered, Attempt: v})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sc *session.Context, attemptID string) error {
	v, err := h.attempts.Submit(ctx, sc, attemptID)
	if err != nil {
		if v != nil {
			wsLog.Warn().Err(err).Msg("Submission failed; attempt reopened")
			return ws.WriteTyped(conn, ws.AttemptResponse{Event: ws.EventSubmitFailed, Attempt: v, Error: v.Error})
		}
		return h.writeFailure(conn, err)
	}
	wsLog.Info().Int("score", *v.Score).Int("max_score", v.MaxScore).Msg("Attempt submitted")
	return ws.WriteTyped(conn, ws.AttemptResponse{Event: ws.EventSubmitted, Attempt: v})
}

// writeFailure reports err on the socket using the REST error codes.
func (h *WSHandler) writeFailure(conn *websocket.Conn, err error) error {
	f, ok := classify(err)
	if !ok {
		h.log.Error().Err(err).Msg("Unhandled stream error")
		return ws.WriteError(conn, string(response.ErrInternal), response.GetMessage(response.ErrInternal))
	}
	msg := f.message
	if msg == "" {
		msg = response.GetMessage(f.code)
	}
	return ws.WriteError(conn, string(f.code), msg)
}

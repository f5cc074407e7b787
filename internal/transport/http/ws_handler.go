package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"triage-service/internal/app"
	"triage-service/internal/domain"
)

// WSHandler runs one interactive triage session per websocket connection.
type WSHandler struct {
	service  *app.TriageService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.TriageService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string          `json:"questionId"`
	Response   domain.Response `json:"response"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and walks the client through a session:
// "question" messages until the session completes, then a "result" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	specialty := r.URL.Query().Get("specialty")
	if specialty == "" {
		writeError(w, http.StatusBadRequest, "missing specialty")
		return
	}

	// fail before the upgrade so clients get a proper status code
	start, err := h.service.StartSession(r.Context(), specialty)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		_ = h.service.Abandon(context.Background(), start.Session.ID)
		return
	}
	defer conn.Close()

	sessionID := start.Session.ID
	sessionLog := h.logger.With(zap.String("session", sessionID), zap.String("specialty", specialty))
	// websocket sessions live only as long as their connection
	defer func() {
		if err := h.service.Abandon(context.Background(), sessionID); err != nil {
			sessionLog.Debug("abandon session", zap.Error(err))
		}
	}()

	if h.sendView(conn, start) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			sessionLog.Debug("ws read ended", zap.Error(err))
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.send(conn, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			v, err := h.service.Answer(r.Context(), sessionID, payload.QuestionID, payload.Response)
			if err != nil {
				h.send(conn, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if h.sendView(conn, v) {
				return
			}
		default:
			h.send(conn, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

// sendView writes the next question, or the result when the session is
// complete. It reports whether the session is complete.
func (h *WSHandler) sendView(conn *websocket.Conn, v app.SessionView) bool {
	if v.Session.Completed() {
		h.send(conn, outboundMessage[any]{Type: "result", Payload: v.Session.Result})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "triage completed"))
		return true
	}
	h.send(conn, outboundMessage[any]{Type: "question", Payload: v})
	return false
}

func (h *WSHandler) send(conn *websocket.Conn, msg outboundMessage[any]) {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("ws write error", zap.Error(err))
	}
}

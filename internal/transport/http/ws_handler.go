package http

import (
	"encoding/json"
	"net/http"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/app"
	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/domain"
	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.RoomService
	log      *logging.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, log *logging.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type joinPayload struct {
	QuizID   string `json:"quizId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type startPayload struct {
	QuizID   string `json:"quizId"`
	Mode     string `json:"mode"`
	AutoTime int    `json:"autoTime"`
}

type nextPayload struct {
	QuizID string `json:"quizId"`
}

type answerPayload struct {
	QuizID        string `json:"quizId"`
	UserID        string `json:"userId"`
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and wires it into a live room. The first
// message must be joinRoom; every later command targets the joined room with
// the identity bound at join time. Stale or out-of-order commands are dropped
// server-side, so the only error frames a correct client can receive are for
// malformed payloads.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()

	var first inboundMessage
	if err := conn.ReadJSON(&first); err != nil {
		return
	}
	if first.Type != "joinRoom" {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "joinRoom must be the first message"}})
		return
	}
	var join joinPayload
	if err := json.Unmarshal(first.Payload, &join); err != nil || join.QuizID == "" || join.UserID == "" || join.Username == "" {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid joinRoom payload"}})
		return
	}

	if _, err := h.service.Join(r.Context(), join.QuizID, join.UserID, join.Username, connID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), join.QuizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), connID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent
	// writes, so snapshot fan-out and private acks funnel through send.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "roomStateUpdate", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "startQuiz":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid startQuiz payload"}}
				continue
			}
			mode, err := domain.ParseMode(payload.Mode)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid startQuiz payload"}}
				continue
			}
			// Non-host or wrong-state starts are dropped inside the service.
			_ = h.service.StartQuiz(r.Context(), payload.QuizID, join.UserID, mode, payload.AutoTime)
		case "nextQuestion":
			var payload nextPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid nextQuestion payload"}}
				continue
			}
			h.service.NextQuestion(r.Context(), payload.QuizID, join.UserID)
		case "submitAnswer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submitAnswer payload"}}
				continue
			}
			ack, accepted := h.service.SubmitAnswer(r.Context(), payload.QuizID, join.UserID, payload.QuestionIndex, payload.Answer)
			if accepted {
				send <- outboundMessage[any]{Type: "answerAcknowledgement", Payload: ack}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

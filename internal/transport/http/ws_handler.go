package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
)

// WSHandler carries the session protocol over one websocket per participant:
// inbound RPC-style messages invoke controller actions, outbound messages are
// either direct replies (ok/error) or push events fanned out to the session.
type WSHandler struct {
	service  *game.GameService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *game.GameService, log zerolog.Logger) *WSHandler {
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
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type codePayload struct {
	Code string `json:"code"`
}

type answerPayload struct {
	Code   string `json:"code"`
	Option int    `json:"option"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the connection's read loop. The user
// identity, when present, is supplied by the upstream gateway as a query
// parameter; anonymous guests simply omit it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()

	send := make(chan game.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("conn", connID).Msg("ws write error")
				return
			}
		}
	}()

	var (
		cancelSub func()
		pumps     sync.WaitGroup
	)
	defer func() {
		h.service.Disconnect(connID)
		if cancelSub != nil {
			cancelSub()
		}
		close(closeSignals)
		pumps.Wait()
		close(send)
		<-writerDone
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "joinHost":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				deliver(send, writerDone, errorEvent("validation", "invalid join payload"))
				continue
			}
			cancelSub = h.join(send, closeSignals, writerDone, &pumps, cancelSub, payload.Code, func() error {
				return h.service.JoinAsHost(payload.Code, connID, userID)
			})
		case "joinPlayer":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				deliver(send, writerDone, errorEvent("validation", "invalid join payload"))
				continue
			}
			cancelSub = h.join(send, closeSignals, writerDone, &pumps, cancelSub, payload.Code, func() error {
				return h.service.JoinAsPlayer(payload.Code, connID, userID, payload.Name)
			})
		case "start":
			h.reply(send, writerDone, decodeCode(inbound.Payload, func(code string) error {
				return h.service.StartGame(code, connID)
			}))
		case "skip":
			h.reply(send, writerDone, decodeCode(inbound.Payload, func(code string) error {
				return h.service.SkipQuestion(code, connID)
			}))
		case "next":
			h.reply(send, writerDone, decodeCode(inbound.Payload, func(code string) error {
				return h.service.NextQuestion(code, connID)
			}))
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				continue
			}
			// Invalid submissions are silent no-ops by contract.
			h.service.SubmitAnswer(payload.Code, connID, payload.Option)
		default:
			deliver(send, writerDone, errorEvent("validation", "unsupported message type"))
		}
	}
}

// join subscribes to the session's push events before invoking the join
// action, so the caller sees its own roster broadcast. On failure the fresh
// subscription is rolled back.
func (h *WSHandler) join(send chan game.Event, closeSignals, writerDone chan struct{}, pumps *sync.WaitGroup, prevCancel func(), code string, action func() error) func() {
	updates, cancel, err := h.service.Subscribe(code)
	if err != nil {
		h.reply(send, writerDone, err)
		return prevCancel
	}
	if err := action(); err != nil {
		cancel()
		h.reply(send, writerDone, err)
		return prevCancel
	}
	if prevCancel != nil {
		prevCancel()
	}

	pumps.Add(1)
	go func() {
		defer pumps.Done()
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- update:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()
	return cancel
}

func (h *WSHandler) reply(send chan game.Event, writerDone <-chan struct{}, err error) {
	if err == nil {
		return
	}
	deliver(send, writerDone, errorEvent(errorKind(err), err.Error()))
}

// deliver queues an outbound message unless the writer has already exited, so
// a peer that stops reading can never wedge the read loop on a full buffer.
func deliver(send chan<- game.Event, writerDone <-chan struct{}, ev game.Event) {
	select {
	case send <- ev:
	case <-writerDone:
	}
}

func decodeCode(raw json.RawMessage, action func(code string) error) error {
	var payload codePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.ErrSessionNotFound
	}
	return action(payload.Code)
}

func errorEvent(kind, message string) game.Event {
	return game.Event{Type: "error", Payload: errorPayload{Kind: kind, Message: message}}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuizNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotHost), errors.Is(err, domain.ErrNotQuizOwner):
		return "forbidden"
	case errors.Is(err, domain.ErrAlreadyStarted):
		return "conflict"
	case errors.Is(err, domain.ErrNoQuestions):
		return "validation"
	default:
		return "internal"
	}
}

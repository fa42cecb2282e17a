package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"interview-session-service/internal/app"
	"interview-session-service/internal/domain"
)

// Inbound message types.
const (
	msgIdentity            = "identity"
	msgStart               = "start"
	msgResumeUpload        = "resume_upload"
	msgDraft               = "draft"
	msgSubmit              = "submit"
	msgTick                = "tick"
	msgPause               = "pause"
	msgResume              = "resume"
	msgDismissResumePrompt = "dismiss_resume_prompt"
)

type WSHandler struct {
	service  *app.InterviewService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.InterviewService, logger *zap.Logger) *WSHandler {
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
	Answer string `json:"answer"`
}

// Data is base64 in JSON.
type resumePayload struct {
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// ServeWS upgrades the request and turns the connection into a command
// channel for the interview. Connecting attaches the presentation (raising
// the resume prompt if needed); disconnecting pauses a running interview.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Commands outlive the request context; a disconnect must not cancel a
	// scorer call halfway through.
	ctx := context.WithoutCancel(r.Context())

	h.service.Attach(ctx)
	updates, cancel := h.service.Subscribe()
	defer cancel()
	defer h.service.Detach(ctx)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
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
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
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
		if err := h.dispatch(ctx, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: toErrorPayload(err)}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch runs one command. Successful commands reach the client through
// the snapshot subscription.
func (h *WSHandler) dispatch(ctx context.Context, msg inboundMessage) error {
	switch msg.Type {
	case msgIdentity, msgStart:
		var identity domain.Identity
		if err := decodePayload(msg.Payload, &identity); err != nil {
			return err
		}
		if msg.Type == msgIdentity {
			_, _, err := h.service.CollectIdentity(ctx, identity)
			return err
		}
		_, err := h.service.StartSession(ctx, identity)
		return err
	case msgResumeUpload:
		var payload resumePayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		_, _, err := h.service.StartFromResume(ctx, payload.Data, payload.MediaType)
		return err
	case msgDraft, msgSubmit:
		var payload answerPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		if msg.Type == msgDraft {
			_, err := h.service.StageAnswer(ctx, payload.Answer)
			return err
		}
		_, err := h.service.SubmitAnswer(ctx, payload.Answer)
		return err
	case msgTick:
		_, err := h.service.Tick(ctx)
		return err
	case msgPause:
		_, err := h.service.Pause(ctx)
		return err
	case msgResume:
		_, err := h.service.Resume(ctx)
		return err
	case msgDismissResumePrompt:
		_, err := h.service.DismissResumePrompt(ctx)
		return err
	default:
		return errors.New("unsupported message type")
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}

func toErrorPayload(err error) errorPayload {
	payload := errorPayload{Message: err.Error()}
	var incomplete *domain.IncompleteIdentityError
	if errors.As(err, &incomplete) {
		payload.MissingFields = incomplete.Missing
	}
	return payload
}

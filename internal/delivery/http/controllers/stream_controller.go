package controllers

import (
	"log/slog"
	"net/http"

	"eventmanager/internal/domain"

	"golang.org/x/net/websocket"
)

// streamBuffer is the number of changes queued per connection before new ones are dropped.
const streamBuffer = 64

// StreamController pushes participant changes of one event over a websocket.
type StreamController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewStreamController(logger *slog.Logger, svc domain.ParticipantService) *StreamController {
	return &StreamController{
		Logger:  logger,
		Service: svc,
	}
}

// Stream godoc
// @Summary Participant change stream
// @Description Websocket. Each message is a JSON participant change {type, event_id, participant} with type INSERT, UPDATE or DELETE. The bearer token may be passed as the access_token query parameter.
// @Tags participants
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants/stream [get]
func (c *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")

	changes := make(chan domain.ParticipantChange, streamBuffer)
	unsubscribe, err := c.Service.Subscribe(r.Context(), caller, eventID, func(change domain.ParticipantChange) {
		select {
		case changes <- change:
		default:
			c.Logger.Warn("participant stream lagging, change dropped", "event_id", eventID, "type", change.Type)
		}
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	defer unsubscribe()

	websocket.Handler(func(conn *websocket.Conn) {
		c.serve(conn, eventID, changes)
	}).ServeHTTP(w, r)
}

// serve writes changes until the client goes away. Incoming frames are read and
// discarded only to notice the close.
func (c *StreamController) serve(conn *websocket.Conn, eventID string, changes <-chan domain.ParticipantChange) {
	defer func() {
		_ = conn.Close()
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard []byte
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case change := <-changes:
			if err := websocket.JSON.Send(conn, change); err != nil {
				c.Logger.Debug("participant stream closed", "event_id", eventID, "err", err)
				return
			}
		}
	}
}

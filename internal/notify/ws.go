package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 16
)

var connSeq atomic.Uint64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cross-origin is handled by token auth, not the Origin header
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReadAuthorizer gates channel joins; implemented by the note service.
type ReadAuthorizer interface {
	CanReadNote(ctx context.Context, noteID uint64, userID uint64) (bool, error)
}

// WriteAuthorizer gates client-originated update broadcasts.
type WriteAuthorizer interface {
	CanWriteNote(ctx context.Context, noteID uint64, userID uint64) (bool, error)
}

// WSHandler upgrades authenticated requests and speaks the
// join-note / leave-note / note-update protocol.
type WSHandler struct {
	hub      *Hub
	notifier Notifier
	reader   ReadAuthorizer
	writer   WriteAuthorizer
}

func NewWSHandler(hub *Hub, notifier Notifier, reader ReadAuthorizer, writer WriteAuthorizer) *WSHandler {
	return &WSHandler{hub: hub, notifier: notifier, reader: reader, writer: writer}
}

// Serve handles GET /ws. Must run behind the auth middleware.
func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.GetUint64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{
		id:     fmt.Sprintf("ws-%d-%d", userID, connSeq.Add(1)),
		userID: userID,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		hub:    h.hub,
	}

	h.hub.Register(userID, client)

	go client.writePump()
	client.readPump(h)
}

// wsClient is one websocket connection; it implements Subscriber.
type wsClient struct {
	id     string
	userID uint64
	conn   *websocket.Conn
	send   chan Message
	hub    *Hub
}

func (c *wsClient) ID() string { return c.id }

// Send queues the message, dropping it when the client lags.
func (c *wsClient) Send(msg Message) {
	select {
	case c.send <- msg:
	default:
		log.Debug().Str("client", c.id).Msg("slow websocket client, dropping message")
	}
}

type inboundFrame struct {
	Type   string          `json:"type"`
	NoteID uint64          `json:"note_id"`
	Event  json.RawMessage `json:"event"`
}

func (h *WSHandler) handleFrame(c *wsClient, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch frame.Type {
	case MsgJoinNote:
		ok, err := h.reader.CanReadNote(ctx, frame.NoteID, c.userID)
		if err != nil || !ok {
			log.Info().Uint64("note_id", frame.NoteID).Uint64("user_id", c.userID).
				Msg("websocket join refused")
			return
		}
		h.notifier.Subscribe(frame.NoteID, c)

	case MsgLeaveNote:
		h.notifier.Unsubscribe(frame.NoteID, c)

	case MsgNoteUpdate:
		// ephemeral relay of in-progress edits between editors; the
		// authoritative save still goes through the HTTP endpoint
		ok, err := h.writer.CanWriteNote(ctx, frame.NoteID, c.userID)
		if err != nil || !ok {
			return
		}

		var event NoteEvent
		if err := json.Unmarshal(frame.Event, &event); err != nil {
			return
		}
		event.NoteID = frame.NoteID
		event.UpdatedBy = c.userID
		h.notifier.Publish(frame.NoteID, event, c.id)
	}
}

func (c *wsClient) readPump(h *WSHandler) {
	defer func() {
		c.hub.Drop(c.userID, c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client", c.id).Msg("websocket closed")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		h.handleFrame(c, frame)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

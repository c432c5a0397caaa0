package relay

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sprint-lab/scrumdesk/pkg/logutils"
)

const (
	// WriteTimeout specifies the maximum duration for completing a write operation.
	WriteTimeout = 10 * time.Second
	// sendQueueSize bounds the per-connection outbound buffer.
	sendQueueSize = 64
)

// Event names understood by the relay. Inbound taskUpdated events are
// rebroadcast to the room as taskUpdate, mirroring what clients emit and
// listen for.
const (
	EventJoinProject  = "joinProject"
	EventLeaveProject = "leaveProject"
	EventTaskUpdated  = "taskUpdated"
	EventTaskUpdate   = "taskUpdate"
)

// Message is the relay wire format. Payload is opaque to the server and is
// forwarded verbatim.
type Message struct {
	Event     string          `json:"event"`
	ProjectID uint            `json:"projectId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Client is one websocket connection. It owns its room memberships; they are
// released when the connection closes.
type Client struct {
	ID     string
	UserID uint

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
	}
}

func (c *Client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		logutils.Log.Warnf("relay client %s send queue full, dropping event", c.ID)
	}
}

// Next returns the next queued outbound frame. Used by tests; the write pump
// consumes the same channel.
func (c *Client) Next() <-chan []byte {
	return c.send
}

// Serve runs the read loop until the connection closes, dispatching inbound
// events against the hub. It starts the write pump and tears everything down
// on exit.
func (c *Client) Serve() {
	go c.writePump()
	defer func() {
		c.hub.Drop(c)
		close(c.send)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logutils.Log.Warnf("relay client %s read error: %v", c.ID, err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logutils.Log.Debugf("relay client %s sent malformed event: %v", c.ID, err)
		return
	}

	switch msg.Event {
	case EventJoinProject:
		c.hub.Join(RoomName(msg.ProjectID), c)
	case EventLeaveProject:
		c.hub.Leave(RoomName(msg.ProjectID), c)
	case EventTaskUpdated:
		out, err := json.Marshal(Message{
			Event:     EventTaskUpdate,
			ProjectID: msg.ProjectID,
			Payload:   msg.Payload,
		})
		if err != nil {
			return
		}
		c.hub.Broadcast(RoomName(msg.ProjectID), c, out)
	default:
		logutils.Log.Debugf("relay client %s sent unknown event %q", c.ID, msg.Event)
	}
}

func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

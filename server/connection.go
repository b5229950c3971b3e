package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Enable per-message deflate compression (RFC 7692)
	EnableCompression: true,
}

// Conn is one websocket client attached to a room. It may watch without
// joining; once joined, its input messages steer agentID.
type Conn struct {
	ws      *websocket.Conn
	room    *Room
	log     *log.Logger
	mu      sync.Mutex // protects ws writes, agentID and closed
	agentID string
	closed  bool
	done    chan struct{}
}

func NewConn(ws *websocket.Conn, room *Room, logger *log.Logger) *Conn {
	return &Conn{
		ws:   ws,
		room: room,
		log:  logger,
		done: make(chan struct{}),
	}
}

// Send serializes msg to JSON and writes it to the WebSocket
func (c *Conn) Send(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close marks connection closed
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.ws.Close()
}

func (c *Conn) AgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID
}

func (c *Conn) setAgentID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agentID = id
}

// PushLoop streams room snapshots every interval until the connection
// closes.
func (c *Conn) PushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			msg := StateMsg{Type: MsgState, Snapshot: c.room.Snapshot()}
			if err := c.Send(msg); err != nil {
				c.log.Warn("send error", "room", c.room.Code, "err", err)
				c.Close()
				return
			}
		}
	}
}

// ReadLoop handles incoming messages until the client disconnects.
// The agent is left in the room; the inactivity timeout reaps it.
func (c *Conn) ReadLoop() {
	defer c.Close()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("ws read error", "room", c.room.Code, "err", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug("bad message", "room", c.room.Code, "err", err)
			continue
		}

		switch msg.Type {
		case MsgJoin:
			id := msg.ID
			if id == "" {
				id = c.AgentID()
			}
			res, err := c.room.Join(msg.Name, id)
			if err != nil {
				_ = c.Send(ErrorMsg{Type: MsgError, Message: err.Error()})
				continue
			}
			c.setAgentID(res.ID)
			_ = c.Send(WelcomeMsg{
				Type:      MsgWelcome,
				ID:        res.ID,
				Name:      res.Name,
				Color:     res.Color,
				WorldSize: res.WorldSize,
			})

		case MsgInput:
			if id := c.AgentID(); id != "" {
				c.room.SubmitInput(id, msg.X, msg.Y, msg.Boost == 1, msg.Split == 1)
			}
		}
	}
}

// sendErrorAndClose sends an error message via WebSocket then closes the connection
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(ErrorMsg{Type: MsgError, Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade error", "err", err)
		return
	}

	// Check the room after upgrade so the client can receive the error
	room, err := s.rooms.Get(mux.Vars(r)["code"])
	if err != nil {
		sendErrorAndClose(ws, err.Error())
		return
	}
	ws.EnableWriteCompression(true)

	conn := NewConn(ws, room, s.log)
	go conn.PushLoop(time.Second / time.Duration(s.cfg.Server.BroadcastHz))
	conn.ReadLoop()
}

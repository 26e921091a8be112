package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hansagames/hansa-server-go/internal/config"
	"github.com/hansagames/hansa-server-go/internal/game"
)

// Store persists committed game states. A nil Store runs the server
// without persistence.
type Store interface {
	Save(ctx context.Context, s *game.GameState) error
}

// WSMessage is the envelope of every websocket frame, both directions.
type WSMessage struct {
	Type   string          `json:"type"`
	GameID string          `json:"game_id,omitempty"`
	Seat   int             `json:"seat,omitempty"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// createPayload is the body of a "create" message.
type createPayload struct {
	Players  []string `json:"players"`
	Password string   `json:"password,omitempty"`
}

// joinPayload is the body of a "join" message.
type joinPayload struct {
	GameID   string `json:"game_id"`
	Seat     int    `json:"seat"`
	Password string `json:"password,omitempty"`
}

// actionPayload is the body of an "action" or "validate" message.
type actionPayload struct {
	Name   game.ActionName   `json:"name"`
	Params game.ActionParams `json:"params"`
}

// table tracks the clients sitting at one game and its join password.
type table struct {
	passwordHash []byte // empty when the table is open
	clients      map[*Client]int
}

// Hub relays actions from clients to the engine and mirrors committed
// states back to everyone at the table. Because Engine.Execute holds the
// game lock for the whole validate-snapshot-commit cycle, the hub never
// lets two mutations of one game interleave.
type Hub struct {
	engine *game.Engine
	store  Store
	cfg    config.ServerConfig
	logger *zap.Logger

	mu     sync.Mutex
	tables map[string]*table
}

// NewHub creates a hub around an engine. store may be nil.
func NewHub(engine *game.Engine, store Store, cfg config.ServerConfig, logger *zap.Logger) *Hub {
	return &Hub{
		engine: engine,
		store:  store,
		cfg:    cfg,
		logger: logger,
		tables: make(map[string]*table),
	}
}

// Client is one websocket connection. Outbound frames go through send so
// that a slow reader never blocks the hub. send is never closed; done
// marks the client dead, so a broadcast racing a disconnect can at worst
// queue a frame nobody reads.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	gameID string
	seat   int
}

// Handler returns the http handler serving the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return h.cfg.AllowAllOrigins || r.Header.Get("Origin") == ""
		},
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &Client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, 16),
			done: make(chan struct{}),
			seat: game.NoSeat,
		}
		go client.writePump()
		go client.readPump()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.dropClient(c)
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		c.hub.handle(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) sendMsg(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		// Backpressure: drop the frame rather than block the hub.
		c.hub.logger.Warn("client send buffer full, dropping frame")
	}
}

func (c *Client) sendError(reason string) {
	c.sendMsg(WSMessage{Type: "error", Error: reason})
}

func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	if t, ok := h.tables[c.gameID]; ok {
		delete(t.clients, c)
	}
	h.mu.Unlock()
	close(c.done)
}

// handle dispatches one inbound frame.
func (h *Hub) handle(c *Client, msg WSMessage) {
	switch msg.Type {
	case "create":
		h.handleCreate(c, msg)
	case "join":
		h.handleJoin(c, msg)
	case "validate":
		h.handleValidate(c, msg)
	case "action":
		h.handleAction(c, msg)
	case "state":
		h.handleState(c)
	default:
		c.sendError("unknown message type")
	}
}

func (h *Hub) handleCreate(c *Client, msg WSMessage) {
	var payload createPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.sendError("malformed create payload")
		return
	}
	s, err := h.engine.CreateGame(payload.Players)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	t := &table{clients: map[*Client]int{c: 0}}
	if payload.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			c.sendError("failed to set table password")
			return
		}
		t.passwordHash = hash
	}

	h.mu.Lock()
	h.tables[s.ID] = t
	h.mu.Unlock()

	c.gameID = s.ID
	c.seat = 0
	c.sendMsg(WSMessage{Type: "created", GameID: s.ID, Seat: 0})
	h.broadcastState(s)
	h.persist(s)
}

func (h *Hub) handleJoin(c *Client, msg WSMessage) {
	var payload joinPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.sendError("malformed join payload")
		return
	}
	s, ok := h.engine.Game(payload.GameID)
	if !ok {
		c.sendError("unknown game")
		return
	}
	if payload.Seat < 0 || payload.Seat >= len(s.Players) {
		c.sendError("seat out of range")
		return
	}

	h.mu.Lock()
	t, ok := h.tables[payload.GameID]
	if !ok {
		t = &table{clients: make(map[*Client]int)}
		h.tables[payload.GameID] = t
	}
	if len(t.passwordHash) > 0 &&
		bcrypt.CompareHashAndPassword(t.passwordHash, []byte(payload.Password)) != nil {
		h.mu.Unlock()
		c.sendError("wrong table password")
		return
	}
	t.clients[c] = payload.Seat
	h.mu.Unlock()

	c.gameID = payload.GameID
	c.seat = payload.Seat
	c.sendMsg(WSMessage{Type: "joined", GameID: payload.GameID, Seat: payload.Seat})
	h.sendState(c, s)
}

func (h *Hub) handleValidate(c *Client, msg WSMessage) {
	var payload actionPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.sendError("malformed action payload")
		return
	}
	reason, err := h.engine.Validate(c.gameID, c.seat, payload.Name, payload.Params)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendMsg(WSMessage{Type: "validated", GameID: c.gameID, Error: reason})
}

func (h *Hub) handleAction(c *Client, msg WSMessage) {
	var payload actionPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.sendError("malformed action payload")
		return
	}
	s, reason, err := h.engine.Execute(c.gameID, c.seat, payload.Name, payload.Params)
	if err != nil {
		h.logger.Error("action faulted",
			zap.String("game_id", c.gameID),
			zap.String("action", string(payload.Name)),
			zap.Error(err),
		)
		c.sendError("internal error")
		return
	}
	if reason != "" {
		c.sendError(reason)
		return
	}
	h.broadcastState(s)
	h.persist(s)
}

func (h *Hub) handleState(c *Client) {
	s, ok := h.engine.Game(c.gameID)
	if !ok {
		c.sendError("not at a table")
		return
	}
	h.sendState(c, s)
}

func (h *Hub) sendState(c *Client, s *game.GameState) {
	data, err := game.MarshalState(s)
	if err != nil {
		h.logger.Error("failed to encode state", zap.Error(err))
		return
	}
	c.sendMsg(WSMessage{Type: "state", GameID: s.ID, Data: data})
}

func (h *Hub) broadcastState(s *game.GameState) {
	h.mu.Lock()
	t, ok := h.tables[s.ID]
	var clients []*Client
	if ok {
		for c := range t.clients {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.sendState(c, s)
	}
}

func (h *Hub) persist(s *game.GameState) {
	if h.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.Save(ctx, s); err != nil {
		h.logger.Error("failed to persist game",
			zap.String("game_id", s.ID),
			zap.Error(err),
		)
	}
}

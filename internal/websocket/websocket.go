package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/services"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 256

	// EventTournamentState is sent to a client right after it subscribes
	EventTournamentState = "tournament_state"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Snapshotter returns the current view of a tournament for new subscribers
type Snapshotter interface {
	Get(ctx context.Context, id string) (*services.TournamentView, error)
}

// sequenced payloads carry the tournament state version they reflect
type sequenced interface {
	Sequence() uint64
}

// envelope is a message addressed to the subscribers of one tournament
type envelope struct {
	tournamentID string
	message      models.WSMessage
}

// Hub maintains the set of active clients and routes tournament events to
// the clients subscribed to that tournament
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	snapshots  Snapshotter
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan models.WSMessage
	tournamentID string
	// lastSeq is the newest state version delivered to this client
	lastSeq atomic.Uint64
}

// New creates a new Hub instance. snapshots may be nil, in which case new
// subscribers only receive events published after they connect.
func New(log logger.Logger, snapshots Snapshotter) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshots:  snapshots,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message routing
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client subscribed", "tournament_id", client.tournamentID, "total_clients", total)

			if h.snapshots != nil {
				go h.sendSnapshot(client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client unsubscribed", "tournament_id", client.tournamentID, "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.tournamentID != env.tournamentID {
					continue
				}
				select {
				case client.send <- env.message:
					if p, ok := env.message.Payload.(sequenced); ok {
						client.lastSeq.Store(p.Sequence())
					}
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// sendSnapshot pushes the current tournament view to a freshly registered client
func (h *Hub) sendSnapshot(client *Client) {
	view, err := h.snapshots.Get(context.Background(), client.tournamentID)
	if err != nil {
		h.log.Debug("No snapshot for subscriber", "tournament_id", client.tournamentID, "error", err)
		return
	}

	// The write lock keeps event delivery out while the version is compared.
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.clients[client] {
		return
	}
	if view.Seq < client.lastSeq.Load() {
		h.log.Debug("Dropping stale snapshot", "tournament_id", client.tournamentID, "seq", view.Seq)
		return
	}
	select {
	case client.send <- models.WSMessage{Type: EventTournamentState, Payload: view}:
	default:
	}
}

// BroadcastTournamentEvent implements services.Broadcaster
func (h *Hub) BroadcastTournamentEvent(tournamentID, eventType string, payload interface{}) {
	h.broadcast <- envelope{
		tournamentID: tournamentID,
		message: models.WSMessage{
			Type:    eventType,
			Payload: payload,
		},
	}
}

// SubscriberCount returns the number of clients following a tournament
func (h *Hub) SubscriberCount(tournamentID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for client := range h.clients {
		if client.tournamentID == tournamentID {
			n++
		}
	}
	return n
}

// readPump drains the connection so control frames are processed; clients
// have nothing to say to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Ignoring client message", "type", msg.Type, "tournament_id", c.tournamentID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode event", "type", message.Type, "error", err)
				w.Close()
				continue
			}
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
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

// ServeWs upgrades the request and subscribes the client to tournamentID
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, tournamentID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan models.WSMessage, sendBuffer),
		tournamentID: tournamentID,
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

var _ services.Broadcaster = (*Hub)(nil)

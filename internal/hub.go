package internal

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The dashboard is only served on the home network.
	},
}

type hubMessage struct {
	date    string
	payload []byte
}

// Hub pushes freshly drawn charts to the browsers watching a date.
type Hub struct {
	clients    map[*hubClient]bool
	broadcast  chan hubMessage
	register   chan *hubClient
	unregister chan *hubClient
	mu         sync.RWMutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	date string
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*hubClient]bool),
		broadcast:  make(chan hubMessage, 16),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		stopCh:     make(chan struct{}),
	}
}

// Start begins delivering messages.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.run()
	log.Println("websocket: hub started")
}

// Stop disconnects every client.
func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
	log.Println("websocket: hub stopped")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dates returns the dates watched by at least one client.
func (h *Hub) Dates() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := map[string]bool{}
	var dates []string
	for client := range h.clients {
		if !seen[client.date] {
			seen[client.date] = true
			dates = append(dates, client.date)
		}
	}
	return dates
}

// Broadcast queues payload for the clients watching date. It never blocks.
func (h *Hub) Broadcast(date string, payload []byte) {
	select {
	case h.broadcast <- hubMessage{date: date, payload: payload}:
	default:
		log.Println("websocket: broadcast queue full, dropping update for", date)
	}
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case <-h.stopCh:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("websocket: client connected for %q (total: %d)", client.date, h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("websocket: client disconnected (total: %d)", h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.date != message.date {
					continue
				}
				select {
				case client.send <- message.payload:
				default:
					// Client buffer full, it gets the next update.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ServeWS upgrades the request and subscribes it to its date.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, date string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade error: %v", err)
		return
	}

	client := &hubClient{
		hub:  h,
		conn: conn,
		date: date,
		send: make(chan []byte, 8),
	}

	select {
	case h.register <- client:
	case <-h.stopCh:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopCh:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: read error: %v", err)
			}
			break
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/metrics"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server -> client messages.
type wsMessage struct {
	Type       string            `json:"type"`
	Collection string            `json:"collection,omitempty"`
	Records    []docstore.Record `json:"records,omitempty"`
	Toasts     []toast.Toast     `json:"toasts,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Client -> server messages: {"type": "mount"|"unmount", "page": "leads"}.
type wsCommand struct {
	Type string `json:"type"`
	Page string `json:"page"`
}

// WSHandler pushes snapshot and toast changes to the browser. In lazy
// mode the client mounts and unmounts pages to open and close their
// subscriptions.
type WSHandler struct{}

// Serve handles GET /ws?token=...
func (WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	c := newClient(conn, ws)
	metrics.WebsocketClients.Inc()
	defer metrics.WebsocketClients.Dec()

	go c.writeLoop()
	c.start()
	c.readLoop()
	c.stop()
}

type client struct {
	conn *websocket.Conn
	ws   *workspace.Workspace
	send chan wsMessage
	done chan struct{}

	mu     sync.Mutex
	mounts map[string][]func()
	unsubs []func()

	// Collections (and the toast list) whose push was dropped on a full
	// buffer; resent from the current state once the buffer drains.
	staleMu     sync.Mutex
	stale       map[string]bool
	staleToasts bool
}

func newClient(conn *websocket.Conn, ws *workspace.Workspace) *client {
	return &client{
		conn:   conn,
		ws:     ws,
		send:   make(chan wsMessage, sendBuffer),
		done:   make(chan struct{}),
		mounts: make(map[string][]func()),
		stale:  make(map[string]bool),
	}
}

func (c *client) start() {
	c.unsubs = append(c.unsubs,
		c.ws.Data.OnUpdate(func(collection string, records []docstore.Record) {
			c.enqueue(wsMessage{Type: "snapshot", Collection: collection, Records: records})
		}),
		c.ws.Toasts.Subscribe(func(list []toast.Toast) {
			c.enqueue(wsMessage{Type: "toasts", Toasts: list})
		}),
	)

	for _, collection := range models.Collections() {
		if c.ws.Data.Loaded(collection) {
			c.enqueue(wsMessage{Type: "snapshot", Collection: collection, Records: c.ws.Data.Snapshot(collection)})
		}
	}
	c.enqueue(wsMessage{Type: "toasts", Toasts: c.ws.Toasts.List()})
}

func (c *client) stop() {
	for _, u := range c.unsubs {
		u()
	}
	c.mu.Lock()
	for page, releases := range c.mounts {
		for _, release := range releases {
			release()
		}
		delete(c.mounts, page)
	}
	c.mu.Unlock()
	close(c.done)
}

// enqueue never blocks the publisher. A snapshot or toast list that does
// not fit is remembered and resent by flushStale.
func (c *client) enqueue(m wsMessage) {
	select {
	case <-c.done:
	case c.send <- m:
	default:
		log.Printf("[WS] send buffer full for %s, deferring %s %s", c.ws.Session.Email, m.Type, m.Collection)
		c.staleMu.Lock()
		switch m.Type {
		case "snapshot":
			c.stale[m.Collection] = true
		case "toasts":
			c.staleToasts = true
		}
		c.staleMu.Unlock()
	}
}

// flushStale queues the current state of everything enqueue had to drop.
// It runs on the write loop once the buffer is empty.
func (c *client) flushStale() {
	c.staleMu.Lock()
	if len(c.stale) == 0 && !c.staleToasts {
		c.staleMu.Unlock()
		return
	}
	collections := make([]string, 0, len(c.stale))
	for collection := range c.stale {
		collections = append(collections, collection)
	}
	c.stale = make(map[string]bool)
	toasts := c.staleToasts
	c.staleToasts = false
	c.staleMu.Unlock()

	for _, collection := range collections {
		c.enqueue(wsMessage{Type: "snapshot", Collection: collection, Records: c.ws.Data.Snapshot(collection)})
	}
	if toasts {
		c.enqueue(wsMessage{Type: "toasts", Toasts: c.ws.Toasts.List()})
	}
}

func (c *client) readLoop() {
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var cmd wsCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}
		switch cmd.Type {
		case "mount":
			c.mount(cmd.Page)
		case "unmount":
			c.unmount(cmd.Page)
		default:
			c.enqueue(wsMessage{Type: "error", Error: "unknown command " + cmd.Type})
		}
	}
}

func (c *client) mount(page string) {
	collections, ok := views.PageCollections[page]
	if !ok {
		c.enqueue(wsMessage{Type: "error", Error: "unknown page " + page})
		return
	}
	c.mu.Lock()
	if _, mounted := c.mounts[page]; mounted {
		c.mu.Unlock()
		return
	}
	releases := make([]func(), 0, len(collections))
	for _, collection := range collections {
		releases = append(releases, c.ws.Data.Acquire(collection))
	}
	c.mounts[page] = releases
	c.mu.Unlock()

	for _, collection := range collections {
		if c.ws.Data.Loaded(collection) {
			c.enqueue(wsMessage{Type: "snapshot", Collection: collection, Records: c.ws.Data.Snapshot(collection)})
		}
	}
}

func (c *client) unmount(page string) {
	c.mu.Lock()
	releases := c.mounts[page]
	delete(c.mounts, page)
	c.mu.Unlock()
	for _, release := range releases {
		release()
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case m := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				log.Printf("[WS] write error: %v", err)
				return
			}
			if len(c.send) == 0 {
				c.flushStale()
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"Bt1Cut/core/session"
	"Bt1Cut/logger"
	"Bt1Cut/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsClient 一个已连接的时间线视图
type wsClient struct {
	hub  *sessionHub
	conn *websocket.Conn
	send chan []byte
}

// sessionHub fans the session's post-commit events out to every connected
// view. One hub per session; the sink it installs runs on the session loop
// and must never block, so events go through a buffered channel and are
// dropped when a slow consumer falls behind. Clients resync with a timeline
// GET, the stream is advisory.
type sessionHub struct {
	sessionID  string
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	events     chan model.Event
	done       chan struct{}
}

func newSessionHub(sessionID string) *sessionHub {
	return &sessionHub{
		sessionID:  sessionID,
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan model.Event, 256),
		done:       make(chan struct{}),
	}
}

// enqueue is the session event sink. Runs on the session loop.
func (hub *sessionHub) enqueue(ev model.Event) {
	select {
	case hub.events <- ev:
	default:
		logger.Warn("event stream overflow, dropping event",
			logger.String("sessionId", hub.sessionID),
			logger.String("type", string(ev.Type)),
		)
	}
}

func (hub *sessionHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
			logger.Info("view connected",
				logger.String("sessionId", hub.sessionID),
				logger.Int("views", len(hub.clients)),
			)

		case client := <-hub.unregister:
			if hub.clients[client] {
				delete(hub.clients, client)
				close(client.send)
			}

		case ev := <-hub.events:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error("failed to marshal event", logger.ErrorField(err))
				continue
			}
			for client := range hub.clients {
				select {
				case client.send <- data:
				default:
					// 消费太慢，断开让客户端重连
					delete(hub.clients, client)
					close(client.send)
				}
			}

		case <-hub.done:
			for client := range hub.clients {
				close(client.send)
			}
			return
		}
	}
}

func (hub *sessionHub) stop() {
	close(hub.done)
}

// hubFor returns the session's hub, creating it and installing its event
// sink on first use.
func (h *APIHandler) hubFor(sess *session.Session) (*sessionHub, error) {
	h.hubMu.Lock()
	defer h.hubMu.Unlock()

	if hub, ok := h.hubs[sess.ID]; ok {
		return hub, nil
	}

	hub := newSessionHub(sess.ID)
	// AddSink must run on the session loop once it has started.
	if err := sess.Do(func() error {
		sess.AddSink(hub.enqueue)
		return nil
	}); err != nil {
		return nil, err
	}
	h.hubs[sess.ID] = hub
	go hub.run()
	return hub, nil
}

// dropHub stops the session's hub if one exists.
func (h *APIHandler) dropHub(sessionID string) {
	h.hubMu.Lock()
	hub, ok := h.hubs[sessionID]
	if ok {
		delete(h.hubs, sessionID)
	}
	h.hubMu.Unlock()
	if ok {
		hub.stop()
	}
}

// SessionStreamHandler upgrades to WebSocket and streams the session's
// playhead, selection and mutation events.
func (h *APIHandler) SessionStreamHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	hub, err := h.hubFor(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &wsClient{hub: hub, conn: conn, send: make(chan []byte, 64)}
	select {
	case hub.register <- client:
	case <-hub.done:
		// 会话在升级期间被关闭
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// readPump 客户端不发送业务消息，只处理心跳并等待断开
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", logger.ErrorField(err))
			}
			return
		}
	}
}

// writePump 写入消息循环，带周期性ping
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

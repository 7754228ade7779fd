package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"comlab_tool/models"
	"comlab_tool/requests"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 8
)

// Client is one websocket subscriber.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	Scope Scope

	mu     sync.Mutex
	view   requests.ViewState
	out    chan []byte
	closed bool
}

func (c *Client) View() requests.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Client) setView(v requests.ViewState) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

// send queues a snapshot. A subscriber that cannot keep up is dropped.
func (c *Client) send(s Snapshot) {
	b, err := json.Marshal(s)
	if err != nil {
		log.Error().Err(err).Msg("encode live snapshot")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- b:
	default:
		c.closed = true
		close(c.out)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// viewMessage is what a subscriber sends to change its filter.
type viewMessage struct {
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (m viewMessage) parse() (requests.ViewState, error) {
	st, err := models.ParseFilterStatus(m.Status)
	if err != nil {
		return requests.ViewState{}, err
	}
	v := requests.ViewState{Status: st, From: m.From, To: m.To}
	if _, _, err := v.Bounds(time.UTC); err != nil {
		return requests.ViewState{}, err
	}
	return v, nil
}

// Upgrader is shared by the websocket endpoints. Origin checks happen in the
// HTTP layer before Serve is called.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and subscribes it to topic until the peer leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string, scope Scope, view requests.ViewState) error {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:   h,
		conn:  conn,
		topic: topic,
		Scope: scope,
		view:  view,
		out:   make(chan []byte, sendBuffer),
	}
	h.add(c)
	go c.writePump()
	c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg viewMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("topic", c.topic).Msg("live read")
			}
			if _, ok := err.(*json.SyntaxError); ok {
				continue
			}
			return
		}
		v, err := msg.parse()
		if err != nil {
			log.Debug().Err(err).Msg("live view rejected")
			continue
		}
		c.setView(v)
		c.hub.requestRefresh(c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

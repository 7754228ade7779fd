// Package live pushes request lists to dashboards over websockets. Every
// change re-sends the subscriber's full filtered list.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"comlab_tool/models"
	"comlab_tool/requests"
)

// Row is a request as the live lists see it.
type Row interface {
	requests.Request
	RequestOwner() string
}

// Feed loads every row of one topic.
type Feed func(ctx context.Context) ([]Row, error)

// Scope limits what a subscriber may see.
type Scope struct {
	UserID string
	Admin  bool
}

func (s Scope) allows(r Row) bool { return s.Admin || r.RequestOwner() == s.UserID }

// Snapshot is the message pushed to a subscriber.
type Snapshot struct {
	Topic  string                `json:"topic"`
	View   requests.ViewState    `json:"view"`
	Items  []Row                 `json:"items"`
	Counts map[models.Status]int `json:"counts"`
}

const loadTimeout = 10 * time.Second

type Hub struct {
	feeds map[string]Feed
	loc   *time.Location

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	notify  chan string
	refresh chan *Client
}

func NewHub(loc *time.Location) *Hub {
	if loc == nil {
		loc = time.UTC
	}
	return &Hub{
		feeds:   make(map[string]Feed),
		loc:     loc,
		clients: make(map[string]map[*Client]struct{}),
		notify:  make(chan string, 64),
		refresh: make(chan *Client, 64),
	}
}

// Register attaches a feed to a topic. Call before Run.
func (h *Hub) Register(topic string, f Feed) { h.feeds[topic] = f }

func (h *Hub) HasTopic(topic string) bool {
	_, ok := h.feeds[topic]
	return ok
}

// Notify schedules a refresh of every subscriber of topic. It never blocks;
// a full queue already holds a pending refresh.
func (h *Hub) Notify(_ context.Context, topic string) {
	select {
	case h.notify <- topic:
	default:
		log.Debug().Str("topic", topic).Msg("live notify queue full, coalescing")
	}
}

// Run serves refreshes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case topic := <-h.notify:
			h.drainInto(topic)
		case c := <-h.refresh:
			h.push(ctx, c.topic, []*Client{c})
		}
	}
}

// drainInto collapses queued notifications so one burst of writes costs one
// reload per topic.
func (h *Hub) drainInto(first string) {
	topics := map[string]struct{}{first: {}}
	for {
		select {
		case t := <-h.notify:
			topics[t] = struct{}{}
		default:
			for t := range topics {
				h.push(context.Background(), t, h.subscribers(t))
			}
			return
		}
	}
}

func (h *Hub) subscribers(topic string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients[topic]))
	for c := range h.clients[topic] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) push(ctx context.Context, topic string, clients []*Client) {
	if len(clients) == 0 {
		return
	}
	feed, ok := h.feeds[topic]
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	rows, err := feed(ctx)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("live snapshot load failed")
		return
	}
	for _, c := range clients {
		c.send(h.Build(topic, rows, c.Scope, c.View()))
	}
}

// Build derives one subscriber's snapshot from the topic's rows.
func (h *Hub) Build(topic string, rows []Row, scope Scope, view requests.ViewState) Snapshot {
	visible := make([]Row, 0, len(rows))
	for _, r := range rows {
		if scope.allows(r) {
			visible = append(visible, r)
		}
	}
	return Snapshot{
		Topic:  topic,
		View:   view,
		Items:  requests.Filter(visible, view, h.loc),
		Counts: requests.CountByStatus(visible),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	if h.clients[c.topic] == nil {
		h.clients[c.topic] = make(map[*Client]struct{})
	}
	h.clients[c.topic][c] = struct{}{}
	h.mu.Unlock()
	h.requestRefresh(c)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.topic]; set != nil {
		if _, ok := set[c]; ok {
			delete(set, c)
			c.close()
		}
	}
	h.mu.Unlock()
}

func (h *Hub) requestRefresh(c *Client) {
	select {
	case h.refresh <- c:
	default:
		log.Warn().Str("topic", c.topic).Msg("live refresh queue full, dropping")
	}
}

// Count returns the number of subscribers on topic.
func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			c.close()
			delete(set, c)
		}
	}
}

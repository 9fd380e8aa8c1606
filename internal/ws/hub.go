package ws

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrHubStopped = errors.New("ws hub stopped")

type envelope struct {
	userID  uuid.UUID
	message []byte
}

// Hub fans messages out to the connections of a user. All client bookkeeping
// happens on the Run goroutine.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	deliver    chan envelope
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		deliver:    make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run processes hub events until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, set := range h.clients {
			for c := range set {
				close(c.send)
			}
		}
		h.clients = map[uuid.UUID]map[*Client]struct{}{}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.logger.Debug("ws connected", zap.String("user_id", c.userID.String()), zap.Int("user_clients", len(set)))

		case c := <-h.unregister:
			h.remove(c)

		case env := <-h.deliver:
			set := h.clients[env.userID]
			for c := range set {
				select {
				case c.send <- env.message:
				default:
					h.logger.Warn("ws client too slow, dropping", zap.String("user_id", c.userID.String()))
					h.remove(c)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, set := range h.clients {
				n += len(set)
			}
			reply <- n
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug("ws disconnected", zap.String("user_id", c.userID.String()))
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendToUser queues message for every connection of userID. It never blocks;
// a full queue drops the message.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.deliver <- envelope{userID: userID, message: message}:
		return nil
	default:
		h.logger.Warn("ws delivery dropped", zap.String("reason", "buffer_full"), zap.String("user_id", userID.String()))
		return nil
	}
}

func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

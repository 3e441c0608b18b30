package websocket

import (
	"encoding/json"
	"sync"

	"github.com/jnavarro/taskboard/internal/domain"
	"go.uber.org/zap"
)

// TaskEvent is pushed to every open connection of the task's owner.
type TaskEvent struct {
	Type string       `json:"type"`
	Task *domain.Task `json:"task"`
}

type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan userEvent
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	logger     *zap.Logger
	mu         sync.RWMutex
}

type userEvent struct {
	userID uint
	data   []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userEvent, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, conns := range h.clients {
				for client := range conns {
					client.Close()
				}
			}
			h.clients = make(map[uint]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				if h.clients[client.userID] == nil {
					h.clients[client.userID] = make(map[*Client]bool)
				}
				h.clients[client.userID][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if conns, ok := h.clients[client.userID]; ok {
					if _, ok := conns[client]; ok {
						delete(conns, client)
						client.Close()
						if len(conns) == 0 {
							delete(h.clients, client.userID)
						}
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[ev.userID] {
				select {
				case client.send <- ev.data:
				default:
					// Slow consumer; drop the event rather than block the hub
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and blocks until Run has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	default:
	}
}

// PublishTaskEvent implements service.TaskEventPublisher.
func (h *Hub) PublishTaskEvent(userID uint, action string, task *domain.Task) {
	data, err := json.Marshal(TaskEvent{Type: "task." + action, Task: task})
	if err != nil {
		h.logger.Error("failed to marshal task event", zap.Error(err))
		return
	}

	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.broadcast <- userEvent{userID: userID, data: data}:
	default:
		h.logger.Warn("event queue full, dropping task event", zap.Uint("userId", userID))
	}
}

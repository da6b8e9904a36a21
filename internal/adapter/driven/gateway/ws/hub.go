package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrHubStopped  = errors.New("hub stopped")
	ErrPeerOffline = errors.New("peer offline")
)

type delivery struct {
	userIDs []domain.UserID
	msg     domain.Message
}

type registration struct {
	client Client
	done   chan struct{}
}

// implements port.RealTimeGateway
type Hub struct {
	mu     sync.RWMutex
	peers  map[domain.PeerID]Client
	byUser map[domain.UserID]map[domain.PeerID]Client

	deliveries chan delivery
	register   chan registration
	unregister chan Client
	quit       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		peers:      make(map[domain.PeerID]Client),
		byUser:     make(map[domain.UserID]map[domain.PeerID]Client),
		deliveries: make(chan delivery, 256),
		register:   make(chan registration),
		unregister: make(chan Client),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) DeliverMessage(ctx context.Context, userIDs []domain.UserID, msg domain.Message) error {
	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}
	select {
	case h.deliveries <- delivery{userIDs: userIDs, msg: msg}:
		return nil
	case <-h.quit:
		return ErrHubStopped
	default:
		log.Warn().Str("message_id", msg.ID.String()).Msg("Delivery queue full, dropping message")
		return nil
	}
}

// SendSignal writes sig to the one connection identified by peerID.
func (h *Hub) SendSignal(ctx context.Context, peerID domain.PeerID, sig domain.Signal) error {
	h.mu.RLock()
	client, ok := h.peers[peerID]
	h.mu.RUnlock()

	if !ok {
		return ErrPeerOffline
	}
	return client.SendSignal(sig)
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID domain.UserID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for id, client := range h.peers {
				client.Close()
				delete(h.peers, id)
			}
			h.byUser = make(map[domain.UserID]map[domain.PeerID]Client)
			h.mu.Unlock()
			return

		case reg := <-h.register:
			h.add(reg.client)
			close(reg.done)
			log.Info().Str("client_id", reg.client.ID().String()).Str("user_id", reg.client.UserID().String()).Msg("Client registered")

		case client := <-h.unregister:
			if h.remove(client) {
				client.Close()
				log.Info().Str("client_id", client.ID().String()).Msg("Client unregistered")
			}

		case d := <-h.deliveries:
			for _, client := range h.clientsOf(d.userIDs) {
				if err := client.SendText(d.msg); err != nil {
					log.Error().Err(err).Str("client_id", client.ID().String()).Msg("Error sending message")
				}
			}
		}
	}
}

func (h *Hub) add(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[c.ID()] = c
	conns, ok := h.byUser[c.UserID()]
	if !ok {
		conns = make(map[domain.PeerID]Client)
		h.byUser[c.UserID()] = conns
	}
	conns[c.ID()] = c
}

func (h *Hub) remove(c Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[c.ID()]; !ok {
		return false
	}
	delete(h.peers, c.ID())
	if conns, ok := h.byUser[c.UserID()]; ok {
		delete(conns, c.ID())
		if len(conns) == 0 {
			delete(h.byUser, c.UserID())
		}
	}
	return true
}

func (h *Hub) clientsOf(userIDs []domain.UserID) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Client
	for _, uid := range userIDs {
		for _, c := range h.byUser[uid] {
			out = append(out, c)
		}
	}
	return out
}

// Register blocks until c can receive signals.
func (h *Hub) Register(c Client) error {
	reg := registration{client: c, done: make(chan struct{})}
	select {
	case h.register <- reg:
	case <-h.quit:
		return ErrHubStopped
	}
	<-reg.done
	return nil
}

func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // enough for SDP bodies
	sendBufferSize = 256
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrClientClosed   = errors.New("client closed")
)

type WSClient struct {
	id   domain.PeerID
	user domain.UserID
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newWSClient(user domain.UserID, conn *websocket.Conn) *WSClient {
	return &WSClient{
		id:   domain.NewPeerID(),
		user: user,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *WSClient) ID() domain.PeerID     { return c.id }
func (c *WSClient) UserID() domain.UserID { return c.user }

func (c *WSClient) SendText(msg domain.Message) error {
	return c.enqueue(channelChat, kindMessage, msg)
}

func (c *WSClient) SendSignal(sig domain.Signal) error {
	return c.enqueue(channelSignal, string(sig.Kind()), sig)
}

func (c *WSClient) sendError(kind string, err error) error {
	return c.enqueue(channelSystem, kindError, errorDTO{Error: err.Error(), Kind: kind})
}

func (c *WSClient) enqueue(channel, kind string, payload any) error {
	frame, err := encodeEnvelope(channel, kind, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which then closes the connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

// HTTP handler
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: user_id query parameter", errUnauthenticated))
		return
	}
	if _, err := h.Workspaces.Workspace(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error while upgrading ws")
		return
	}

	client := newWSClient(userID, conn)
	l := log.With().Str("client_id", client.id.String()).Str("user_id", userID.String()).Logger()
	l.Info().Msg("New client connected")

	go client.writePump()
	if err := h.Hub.Register(client); err != nil {
		l.Error().Err(err).Msg("Failed to register client")
		client.Close()
		return
	}

	ctx := r.Context()
	defer func() {
		l.Info().Msg("Client disconnected")
		if err := h.CallService.Disconnect(context.WithoutCancel(ctx), client.id); err != nil {
			l.Debug().Err(err).Msg("Leaving calls on disconnect")
		}
		h.Hub.Unregister(client)
		client.Close()
	}()

	if err := client.enqueue(channelSystem, kindWelcome, welcomeDTO{PeerID: client.id, UserID: userID}); err != nil {
		l.Error().Err(err).Msg("Failed to greet client")
		return
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// listening for browser
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("Unexpected close error")
			}
			break
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			l.Warn().Err(err).Msg("Dropping malformed frame")
			client.sendError("", fmt.Errorf("%w: malformed envelope", domain.ErrInvalid))
			continue
		}

		if err := h.dispatch(ctx, client, env); err != nil {
			logDropped(l, env, err)
			if sendErr := client.sendError(env.Kind, err); sendErr != nil {
				l.Debug().Err(sendErr).Msg("Failed to report error to client")
			}
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, client *WSClient, env envelope) error {
	switch env.Channel {
	case channelChat:
		if env.Kind != kindMessage {
			return &domain.UnsupportedMessageKindError{Kind: env.Channel + "/" + env.Kind}
		}
		var in domain.NewMessage
		if err := json.Unmarshal(env.Data, &in); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
		}
		_, err := h.ChatService.SendMessage(ctx, client.user, in)
		return err

	case channelSignal:
		sig, err := domain.DecodeSignal(env.Kind, env.Data)
		if err != nil {
			return err
		}
		return h.CallService.Handle(ctx, client.id, client.user, sig)

	default:
		return &domain.UnsupportedMessageKindError{Kind: env.Channel + "/" + env.Kind}
	}
}

func logDropped(l zerolog.Logger, env envelope, err error) {
	ev := l.Warn()
	if !errors.Is(err, domain.ErrUnsupportedMessageKind) && !errors.Is(err, domain.ErrInvalid) && !errors.Is(err, domain.ErrNotFound) {
		ev = l.Error()
	}
	ev.Err(err).Str("channel", env.Channel).Str("kind", env.Kind).Msg("Dropping frame")
}

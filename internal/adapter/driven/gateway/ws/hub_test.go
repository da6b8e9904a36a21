package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	id   domain.PeerID
	user domain.UserID

	mu      sync.Mutex
	texts   []domain.Message
	signals []domain.Signal
	closed  bool
}

func newFakeClient(user domain.UserID) *fakeClient {
	return &fakeClient{id: domain.NewPeerID(), user: user}
}

func (c *fakeClient) ID() domain.PeerID     { return c.id }
func (c *fakeClient) UserID() domain.UserID { return c.user }

func (c *fakeClient) SendText(msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, msg)
	return nil
}

func (c *fakeClient) SendSignal(sig domain.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = append(c.signals, sig)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func TestHubDeliverMessage(t *testing.T) {
	h := startHub(t)
	ana, bo := domain.NewUserID(), domain.NewUserID()
	phone, laptop := newFakeClient(ana), newFakeClient(ana)
	other := newFakeClient(bo)
	for _, c := range []*fakeClient{phone, laptop, other} {
		require.NoError(t, h.Register(c))
	}

	msg := domain.Message{ID: domain.NewMessageID(), Content: "hi"}
	require.NoError(t, h.DeliverMessage(context.Background(), []domain.UserID{ana}, msg))

	assert.Eventually(t, func() bool {
		return phone.received() == 1 && laptop.received() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, other.received())
}

func TestHubSendSignalTargetsOnePeer(t *testing.T) {
	h := startHub(t)
	user := domain.NewUserID()
	a, b := newFakeClient(user), newFakeClient(user)
	require.NoError(t, h.Register(a))
	require.NoError(t, h.Register(b))

	sig := domain.RemovePeer{PeerID: domain.NewPeerID()}
	require.NoError(t, h.SendSignal(context.Background(), b.ID(), sig))

	assert.Empty(t, a.signals)
	assert.Equal(t, []domain.Signal{sig}, b.signals)

	err := h.SendSignal(context.Background(), domain.NewPeerID(), sig)
	assert.ErrorIs(t, err, ErrPeerOffline)
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t)
	user := domain.NewUserID()
	c := newFakeClient(user)
	require.NoError(t, h.Register(c))
	assert.True(t, h.Online(user))

	h.Unregister(c)
	assert.Eventually(t, func() bool { return !h.Online(user) && c.isClosed() }, time.Second, 5*time.Millisecond)

	err := h.SendSignal(context.Background(), c.ID(), domain.RemovePeer{})
	assert.ErrorIs(t, err, ErrPeerOffline)
}

func TestHubStopClosesClients(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := newFakeClient(domain.NewUserID())
	require.NoError(t, h.Register(c))
	h.Stop()
	<-done

	assert.True(t, c.isClosed())
	assert.ErrorIs(t, h.Register(newFakeClient(domain.NewUserID())), ErrHubStopped)
	assert.ErrorIs(t, h.DeliverMessage(context.Background(), nil, domain.Message{}), ErrHubStopped)
}

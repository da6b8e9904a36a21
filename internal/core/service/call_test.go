package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Wyydra/huddle/internal/adapter/driven/call/memory"
	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/service"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSDP = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

type callFixture struct {
	*fixture
	svc    *service.CallService
	gw     *recordingGateway
	engine *memory.CallEngine
	cy     domain.User
}

// peer is one connection of a user.
type peer struct {
	id   domain.PeerID
	user domain.UserID
}

func newCall(t *testing.T) *callFixture {
	t.Helper()
	f := newFixture(t)
	c := &callFixture{
		fixture: f,
		gw:      &recordingGateway{},
		engine:  memory.NewCallEngine(),
		cy:      domain.User{ID: domain.NewUserID(), Name: "cy"},
	}
	require.NoError(t, f.users.Save(context.Background(), c.cy))
	c.svc = service.NewCallService(c.engine, c.gw, f.workspaces)
	return c
}

// groupRoom creates a group owned by ana with the given extra members.
func (c *callFixture) groupRoom(t *testing.T, members ...domain.UserID) domain.RoomID {
	t.Helper()
	room := domain.Room{Type: domain.RoomGroup}
	for _, m := range members {
		room.Participants = append(room.Participants, domain.Participant{UserID: m})
	}
	created, err := c.workspaces.CreateRoom(context.Background(), c.ana.ID, room)
	require.NoError(t, err)
	return created.ID
}

func (c *callFixture) peer(user domain.User) peer {
	return peer{id: domain.NewPeerID(), user: user.ID}
}

func (c *callFixture) join(t *testing.T, p peer, room domain.RoomID) {
	t.Helper()
	require.NoError(t, c.svc.InitCall(context.Background(), p.id, p.user, room))
}

func addPeers(sigs []domain.Signal) []domain.AddPeer {
	var out []domain.AddPeer
	for _, s := range sigs {
		if ap, ok := s.(domain.AddPeer); ok {
			out = append(out, ap)
		}
	}
	return out
}

func TestInitCallExactlyOneOfferer(t *testing.T) {
	c := newCall(t)
	room := c.groupRoom(t, c.bo.ID, c.cy.ID)
	peers := []peer{c.peer(c.ana), c.peer(c.bo), c.peer(c.cy)}

	for _, p := range peers {
		c.join(t, p, room)
	}

	// for every unordered pair exactly one side was told to offer
	for i, a := range peers {
		for _, b := range peers[i+1:] {
			offers := 0
			for _, ap := range addPeers(c.gw.sentTo(a.id)) {
				if ap.PeerID == b.id && ap.ShouldCreateOffer {
					offers++
				}
			}
			for _, ap := range addPeers(c.gw.sentTo(b.id)) {
				if ap.PeerID == a.id && ap.ShouldCreateOffer {
					offers++
				}
			}
			assert.Equal(t, 1, offers, "pair %s %s", a.id, b.id)
		}
	}

	// the latest joiner offers to everyone
	last := addPeers(c.gw.sentTo(peers[2].id))
	require.Len(t, last, 2)
	for _, ap := range last {
		assert.True(t, ap.ShouldCreateOffer)
	}
}

func TestInitCallTwiceIsNoop(t *testing.T) {
	c := newCall(t)
	room := c.groupRoom(t, c.bo.ID)
	a, b := c.peer(c.ana), c.peer(c.bo)

	c.join(t, a, room)
	c.join(t, b, room)
	c.gw.reset()

	c.join(t, b, room)
	assert.Empty(t, c.gw.signals)
}

func TestInitCallRequiresParticipant(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	room := c.groupRoom(t, c.bo.ID)
	member := c.peer(c.ana)
	c.join(t, member, room)
	c.gw.reset()

	outsider := c.peer(c.cy)
	err := c.svc.Handle(ctx, outsider.id, outsider.user, domain.InitCall{RoomID: room})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = c.svc.InitCall(ctx, outsider.id, outsider.user, domain.NewRoomID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, c.gw.signals, "members never learn about the outsider")
	assert.Equal(t, []domain.PeerID{member.id}, c.engine.Peers(room))
	assert.False(t, c.engine.Shares(member.id, outsider.id))
}

func TestRelaySdpReachesOnlyTarget(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	room := c.groupRoom(t, c.bo.ID, c.cy.ID)
	a, b, other := c.peer(c.ana), c.peer(c.bo), c.peer(c.cy)
	for _, p := range []peer{a, b, other} {
		c.join(t, p, room)
	}
	c.gw.reset()

	offer := domain.RelaySdp{
		PeerID:             b.id,
		SessionDescription: webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: testSDP},
	}
	require.NoError(t, c.svc.Handle(ctx, a.id, a.user, offer))

	require.Len(t, c.gw.signals, 1)
	got := c.gw.signals[0]
	assert.Equal(t, b.id, got.to)
	relayed, ok := got.sig.(domain.RelaySdp)
	require.True(t, ok)
	assert.Equal(t, a.id, relayed.PeerID, "receiver sees the sender")
	assert.Equal(t, testSDP, relayed.SessionDescription.SDP)
}

func TestRelayIceRewritesPeer(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	room := c.groupRoom(t, c.bo.ID)
	a, b := c.peer(c.ana), c.peer(c.bo)
	c.join(t, a, room)
	c.join(t, b, room)
	c.gw.reset()

	mid := "0"
	ice := domain.RelayIce{PeerID: a.id, IceCandidate: webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 1 10.0.0.1 5000 typ host", SDPMid: &mid}}
	require.NoError(t, c.svc.Handle(ctx, b.id, b.user, ice))

	sigs := c.gw.sentTo(a.id)
	require.Len(t, sigs, 1)
	assert.Equal(t, b.id, sigs[0].(domain.RelayIce).PeerID)
}

func TestRelayOutsideCall(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	a, b := c.peer(c.ana), c.peer(c.bo)
	c.join(t, a, c.groupRoom(t))
	c.join(t, b, c.groupRoom(t, c.bo.ID))
	c.gw.reset()

	err := c.svc.RelaySdp(ctx, a.id, domain.RelaySdp{PeerID: b.id, SessionDescription: webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: testSDP}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = c.svc.RelaySdp(ctx, a.id, domain.RelaySdp{PeerID: a.id})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, c.gw.signals)
}

func TestLeaveCall(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	room := c.groupRoom(t, c.bo.ID)
	a, b := c.peer(c.ana), c.peer(c.bo)
	c.join(t, a, room)
	c.join(t, b, room)
	c.gw.reset()

	require.NoError(t, c.svc.Handle(ctx, a.id, a.user, domain.LeaveCall{RoomID: room}))
	assert.Equal(t, []domain.Signal{domain.RemovePeer{PeerID: a.id}}, c.gw.sentTo(b.id))
	assert.Equal(t, []domain.Signal{domain.RemovePeer{PeerID: b.id}}, c.gw.sentTo(a.id))

	c.gw.reset()
	require.NoError(t, c.svc.LeaveCall(ctx, a.id, room))
	assert.Empty(t, c.gw.signals)
}

func TestDisconnectLeavesAllCalls(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	r1, r2 := c.groupRoom(t, c.bo.ID), c.groupRoom(t, c.bo.ID)
	a, b := c.peer(c.ana), c.peer(c.bo)

	for _, r := range []domain.RoomID{r1, r2} {
		c.join(t, a, r)
		c.join(t, b, r)
	}

	require.NoError(t, c.svc.Disconnect(ctx, a.id))
	assert.Empty(t, c.engine.SessionsOf(a.id))
	assert.Equal(t, []domain.PeerID{b.id}, c.engine.Peers(r1))
	assert.Equal(t, []domain.PeerID{b.id}, c.engine.Peers(r2))
}

func TestHandleRejectsServerOnlySignals(t *testing.T) {
	c := newCall(t)
	err := c.svc.Handle(context.Background(), domain.NewPeerID(), c.ana.ID, domain.AddPeer{PeerID: domain.NewPeerID()})

	var unsupported *domain.UnsupportedMessageKindError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "add-peer", unsupported.Kind)
}

func TestInitCallCollectsSendErrors(t *testing.T) {
	c := newCall(t)
	ctx := context.Background()
	room := c.groupRoom(t, c.bo.ID)
	a, b := c.peer(c.ana), c.peer(c.bo)
	c.join(t, a, room)

	offline := errors.New("offline")
	c.gw.failTo = map[domain.PeerID]error{a.id: offline}
	err := c.svc.InitCall(ctx, b.id, b.user, room)
	assert.ErrorIs(t, err, offline)
	// b still learned about a
	assert.Len(t, addPeers(c.gw.sentTo(b.id)), 1)
}

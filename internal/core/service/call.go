package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/port"
	"github.com/rs/zerolog/log"
)

type CallService struct {
	engine     port.CallEngine
	gateway    port.RealTimeGateway
	workspaces *WorkspaceService
}

func NewCallService(engine port.CallEngine, gateway port.RealTimeGateway, workspaces *WorkspaceService) *CallService {
	return &CallService{
		engine:     engine,
		gateway:    gateway,
		workspaces: workspaces,
	}
}

// Handle dispatches a signal received from a peer of user by its kind.
func (s *CallService) Handle(ctx context.Context, from domain.PeerID, user domain.UserID, sig domain.Signal) error {
	switch sig := sig.(type) {
	case domain.InitCall:
		return s.InitCall(ctx, from, user, sig.RoomID)
	case domain.LeaveCall:
		return s.LeaveCall(ctx, from, sig.RoomID)
	case domain.RelaySdp:
		return s.RelaySdp(ctx, from, sig)
	case domain.RelayIce:
		return s.RelayIce(ctx, from, sig)
	default:
		// add-peer and remove-peer only ever flow server to client.
		return &domain.UnsupportedMessageKindError{Kind: string(sig.Kind())}
	}
}

// InitCall joins peer, a connection of user, to the call of roomID. Only
// participants of the room may join. The newcomer creates the offer toward
// every peer already present; those peers only answer.
func (s *CallService) InitCall(ctx context.Context, peer domain.PeerID, user domain.UserID, roomID domain.RoomID) error {
	room, err := s.workspaces.Room(ctx, user, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(user) {
		return &domain.NotFoundError{Collection: "rooms", ID: roomID.String()}
	}

	existing, joined := s.engine.Join(roomID, peer)
	if !joined {
		log.Debug().Str("peer_id", peer.String()).Str("room_id", roomID.String()).Msg("Peer already in call")
		return nil
	}

	log.Info().
		Str("peer_id", peer.String()).
		Str("room_id", roomID.String()).
		Int("peers", len(existing)).
		Msg("Peer joined call")

	var errs []error
	for _, other := range existing {
		if err := s.gateway.SendSignal(ctx, other, domain.AddPeer{PeerID: peer, ShouldCreateOffer: false}); err != nil {
			errs = append(errs, err)
		}
		if err := s.gateway.SendSignal(ctx, peer, domain.AddPeer{PeerID: other, ShouldCreateOffer: true}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LeaveCall removes peer from the call of roomID. Leaving a call twice is
// a no-op.
func (s *CallService) LeaveCall(ctx context.Context, peer domain.PeerID, roomID domain.RoomID) error {
	remaining, left := s.engine.Leave(roomID, peer)
	if !left {
		return nil
	}

	log.Info().
		Str("peer_id", peer.String()).
		Str("room_id", roomID.String()).
		Int("peers", len(remaining)).
		Msg("Peer left call")

	var errs []error
	for _, other := range remaining {
		if err := s.gateway.SendSignal(ctx, other, domain.RemovePeer{PeerID: peer}); err != nil {
			errs = append(errs, err)
		}
		if err := s.gateway.SendSignal(ctx, peer, domain.RemovePeer{PeerID: other}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RelaySdp forwards a session description to the single peer it names. The
// receiver sees the sender in PeerID.
func (s *CallService) RelaySdp(ctx context.Context, from domain.PeerID, msg domain.RelaySdp) error {
	target := msg.PeerID
	if err := s.checkRoute(from, target); err != nil {
		return err
	}
	msg.PeerID = from
	return s.gateway.SendSignal(ctx, target, msg)
}

func (s *CallService) RelayIce(ctx context.Context, from domain.PeerID, msg domain.RelayIce) error {
	target := msg.PeerID
	if err := s.checkRoute(from, target); err != nil {
		return err
	}
	msg.PeerID = from
	return s.gateway.SendSignal(ctx, target, msg)
}

// Disconnect leaves every call peer is part of.
func (s *CallService) Disconnect(ctx context.Context, peer domain.PeerID) error {
	var errs []error
	for _, roomID := range s.engine.SessionsOf(peer) {
		if err := s.LeaveCall(ctx, peer, roomID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *CallService) checkRoute(from, to domain.PeerID) error {
	if from == to {
		return fmt.Errorf("%w: cannot relay to self", domain.ErrInvalid)
	}
	if !s.engine.Shares(from, to) {
		return &domain.NotFoundError{Collection: "call peers", ID: to.String()}
	}
	return nil
}

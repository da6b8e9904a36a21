package domain

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

type SignalKind string

const (
	KindInitCall   SignalKind = "init-call"
	KindLeaveCall  SignalKind = "leave-call"
	KindAddPeer    SignalKind = "add-peer"
	KindRemovePeer SignalKind = "remove-peer"
	KindRelaySdp   SignalKind = "relay-sdp"
	KindRelayIce   SignalKind = "relay-ice"
)

// Signal is the closed set of call signaling messages. Only the types in
// this file implement it.
type Signal interface {
	Kind() SignalKind
	Validate() error
	isSignal()
}

type InitCall struct {
	RoomID RoomID `json:"roomId"`
}

type LeaveCall struct {
	RoomID RoomID `json:"roomId"`
}

// AddPeer tells a peer to open a connection to PeerID. Of the two peers of
// a pair, exactly one receives ShouldCreateOffer.
type AddPeer struct {
	PeerID            PeerID `json:"peerId"`
	ShouldCreateOffer bool   `json:"shouldCreateOffer"`
}

type RemovePeer struct {
	PeerID PeerID `json:"peerId"`
}

type RelaySdp struct {
	PeerID             PeerID                    `json:"peerId"`
	SessionDescription webrtc.SessionDescription `json:"sessionDescription"`
}

type RelayIce struct {
	PeerID       PeerID                  `json:"peerId"`
	IceCandidate webrtc.ICECandidateInit `json:"iceCandidate"`
}

func (InitCall) Kind() SignalKind   { return KindInitCall }
func (LeaveCall) Kind() SignalKind  { return KindLeaveCall }
func (AddPeer) Kind() SignalKind    { return KindAddPeer }
func (RemovePeer) Kind() SignalKind { return KindRemovePeer }
func (RelaySdp) Kind() SignalKind   { return KindRelaySdp }
func (RelayIce) Kind() SignalKind   { return KindRelayIce }

func (InitCall) isSignal()   {}
func (LeaveCall) isSignal()  {}
func (AddPeer) isSignal()    {}
func (RemovePeer) isSignal() {}
func (RelaySdp) isSignal()   {}
func (RelayIce) isSignal()   {}

func (s InitCall) Validate() error {
	if s.RoomID.IsZero() {
		return invalidf("%s: roomId is required", s.Kind())
	}
	return nil
}

func (s LeaveCall) Validate() error {
	if s.RoomID.IsZero() {
		return invalidf("%s: roomId is required", s.Kind())
	}
	return nil
}

func (s AddPeer) Validate() error {
	if s.PeerID.IsZero() {
		return invalidf("%s: peerId is required", s.Kind())
	}
	return nil
}

func (s RemovePeer) Validate() error {
	if s.PeerID.IsZero() {
		return invalidf("%s: peerId is required", s.Kind())
	}
	return nil
}

func (s RelaySdp) Validate() error {
	if s.PeerID.IsZero() {
		return invalidf("%s: peerId is required", s.Kind())
	}
	switch s.SessionDescription.Type {
	case webrtc.SDPTypeRollback:
		return nil
	case webrtc.SDPTypeOffer, webrtc.SDPTypeAnswer, webrtc.SDPTypePranswer:
	default:
		return invalidf("%s: unknown session description type", s.Kind())
	}
	if _, err := s.SessionDescription.Unmarshal(); err != nil {
		return invalidf("%s: malformed sdp: %v", s.Kind(), err)
	}
	return nil
}

func (s RelayIce) Validate() error {
	if s.PeerID.IsZero() {
		return invalidf("%s: peerId is required", s.Kind())
	}
	// An empty candidate marks end-of-candidates.
	c := s.IceCandidate
	if c.Candidate != "" && c.SDPMid == nil && c.SDPMLineIndex == nil {
		return invalidf("%s: sdpMid or sdpMLineIndex is required", s.Kind())
	}
	return nil
}

// DecodeSignal decodes and validates the payload of a signal of the given
// kind.
func DecodeSignal(kind string, data []byte) (Signal, error) {
	var sig Signal
	var err error
	switch SignalKind(kind) {
	case KindInitCall:
		sig, err = decodeAs[InitCall](data)
	case KindLeaveCall:
		sig, err = decodeAs[LeaveCall](data)
	case KindAddPeer:
		sig, err = decodeAs[AddPeer](data)
	case KindRemovePeer:
		sig, err = decodeAs[RemovePeer](data)
	case KindRelaySdp:
		sig, err = decodeAs[RelaySdp](data)
	case KindRelayIce:
		sig, err = decodeAs[RelayIce](data)
	default:
		return nil, &UnsupportedMessageKindError{Kind: kind}
	}
	if err != nil {
		return nil, err
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	return sig, nil
}

func decodeAs[T Signal](data []byte) (Signal, error) {
	var v T
	if len(data) == 0 {
		return nil, invalidf("empty payload")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return v, nil
}

package http

import (
	"encoding/json"
	"fmt"

	"github.com/Wyydra/huddle/internal/core/domain"
)

// Every websocket frame is an envelope. Channel and kind select the
// payload type; the payload itself always sits under data so chat and
// signaling fields never mix.
type envelope struct {
	Channel string          `json:"channel"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const (
	channelChat   = "chat"
	channelSignal = "signal"
	channelSystem = "system"

	kindMessage = "message"
	kindWelcome = "welcome"
	kindError   = "error"
)

type welcomeDTO struct {
	PeerID domain.PeerID `json:"peerId"`
	UserID domain.UserID `json:"userId"`
}

type errorDTO struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func encodeEnvelope(channel, kind string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", channel, kind, err)
	}
	return json.Marshal(envelope{Channel: channel, Kind: kind, Data: data})
}

package service_test

import (
	"context"
	"sync"

	"github.com/Wyydra/huddle/internal/core/domain"
)

type sentSignal struct {
	to  domain.PeerID
	sig domain.Signal
}

type delivery struct {
	to  []domain.UserID
	msg domain.Message
}

// recordingGateway keeps everything sent through it.
type recordingGateway struct {
	mu         sync.Mutex
	signals    []sentSignal
	deliveries []delivery
	failTo     map[domain.PeerID]error
}

func (g *recordingGateway) DeliverMessage(ctx context.Context, userIDs []domain.UserID, msg domain.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deliveries = append(g.deliveries, delivery{to: userIDs, msg: msg})
	return nil
}

func (g *recordingGateway) SendSignal(ctx context.Context, peerID domain.PeerID, sig domain.Signal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failTo[peerID]; err != nil {
		return err
	}
	g.signals = append(g.signals, sentSignal{to: peerID, sig: sig})
	return nil
}

func (g *recordingGateway) sentTo(peer domain.PeerID) []domain.Signal {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Signal
	for _, s := range g.signals {
		if s.to == peer {
			out = append(out, s.sig)
		}
	}
	return out
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signals = nil
	g.deliveries = nil
}
